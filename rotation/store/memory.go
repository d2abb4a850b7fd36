// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/escala/rotation-engine/rotation"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	owners map[rotation.OwnerID]*ownerRecords
}

type ownerRecords struct {
	vendors   []rotation.Vendor
	holidays  map[int][]rotation.Holiday
	schedules map[int]*rotation.Schedule
}

func NewMemory() *Memory {
	return &Memory{owners: make(map[rotation.OwnerID]*ownerRecords)}
}

func (m *Memory) recordsLocked(owner rotation.OwnerID) *ownerRecords {
	rec, ok := m.owners[owner]
	if !ok {
		rec = &ownerRecords{
			holidays:  make(map[int][]rotation.Holiday),
			schedules: make(map[int]*rotation.Schedule),
		}
		m.owners[owner] = rec
	}
	return rec
}

// FetchAll returns a deep copy of everything stored for the owner.
func (m *Memory) FetchAll(_ context.Context, owner rotation.OwnerID) (*rotation.OwnerData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data := &rotation.OwnerData{
		Holidays:  make(map[int][]rotation.Holiday),
		Schedules: make(map[int]*rotation.Schedule),
	}
	rec, ok := m.owners[owner]
	if !ok {
		return data, nil
	}

	data.Vendors = append([]rotation.Vendor(nil), rec.vendors...)
	for year, hs := range rec.holidays {
		data.Holidays[year] = append([]rotation.Holiday(nil), hs...)
	}
	for year, s := range rec.schedules {
		data.Schedules[year] = s.Clone()
	}
	return data, nil
}

// =============================================================================
// VENDORS
// =============================================================================

func (m *Memory) InsertVendors(_ context.Context, owner rotation.OwnerID, vendors []rotation.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordsLocked(owner)
	rec.vendors = append(rec.vendors, vendors...)
	return nil
}

func (m *Memory) UpdateVendor(_ context.Context, owner rotation.OwnerID, vendor rotation.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordsLocked(owner)
	for i := range rec.vendors {
		if rec.vendors[i].ID == vendor.ID {
			rec.vendors[i] = vendor
			return nil
		}
	}
	return rotation.ErrVendorNotFound
}

func (m *Memory) DeleteVendor(_ context.Context, owner rotation.OwnerID, id rotation.VendorID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordsLocked(owner)
	for i := range rec.vendors {
		if rec.vendors[i].ID == id {
			rec.vendors = append(rec.vendors[:i], rec.vendors[i+1:]...)
			return nil
		}
	}
	return rotation.ErrVendorNotFound
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) InsertHolidays(_ context.Context, owner rotation.OwnerID, year int, holidays []rotation.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordsLocked(owner)
	rec.holidays[year] = append(rec.holidays[year], holidays...)
	return nil
}

func (m *Memory) UpdateHoliday(_ context.Context, owner rotation.OwnerID, year int, holiday rotation.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordsLocked(owner)
	hs := rec.holidays[year]
	for i := range hs {
		if hs[i].ID == holiday.ID {
			hs[i] = holiday
			return nil
		}
	}
	return rotation.ErrHolidayNotFound
}

func (m *Memory) DeleteHoliday(_ context.Context, owner rotation.OwnerID, id rotation.HolidayID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordsLocked(owner)
	for year, hs := range rec.holidays {
		for i := range hs {
			if hs[i].ID == id {
				rec.holidays[year] = append(hs[:i], hs[i+1:]...)
				return nil
			}
		}
	}
	return rotation.ErrHolidayNotFound
}

func (m *Memory) ReplaceHolidays(_ context.Context, owner rotation.OwnerID, year int, holidays []rotation.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordsLocked(owner)
	rec.holidays[year] = append([]rotation.Holiday(nil), holidays...)
	return nil
}

// =============================================================================
// SCHEDULES + ENTRIES
// =============================================================================

func (m *Memory) SaveSchedule(_ context.Context, owner rotation.OwnerID, schedule *rotation.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordsLocked(owner)
	rec.schedules[schedule.Year] = schedule.Clone()
	return nil
}

func (m *Memory) UpdateEntry(_ context.Context, owner rotation.OwnerID, year int, entry rotation.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordsLocked(owner)
	s, ok := rec.schedules[year]
	if !ok {
		return rotation.ErrScheduleNotFound
	}
	for i := range s.Entries {
		if s.Entries[i].ID == entry.ID {
			s.Entries[i] = entry.Clone()
			s.SortEntries()
			return nil
		}
	}
	return rotation.ErrEntryNotFound
}

func (m *Memory) SetEntriesLocked(_ context.Context, owner rotation.OwnerID, ids []rotation.EntryID, locked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idSet := make(map[rotation.EntryID]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	rec := m.recordsLocked(owner)
	for _, s := range rec.schedules {
		for i := range s.Entries {
			if idSet[s.Entries[i].ID] {
				s.Entries[i].Locked = locked
			}
		}
	}
	return nil
}

func (m *Memory) ClearUnlockedVendors(_ context.Context, owner rotation.OwnerID, year int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordsLocked(owner)
	s, ok := rec.schedules[year]
	if !ok {
		return rotation.ErrScheduleNotFound
	}
	for i := range s.Entries {
		if !s.Entries[i].Locked {
			s.Entries[i].VendorIDs = nil
		}
	}
	return nil
}

func (m *Memory) DeleteSchedule(_ context.Context, owner rotation.OwnerID, year int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordsLocked(owner)
	delete(rec.schedules, year)
	return nil
}
