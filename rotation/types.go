/*
Package rotation provides the core vendor rotation engine.

PURPOSE:
  This package contains the domain model and the pure algorithms for
  assigning store staff ("vendors") to mandatory work dates: every Sunday
  of a calendar year plus the public holidays the owner tracks. Workload
  is balanced greedily per date pool, and manually locked entries survive
  regeneration.

KEY CONCEPTS IN THIS FILE (types.go):
  - Vendor: A staff member eligible for rotation assignment
  - Holiday: A tracked public holiday (date + label), scoped to a year
  - ScheduleEntry: The assignment record for one calendar date
  - Schedule: All entries for one year, sorted by date, one per date

DESIGN PRINCIPLES:
  1. Purity: Generate, ComputeStats and the holiday catalog are pure
     functions; persistence lives behind the Store interface.
  2. Explicit invariants: closed entries carry no vendors, and an entry
     never holds more vendors than the schedule's VendorsPerDay. Both are
     enforced at the mutation boundary (see patch.go).
  3. Client-generated ids: records receive opaque ids before persistence.

SEE ALSO:
  - scheduler.go: Fair-assignment algorithm
  - stats.go: Per-vendor workload scoring
  - patch.go: Typed partial entry updates
  - store.go: Persistence boundary
*/
package rotation

import (
	"sort"

	"github.com/google/uuid"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	OwnerID   string
	VendorID  string
	HolidayID string
	EntryID   string
)

// NewVendorID returns a fresh opaque vendor identifier.
func NewVendorID() VendorID { return VendorID(uuid.NewString()) }

// NewHolidayID returns a fresh opaque holiday identifier.
func NewHolidayID() HolidayID { return HolidayID(uuid.NewString()) }

// NewEntryID returns a fresh opaque schedule entry identifier.
func NewEntryID() EntryID { return EntryID(uuid.NewString()) }

// =============================================================================
// VENDOR
// =============================================================================

// Vendor is a staff member. Inactive vendors are excluded from generation
// but keep their historical assignments.
type Vendor struct {
	ID     VendorID `json:"id"`
	Name   string   `json:"name"`
	Active bool     `json:"active"`
}

// =============================================================================
// HOLIDAY
// =============================================================================

// Holiday is a tracked public holiday. Holidays are scoped to (owner, year);
// date uniqueness within a year is enforced by import dedup, not the model.
type Holiday struct {
	ID   HolidayID `json:"id"`
	Date Date      `json:"date"`
	Name string    `json:"name"`
}

// SortHolidays orders holidays by date ascending, in place.
func SortHolidays(hs []Holiday) {
	sort.Slice(hs, func(i, j int) bool { return hs[i].Date.Before(hs[j].Date) })
}

// =============================================================================
// SCHEDULE ENTRY
// =============================================================================

// EntryType classifies why a date requires staffing. A date that is both a
// Sunday and a holiday is always EntryHoliday.
type EntryType string

const (
	EntrySunday  EntryType = "sunday"
	EntryHoliday EntryType = "holiday"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool { return t == EntrySunday || t == EntryHoliday }

// ScheduleEntry is the assignment record for one calendar date.
//
// Invariants (enforced by EntryPatch.Apply and Generate):
//   - Closed == true implies len(VendorIDs) == 0
//   - len(VendorIDs) <= the owning schedule's VendorsPerDay
//   - VendorIDs contains no duplicates
//
// VendorIDs may reference a vendor that has since been deleted; such stale
// references are kept deliberately as historical record and rendered by
// falling back to the raw id.
type ScheduleEntry struct {
	ID        EntryID    `json:"id"`
	Date      Date       `json:"date"`
	Type      EntryType  `json:"type"`
	VendorIDs []VendorID `json:"vendorIds"`
	Closed    bool       `json:"closed"`
	Locked    bool       `json:"locked"`
	Note      string     `json:"note,omitempty"`
}

// HasVendor reports whether the entry references the given vendor.
func (e ScheduleEntry) HasVendor(id VendorID) bool {
	for _, v := range e.VendorIDs {
		if v == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the entry (VendorIDs included).
func (e ScheduleEntry) Clone() ScheduleEntry {
	c := e
	if e.VendorIDs != nil {
		c.VendorIDs = append([]VendorID(nil), e.VendorIDs...)
	}
	return c
}

// =============================================================================
// SCHEDULE
// =============================================================================

// VendorsPerDay is how many vendors staff each scheduled date.
type VendorsPerDay int

const (
	TwoPerDay   VendorsPerDay = 2
	ThreePerDay VendorsPerDay = 3
)

// Valid reports whether v is a supported staffing level.
func (v VendorsPerDay) Valid() bool { return v == TwoPerDay || v == ThreePerDay }

// Schedule holds one year's entries, sorted by date ascending, at most one
// entry per distinct date. At most one Schedule exists per (owner, year).
type Schedule struct {
	Year          int             `json:"year"`
	VendorsPerDay VendorsPerDay   `json:"vendorsPerDay"`
	Entries       []ScheduleEntry `json:"entries"`
}

// SortEntries restores the date-ascending order invariant, in place.
func (s *Schedule) SortEntries() {
	sort.Slice(s.Entries, func(i, j int) bool {
		return s.Entries[i].Date.Before(s.Entries[j].Date)
	})
}

// Entry returns a pointer to the entry with the given id, or nil.
func (s *Schedule) Entry(id EntryID) *ScheduleEntry {
	for i := range s.Entries {
		if s.Entries[i].ID == id {
			return &s.Entries[i]
		}
	}
	return nil
}

// LockedEntries returns the entries excluded from regeneration.
func (s *Schedule) LockedEntries() []ScheduleEntry {
	var locked []ScheduleEntry
	for _, e := range s.Entries {
		if e.Locked {
			locked = append(locked, e.Clone())
		}
	}
	return locked
}

// Clone returns a deep copy of the schedule.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	c := &Schedule{Year: s.Year, VendorsPerDay: s.VendorsPerDay}
	c.Entries = make([]ScheduleEntry, len(s.Entries))
	for i, e := range s.Entries {
		c.Entries[i] = e.Clone()
	}
	return c
}
