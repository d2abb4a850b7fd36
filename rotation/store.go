/*
store.go - Persistence boundary for owner-scoped rotation data

PURPOSE:
  Defines the interface between the rotation domain and the database.
  Four logical record collections are keyed by owner: vendors, holidays,
  schedules, and schedule entries. Different implementations can use
  SQLite or in-memory storage.

CONTRACT:
  - Record ids are generated by the caller BEFORE persistence
    (client-generated ids, never server-assigned).
  - FetchAll returns the owner's complete data set in one call; the state
    container loads it once per session.
  - SaveSchedule replaces the year's entries wholesale (upsert metadata,
    delete old entries, insert new) - regeneration is not an incremental
    merge.
  - Batch operations (InsertHolidays, SetEntriesLocked, SaveSchedule,
    ClearUnlockedVendors) are atomic: either the whole batch persists or
    none of it does.
  - The predicate updates mirror the two bulk edits of the UI:
    SetEntriesLocked over an id set, ClearUnlockedVendors over "all
    unlocked entries in year".

IMPLEMENTATIONS:
  - rotation/store/memory.go: In-memory, for testing/dev
  - store/sqlite/sqlite.go: Production SQLite

SEE ALSO:
  - state/state.go: The only caller; wraps every write in an
    optimistic-update unit (apply, persist, commit-or-rollback)
*/
package rotation

import "context"

// OwnerData is an owner's complete data set, as loaded in one shot.
type OwnerData struct {
	Vendors   []Vendor
	Holidays  map[int][]Holiday // keyed by year
	Schedules map[int]*Schedule // keyed by year
}

// Store handles persistence of owner-scoped rotation records.
type Store interface {
	// FetchAll returns everything stored for the owner. An unknown owner
	// yields empty collections, not an error.
	FetchAll(ctx context.Context, owner OwnerID) (*OwnerData, error)

	// Vendors
	InsertVendors(ctx context.Context, owner OwnerID, vendors []Vendor) error
	UpdateVendor(ctx context.Context, owner OwnerID, vendor Vendor) error
	DeleteVendor(ctx context.Context, owner OwnerID, id VendorID) error

	// Holidays
	InsertHolidays(ctx context.Context, owner OwnerID, year int, holidays []Holiday) error
	UpdateHoliday(ctx context.Context, owner OwnerID, year int, holiday Holiday) error
	DeleteHoliday(ctx context.Context, owner OwnerID, id HolidayID) error
	// ReplaceHolidays deletes the year's holiday set and inserts the given
	// records atomically (the "import national" path).
	ReplaceHolidays(ctx context.Context, owner OwnerID, year int, holidays []Holiday) error

	// Schedules + entries
	SaveSchedule(ctx context.Context, owner OwnerID, schedule *Schedule) error
	UpdateEntry(ctx context.Context, owner OwnerID, year int, entry ScheduleEntry) error
	SetEntriesLocked(ctx context.Context, owner OwnerID, ids []EntryID, locked bool) error
	ClearUnlockedVendors(ctx context.Context, owner OwnerID, year int) error
	// DeleteSchedule removes the schedule metadata and cascades to all of
	// its entries.
	DeleteSchedule(ctx context.Context, owner OwnerID, year int) error
}
