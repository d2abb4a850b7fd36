/*
Package state holds an owner's in-memory data and the command methods that
mutate it.

PURPOSE:
  The rotation algorithms are pure; this package is where state lives.
  App caches one owner's vendors, holidays and schedules, and exposes one
  command method per user-visible mutation. Every command is an atomic
  optimistic-update unit:

    1. snapshot the affected collection
    2. apply the change to the in-memory copy
    3. persist through the Store
    4. on persistence failure, restore the snapshot, log a warning and
       return the error - the caller repeats the action, there is no retry

  Bulk commands (SetEntriesLocked, ClearUnlockedVendors, holiday imports)
  apply and roll back as a single unit; no partial batch is ever visible.

CONCURRENCY:
  Single-user, single-session model. A mutex serializes commands so the
  snapshot/apply/persist sequence is atomic with respect to readers, but
  there is no cross-process conflict detection - last write wins at the
  record level.

LOADING:
  Load fetches the owner's full data set once, bounded by a fixed timeout.
  A timed-out or failed load leaves previously loaded state untouched and
  the App reports ErrNotLoaded until a load succeeds.

SEE ALSO:
  - rotation/store.go: The persistence boundary this package drives
  - rotation/scheduler.go: Called by Generate
*/
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/escala/rotation-engine/holidays"
	"github.com/escala/rotation-engine/rotation"
)

// ErrLoadTimeout is returned when the initial data load exceeds its bound.
var ErrLoadTimeout = errors.New("data load timed out")

// DefaultLoadTimeout bounds the initial full-state fetch.
const DefaultLoadTimeout = 8 * time.Second

// defaultVendorSeeds are the vendors created for a brand-new owner.
var defaultVendorSeeds = []string{"Matilde", "Rivânia", "Lúcia", "Patrícia", "Léo", "André"}

// =============================================================================
// APP - Per-owner state container
// =============================================================================

// App is the state container for one owner.
type App struct {
	mu          sync.Mutex
	store       rotation.Store
	owner       rotation.OwnerID
	log         zerolog.Logger
	loadTimeout time.Duration

	loaded    bool
	vendors   []rotation.Vendor
	holidays  map[int][]rotation.Holiday
	schedules map[int]*rotation.Schedule
}

// Option configures an App.
type Option func(*App)

// WithLogger attaches a logger for persistence-failure notices.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) { a.log = log }
}

// WithLoadTimeout overrides the initial-load bound.
func WithLoadTimeout(d time.Duration) Option {
	return func(a *App) { a.loadTimeout = d }
}

// New creates an App for the owner. Call Load before issuing commands.
func New(store rotation.Store, owner rotation.OwnerID, opts ...Option) *App {
	a := &App{
		store:       store,
		owner:       owner,
		log:         zerolog.Nop(),
		loadTimeout: DefaultLoadTimeout,
		holidays:    make(map[int][]rotation.Holiday),
		schedules:   make(map[int]*rotation.Schedule),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Owner returns the owner this App serves.
func (a *App) Owner() rotation.OwnerID { return a.owner }

// Loaded reports whether a Load has succeeded.
func (a *App) Loaded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded
}

// =============================================================================
// LOADING
// =============================================================================

// Load fetches the owner's complete data set, bounded by the load timeout.
// On failure or timeout, previously loaded state (if any) is untouched.
func (a *App) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.loadTimeout)
	defer cancel()

	type result struct {
		data *rotation.OwnerData
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := a.store.FetchAll(ctx, a.owner)
		ch <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		a.log.Warn().Str("owner", string(a.owner)).Msg("data load timed out")
		return fmt.Errorf("%w after %s", ErrLoadTimeout, a.loadTimeout)
	case res := <-ch:
		if res.err != nil {
			a.log.Warn().Err(res.err).Str("owner", string(a.owner)).Msg("data load failed")
			return res.err
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		a.vendors = res.data.Vendors
		a.holidays = res.data.Holidays
		a.schedules = res.data.Schedules
		if a.holidays == nil {
			a.holidays = make(map[int][]rotation.Holiday)
		}
		if a.schedules == nil {
			a.schedules = make(map[int]*rotation.Schedule)
		}
		a.loaded = true
		return nil
	}
}

// =============================================================================
// READ ACCESSORS
// =============================================================================

// Vendors returns a copy of the roster.
func (a *App) Vendors() []rotation.Vendor {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]rotation.Vendor(nil), a.vendors...)
}

// Holidays returns a copy of the year's holiday set, date-ascending.
func (a *App) Holidays(year int) []rotation.Holiday {
	a.mu.Lock()
	defer a.mu.Unlock()
	hs := append([]rotation.Holiday(nil), a.holidays[year]...)
	rotation.SortHolidays(hs)
	return hs
}

// Schedule returns a deep copy of the year's schedule, or nil.
func (a *App) Schedule(year int) *rotation.Schedule {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.schedules[year].Clone()
}

// Stats returns the per-vendor workload for the year's schedule.
func (a *App) Stats(year int) []rotation.VendorStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return rotation.ComputeStats(a.schedules[year])
}

// =============================================================================
// VENDOR COMMANDS
// =============================================================================

// VendorPatch names the mutable vendor fields.
type VendorPatch struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// SeedDefaultVendors creates the default roster for a new owner. It is a
// no-op when the owner already has vendors.
func (a *App) SeedDefaultVendors(ctx context.Context) ([]rotation.Vendor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return nil, rotation.ErrNotLoaded
	}
	if len(a.vendors) > 0 {
		return nil, nil
	}

	seeds := make([]rotation.Vendor, len(defaultVendorSeeds))
	for i, name := range defaultVendorSeeds {
		seeds[i] = rotation.Vendor{ID: rotation.NewVendorID(), Name: name, Active: true}
	}

	a.vendors = append(a.vendors, seeds...)
	if err := a.store.InsertVendors(ctx, a.owner, seeds); err != nil {
		a.vendors = a.vendors[:len(a.vendors)-len(seeds)]
		return nil, a.reverted("seed default vendors", err)
	}
	return seeds, nil
}

// AddVendor creates an active vendor with the given display name.
func (a *App) AddVendor(ctx context.Context, name string) (rotation.Vendor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return rotation.Vendor{}, rotation.ErrNotLoaded
	}

	vendor := rotation.Vendor{ID: rotation.NewVendorID(), Name: name, Active: true}
	a.vendors = append(a.vendors, vendor)
	if err := a.store.InsertVendors(ctx, a.owner, []rotation.Vendor{vendor}); err != nil {
		a.vendors = a.vendors[:len(a.vendors)-1]
		return rotation.Vendor{}, a.reverted("add vendor", err)
	}
	return vendor, nil
}

// UpdateVendor renames and/or (de)activates a vendor.
func (a *App) UpdateVendor(ctx context.Context, id rotation.VendorID, patch VendorPatch) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return rotation.ErrNotLoaded
	}

	idx := -1
	for i := range a.vendors {
		if a.vendors[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rotation.ErrVendorNotFound
	}

	prev := a.vendors[idx]
	updated := prev
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Active != nil {
		updated.Active = *patch.Active
	}

	a.vendors[idx] = updated
	if err := a.store.UpdateVendor(ctx, a.owner, updated); err != nil {
		a.vendors[idx] = prev
		return a.reverted("update vendor", err)
	}
	return nil
}

// RemoveVendor deletes the vendor record. Schedule entries that reference
// the vendor keep the id: historical assignments are preserved on purpose
// and renderers fall back to the raw id for deleted vendors.
func (a *App) RemoveVendor(ctx context.Context, id rotation.VendorID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return rotation.ErrNotLoaded
	}

	idx := -1
	for i := range a.vendors {
		if a.vendors[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rotation.ErrVendorNotFound
	}

	prev := append([]rotation.Vendor(nil), a.vendors...)
	a.vendors = append(a.vendors[:idx], a.vendors[idx+1:]...)
	if err := a.store.DeleteVendor(ctx, a.owner, id); err != nil {
		a.vendors = prev
		return a.reverted("remove vendor", err)
	}
	return nil
}

// =============================================================================
// HOLIDAY COMMANDS
// =============================================================================

// HolidayPatch names the mutable holiday fields.
type HolidayPatch struct {
	Date *rotation.Date `json:"date,omitempty"`
	Name *string        `json:"name,omitempty"`
}

// AddHoliday records a single holiday in the year's set.
func (a *App) AddHoliday(ctx context.Context, year int, date rotation.Date, name string) (rotation.Holiday, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return rotation.Holiday{}, rotation.ErrNotLoaded
	}

	h := rotation.Holiday{ID: rotation.NewHolidayID(), Date: date, Name: name}
	a.holidays[year] = append(a.holidays[year], h)
	if err := a.store.InsertHolidays(ctx, a.owner, year, []rotation.Holiday{h}); err != nil {
		hs := a.holidays[year]
		a.holidays[year] = hs[:len(hs)-1]
		return rotation.Holiday{}, a.reverted("add holiday", err)
	}
	return h, nil
}

// UpdateHoliday edits a holiday's date and/or name.
func (a *App) UpdateHoliday(ctx context.Context, year int, id rotation.HolidayID, patch HolidayPatch) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return rotation.ErrNotLoaded
	}

	hs := a.holidays[year]
	idx := -1
	for i := range hs {
		if hs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rotation.ErrHolidayNotFound
	}

	prev := hs[idx]
	updated := prev
	if patch.Date != nil {
		updated.Date = *patch.Date
	}
	if patch.Name != nil {
		updated.Name = *patch.Name
	}

	hs[idx] = updated
	if err := a.store.UpdateHoliday(ctx, a.owner, year, updated); err != nil {
		hs[idx] = prev
		return a.reverted("update holiday", err)
	}
	return nil
}

// RemoveHoliday deletes a holiday from the year's set.
func (a *App) RemoveHoliday(ctx context.Context, year int, id rotation.HolidayID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return rotation.ErrNotLoaded
	}

	hs := a.holidays[year]
	idx := -1
	for i := range hs {
		if hs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rotation.ErrHolidayNotFound
	}

	prev := append([]rotation.Holiday(nil), hs...)
	a.holidays[year] = append(hs[:idx], hs[idx+1:]...)
	if err := a.store.DeleteHoliday(ctx, a.owner, id); err != nil {
		a.holidays[year] = prev
		return a.reverted("remove holiday", err)
	}
	return nil
}

// ImportNational overwrites the year's holiday set with the Brazilian
// national catalog (replace semantics).
func (a *App) ImportNational(ctx context.Context, year int) ([]rotation.Holiday, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return nil, rotation.ErrNotLoaded
	}

	imported := make([]rotation.Holiday, 0, 13)
	for _, c := range holidays.Brazilian(year) {
		imported = append(imported, rotation.Holiday{
			ID:   rotation.NewHolidayID(),
			Date: c.Date,
			Name: c.Name,
		})
	}

	prev := a.holidays[year]
	a.holidays[year] = imported
	if err := a.store.ReplaceHolidays(ctx, a.owner, year, imported); err != nil {
		a.holidays[year] = prev
		return nil, a.reverted("import national holidays", err)
	}
	return imported, nil
}

// ImportMunicipal merges candidate holidays into the year's set and returns
// how many were new. A candidate is a duplicate when its DATE already
// exists in the set, regardless of name. Zero new candidates is a benign
// no-op, not an error.
func (a *App) ImportMunicipal(ctx context.Context, year int, candidates []holidays.Candidate) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return 0, rotation.ErrNotLoaded
	}

	existing := make(map[rotation.Date]bool, len(a.holidays[year]))
	for _, h := range a.holidays[year] {
		existing[h.Date] = true
	}

	var fresh []rotation.Holiday
	for _, c := range candidates {
		if existing[c.Date] {
			continue
		}
		existing[c.Date] = true
		fresh = append(fresh, rotation.Holiday{
			ID:   rotation.NewHolidayID(),
			Date: c.Date,
			Name: c.Name,
		})
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	a.holidays[year] = append(a.holidays[year], fresh...)
	if err := a.store.InsertHolidays(ctx, a.owner, year, fresh); err != nil {
		hs := a.holidays[year]
		a.holidays[year] = hs[:len(hs)-len(fresh)]
		return 0, a.reverted("import municipal holidays", err)
	}
	return len(fresh), nil
}

// =============================================================================
// SCHEDULE COMMANDS
// =============================================================================

// Generate builds the year's schedule from the current roster and holiday
// set, preserving locked entries of any existing schedule, and persists it
// wholesale.
func (a *App) Generate(ctx context.Context, year int, perDay rotation.VendorsPerDay) (*rotation.Schedule, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return nil, rotation.ErrNotLoaded
	}
	if !perDay.Valid() {
		return nil, rotation.ErrInvalidVendorsPerDay
	}

	schedule := rotation.Generate(year, a.vendors, a.holidays[year], perDay, a.schedules[year])

	prev := a.schedules[year]
	a.schedules[year] = &schedule
	if err := a.store.SaveSchedule(ctx, a.owner, &schedule); err != nil {
		if prev == nil {
			delete(a.schedules, year)
		} else {
			a.schedules[year] = prev
		}
		return nil, a.reverted("generate schedule", err)
	}
	return schedule.Clone(), nil
}

// UpdateEntry applies a typed patch to one entry, re-checking the entry
// invariants after the merge.
func (a *App) UpdateEntry(ctx context.Context, year int, id rotation.EntryID, patch rotation.EntryPatch) (rotation.ScheduleEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return rotation.ScheduleEntry{}, rotation.ErrNotLoaded
	}

	schedule, ok := a.schedules[year]
	if !ok {
		return rotation.ScheduleEntry{}, rotation.ErrScheduleNotFound
	}
	entry := schedule.Entry(id)
	if entry == nil {
		return rotation.ScheduleEntry{}, rotation.ErrEntryNotFound
	}

	updated, err := patch.Apply(*entry, schedule.VendorsPerDay)
	if err != nil {
		return rotation.ScheduleEntry{}, err
	}

	prev := entry.Clone()
	*entry = updated
	schedule.SortEntries()
	if err := a.store.UpdateEntry(ctx, a.owner, year, updated); err != nil {
		if e := schedule.Entry(id); e != nil {
			*e = prev
		}
		schedule.SortEntries()
		return rotation.ScheduleEntry{}, a.reverted("update entry", err)
	}
	return updated.Clone(), nil
}

// SetEntriesLocked bulk-toggles the locked flag for a batch of entries
// ("lock whole month"). Order-independent and idempotent; the batch
// applies or rolls back as one unit.
func (a *App) SetEntriesLocked(ctx context.Context, year int, ids []rotation.EntryID, locked bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return rotation.ErrNotLoaded
	}

	schedule, ok := a.schedules[year]
	if !ok {
		return rotation.ErrScheduleNotFound
	}

	idSet := make(map[rotation.EntryID]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	prev := schedule.Clone()
	for i := range schedule.Entries {
		if idSet[schedule.Entries[i].ID] {
			schedule.Entries[i].Locked = locked
		}
	}
	if err := a.store.SetEntriesLocked(ctx, a.owner, ids, locked); err != nil {
		a.schedules[year] = prev
		return a.reverted("set entries locked", err)
	}
	return nil
}

// ClearUnlockedVendors empties VendorIDs on every unlocked entry of the
// year, leaving Closed and Note untouched. Locked entries are never
// altered. Idempotent.
func (a *App) ClearUnlockedVendors(ctx context.Context, year int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return rotation.ErrNotLoaded
	}

	schedule, ok := a.schedules[year]
	if !ok {
		return rotation.ErrScheduleNotFound
	}

	prev := schedule.Clone()
	for i := range schedule.Entries {
		if !schedule.Entries[i].Locked {
			schedule.Entries[i].VendorIDs = nil
		}
	}
	if err := a.store.ClearUnlockedVendors(ctx, a.owner, year); err != nil {
		a.schedules[year] = prev
		return a.reverted("clear unlocked vendors", err)
	}
	return nil
}

// RemoveSchedule deletes the year's schedule and all of its entries.
func (a *App) RemoveSchedule(ctx context.Context, year int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return rotation.ErrNotLoaded
	}

	prev, ok := a.schedules[year]
	if !ok {
		return rotation.ErrScheduleNotFound
	}

	delete(a.schedules, year)
	if err := a.store.DeleteSchedule(ctx, a.owner, year); err != nil {
		a.schedules[year] = prev
		return a.reverted("remove schedule", err)
	}
	return nil
}

// =============================================================================
// INTERNAL
// =============================================================================

// reverted logs a persistence failure after the in-memory rollback and
// wraps the error for the caller's failure notice.
func (a *App) reverted(op string, err error) error {
	a.log.Warn().Err(err).Str("owner", string(a.owner)).Str("op", op).
		Msg("persistence failed, in-memory change reverted")
	return fmt.Errorf("%s: %w", op, err)
}
