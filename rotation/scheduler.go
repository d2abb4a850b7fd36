/*
scheduler.go - Fair-assignment schedule generation

PURPOSE:
  Turns the active vendor roster, the year's holiday set, and the prior
  schedule's locked entries into a balanced Schedule covering every Sunday
  and holiday of the year.

ALGORITHM:
  Two date pools are balanced independently:
  - the pure-Sunday pool: Sundays that are neither a holiday nor locked
  - the holiday pool: the year's holidays whose date is not locked

  A holiday that falls on a Sunday belongs to the holiday pool only; it is
  removed from the Sunday pool so its entry is always type "holiday".

  Within each pool, dates are processed in ascending order. For each date
  the active vendors are sorted by (current pool load ascending, then name)
  and the first VendorsPerDay vendors are assigned. Load counters are
  seeded from locked entries of the same type, so a vendor who already
  carries locked work starts behind. The max-min spread of counters within
  a pool never exceeds 1 when no locked seed is present.

  Sunday load and holiday load are never mixed: heavy Sunday duty does not
  penalize a vendor when holidays are distributed, and vice versa.

REGENERATION:
  Locked entries are carried over verbatim; every unlocked date is
  re-derived from scratch. Closed days are never produced here - they only
  arise from manual edits and survive regeneration as locked entries.

SEE ALSO:
  - stats.go: Scoring of the generated schedule
  - patch.go: Manual edits applied after generation
*/
package rotation

import "sort"

// poolDate is one date awaiting assignment within a pool.
type poolDate struct {
	date Date
	typ  EntryType
	note string
}

// Generate produces a new Schedule for year. vendors is the owner's full
// roster (active and inactive); holidays is the owner's holiday set for the
// same year. existing, when non-nil, must be the previously stored Schedule
// for the same year and is consulted only for its locked entries.
//
// Generate is a pure function of its inputs up to entry ids: two calls with
// identical arguments yield identical assignments per date.
func Generate(year int, vendors []Vendor, holidays []Holiday, perDay VendorsPerDay, existing *Schedule) Schedule {
	var active []Vendor
	for _, v := range vendors {
		if v.Active {
			active = append(active, v)
		}
	}
	// An empty roster is a valid, if useless, state - not an error.
	if len(active) == 0 {
		return Schedule{Year: year, VendorsPerDay: perDay}
	}

	// Locked entries are kept verbatim; everything else is regenerated.
	var locked []ScheduleEntry
	lockedDates := make(map[Date]bool)
	if existing != nil {
		locked = existing.LockedEntries()
		for _, e := range locked {
			lockedDates[e.Date] = true
		}
	}

	// Seed per-type load counters from the locked history. Closed locked
	// days carry no vendors and therefore no load.
	sundaySeed := make(map[VendorID]int, len(active))
	holidaySeed := make(map[VendorID]int, len(active))
	for _, v := range active {
		sundaySeed[v.ID] = 0
		holidaySeed[v.ID] = 0
	}
	for _, e := range locked {
		if e.Closed {
			continue
		}
		seed := sundaySeed
		if e.Type == EntryHoliday {
			seed = holidaySeed
		}
		for _, vid := range e.VendorIDs {
			if _, ok := seed[vid]; ok {
				seed[vid]++
			}
		}
	}

	holidayByDate := make(map[Date]Holiday, len(holidays))
	for _, h := range holidays {
		holidayByDate[h.Date] = h
	}

	// Pure-Sunday pool: Sundays that are neither a holiday nor locked.
	var sundayPool []poolDate
	for _, d := range Sundays(year) {
		if _, isHoliday := holidayByDate[d]; isHoliday || lockedDates[d] {
			continue
		}
		sundayPool = append(sundayPool, poolDate{date: d, typ: EntrySunday})
	}

	// Holiday pool: the year's holidays, minus locked dates, date-ascending.
	sorted := append([]Holiday(nil), holidays...)
	SortHolidays(sorted)
	var holidayPool []poolDate
	for _, h := range sorted {
		if lockedDates[h.Date] {
			continue
		}
		holidayPool = append(holidayPool, poolDate{date: h.Date, typ: EntryHoliday, note: h.Name})
	}

	entries := locked
	entries = append(entries, assignPool(sundayPool, active, perDay, sundaySeed)...)
	entries = append(entries, assignPool(holidayPool, active, perDay, holidaySeed)...)

	schedule := Schedule{Year: year, VendorsPerDay: perDay, Entries: entries}
	schedule.SortEntries()
	return schedule
}

// assignPool applies the fair-assignment rule to one pool: for each date, in
// order, take the VendorsPerDay least-loaded vendors (name as deterministic
// tiebreak) and bump their counters.
func assignPool(pool []poolDate, vendors []Vendor, perDay VendorsPerDay, seed map[VendorID]int) []ScheduleEntry {
	counts := make(map[VendorID]int, len(vendors))
	for _, v := range vendors {
		counts[v.ID] = seed[v.ID]
	}

	ranked := append([]Vendor(nil), vendors...)

	entries := make([]ScheduleEntry, 0, len(pool))
	for _, pd := range pool {
		sort.SliceStable(ranked, func(i, j int) bool {
			ci, cj := counts[ranked[i].ID], counts[ranked[j].ID]
			if ci != cj {
				return ci < cj
			}
			return ranked[i].Name < ranked[j].Name
		})

		n := int(perDay)
		if n > len(ranked) {
			n = len(ranked)
		}
		chosen := make([]VendorID, n)
		for i := 0; i < n; i++ {
			chosen[i] = ranked[i].ID
			counts[ranked[i].ID]++
		}

		entries = append(entries, ScheduleEntry{
			ID:        NewEntryID(),
			Date:      pd.date,
			Type:      pd.typ,
			VendorIDs: chosen,
			Note:      pd.note,
		})
	}
	return entries
}
