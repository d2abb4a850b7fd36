package rotation_test

import (
	"testing"
	"time"

	"github.com/escala/rotation-engine/rotation"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func roster(names ...string) []rotation.Vendor {
	vendors := make([]rotation.Vendor, len(names))
	for i, name := range names {
		vendors[i] = rotation.Vendor{
			ID:     rotation.VendorID("v-" + name),
			Name:   name,
			Active: true,
		}
	}
	return vendors
}

func holiday(date, name string) rotation.Holiday {
	return rotation.Holiday{
		ID:   rotation.NewHolidayID(),
		Date: rotation.MustParseDate(date),
		Name: name,
	}
}

// poolCounts tallies assignments per vendor over entries of one type.
func poolCounts(s rotation.Schedule, typ rotation.EntryType) map[rotation.VendorID]int {
	counts := make(map[rotation.VendorID]int)
	for _, e := range s.Entries {
		if e.Type != typ || e.Closed {
			continue
		}
		for _, vid := range e.VendorIDs {
			counts[vid]++
		}
	}
	return counts
}

func spread(counts map[rotation.VendorID]int, vendors []rotation.Vendor) int {
	min, max := int(^uint(0)>>1), 0
	for _, v := range vendors {
		c := counts[v.ID]
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}
	return max - min
}

// =============================================================================
// GENERATION TESTS
// =============================================================================

func TestGenerate_EmptyRoster(t *testing.T) {
	// GIVEN: No active vendors
	// THEN: A valid, empty schedule - not an error

	s := rotation.Generate(2024, nil, nil, rotation.TwoPerDay, nil)
	if len(s.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(s.Entries))
	}
	if s.Year != 2024 || s.VendorsPerDay != rotation.TwoPerDay {
		t.Errorf("schedule metadata wrong: %+v", s)
	}
}

func TestGenerate_InactiveVendorsExcluded(t *testing.T) {
	vendors := roster("Ana", "Bia")
	vendors[1].Active = false

	s := rotation.Generate(2024, vendors, nil, rotation.TwoPerDay, nil)
	counts := poolCounts(s, rotation.EntrySunday)
	if counts[vendors[1].ID] != 0 {
		t.Errorf("inactive vendor received %d assignments", counts[vendors[1].ID])
	}
	if counts[vendors[0].ID] != 52 {
		t.Errorf("lone active vendor should cover every Sunday, got %d", counts[vendors[0].ID])
	}
}

func TestGenerate_CoversEverySundayAndHoliday(t *testing.T) {
	vendors := roster("Ana", "Bia", "Caio", "Duda")
	hs := []rotation.Holiday{
		holiday("2024-05-01", "Dia do Trabalho"),
		holiday("2024-12-25", "Natal"),
	}

	s := rotation.Generate(2024, vendors, hs, rotation.TwoPerDay, nil)

	// 52 Sundays, none of which is a holiday in this set, plus 2 holidays.
	if len(s.Entries) != 54 {
		t.Fatalf("expected 54 entries, got %d", len(s.Entries))
	}
	for _, e := range s.Entries {
		if len(e.VendorIDs) != 2 {
			t.Errorf("%s: expected 2 vendors, got %d", e.Date, len(e.VendorIDs))
		}
	}
}

func TestGenerate_FairSpreadAtMostOne(t *testing.T) {
	// GIVEN: 5 vendors over 52 Sundays at 2 per day (104 slots, not divisible)
	// THEN: The busiest and idlest vendors differ by at most one assignment

	vendors := roster("Ana", "Bia", "Caio", "Duda", "Edu")
	s := rotation.Generate(2024, vendors, nil, rotation.TwoPerDay, nil)

	counts := poolCounts(s, rotation.EntrySunday)
	if got := spread(counts, vendors); got > 1 {
		t.Errorf("sunday spread %d exceeds 1: %v", got, counts)
	}
}

func TestGenerate_PoolsBalancedIndependently(t *testing.T) {
	vendors := roster("Ana", "Bia", "Caio")
	hs := []rotation.Holiday{
		holiday("2024-01-01", "Ano Novo"),
		holiday("2024-05-01", "Dia do Trabalho"),
		holiday("2024-09-07", "Independência do Brasil"),
		holiday("2024-11-15", "Proclamação da República"),
		holiday("2024-12-25", "Natal"),
	}

	s := rotation.Generate(2024, vendors, hs, rotation.TwoPerDay, nil)

	if got := spread(poolCounts(s, rotation.EntrySunday), vendors); got > 1 {
		t.Errorf("sunday spread %d exceeds 1", got)
	}
	if got := spread(poolCounts(s, rotation.EntryHoliday), vendors); got > 1 {
		t.Errorf("holiday spread %d exceeds 1", got)
	}
}

func TestGenerate_HolidayOnSundayBecomesHolidayEntry(t *testing.T) {
	// GIVEN: Páscoa 2024 falls on Sunday March 31
	// THEN: Exactly one entry for that date, typed holiday, carrying the name

	vendors := roster("Ana", "Bia")
	hs := []rotation.Holiday{holiday("2024-03-31", "Páscoa")}

	s := rotation.Generate(2024, vendors, hs, rotation.TwoPerDay, nil)

	date := rotation.MustParseDate("2024-03-31")
	var matches []rotation.ScheduleEntry
	for _, e := range s.Entries {
		if e.Date.Equal(date) {
			matches = append(matches, e)
		}
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one entry on %s, got %d", date, len(matches))
	}
	if matches[0].Type != rotation.EntryHoliday {
		t.Errorf("expected holiday type, got %s", matches[0].Type)
	}
	if matches[0].Note != "Páscoa" {
		t.Errorf("expected holiday name as note, got %q", matches[0].Note)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	// Entry ids differ between runs; assignments per date must not.
	vendors := roster("Ana", "Bia", "Caio", "Duda")
	hs := []rotation.Holiday{holiday("2024-05-01", "Dia do Trabalho")}

	a := rotation.Generate(2024, vendors, hs, rotation.ThreePerDay, nil)
	b := rotation.Generate(2024, vendors, hs, rotation.ThreePerDay, nil)

	if len(a.Entries) != len(b.Entries) {
		t.Fatalf("entry counts differ: %d vs %d", len(a.Entries), len(b.Entries))
	}
	for i := range a.Entries {
		ea, eb := a.Entries[i], b.Entries[i]
		if !ea.Date.Equal(eb.Date) || ea.Type != eb.Type {
			t.Fatalf("entry %d differs in date/type", i)
		}
		if len(ea.VendorIDs) != len(eb.VendorIDs) {
			t.Fatalf("%s: vendor counts differ", ea.Date)
		}
		for j := range ea.VendorIDs {
			if ea.VendorIDs[j] != eb.VendorIDs[j] {
				t.Errorf("%s: assignment differs at slot %d", ea.Date, j)
			}
		}
	}
}

func TestGenerate_RosterSmallerThanPerDay(t *testing.T) {
	vendors := roster("Ana")
	s := rotation.Generate(2024, vendors, nil, rotation.ThreePerDay, nil)
	for _, e := range s.Entries {
		if len(e.VendorIDs) != 1 {
			t.Errorf("%s: expected 1 vendor, got %d", e.Date, len(e.VendorIDs))
		}
	}
}

// =============================================================================
// REGENERATION TESTS
// =============================================================================

func TestGenerate_PreservesLockedEntries(t *testing.T) {
	// GIVEN: A schedule with one manually edited, locked entry
	// WHEN: Regenerating
	// THEN: The locked entry survives verbatim (same id, vendors, note) and
	//       its date is not re-derived

	vendors := roster("Ana", "Bia", "Caio")
	first := rotation.Generate(2024, vendors, nil, rotation.TwoPerDay, nil)

	lockedEntry := &first.Entries[3]
	lockedEntry.Locked = true
	lockedEntry.VendorIDs = []rotation.VendorID{vendors[2].ID}
	lockedEntry.Note = "troca combinada"

	second := rotation.Generate(2024, vendors, nil, rotation.TwoPerDay, &first)

	kept := second.Entry(lockedEntry.ID)
	if kept == nil {
		t.Fatal("locked entry dropped on regeneration")
	}
	if !kept.Locked || kept.Note != "troca combinada" {
		t.Errorf("locked entry mutated: %+v", kept)
	}
	if len(kept.VendorIDs) != 1 || kept.VendorIDs[0] != vendors[2].ID {
		t.Errorf("locked assignment mutated: %v", kept.VendorIDs)
	}

	// No duplicate entry for the locked date.
	n := 0
	for _, e := range second.Entries {
		if e.Date.Equal(kept.Date) {
			n++
		}
	}
	if n != 1 {
		t.Errorf("locked date appears %d times", n)
	}
}

func TestGenerate_ClosedLockedDaySurvives(t *testing.T) {
	vendors := roster("Ana", "Bia")
	first := rotation.Generate(2024, vendors, nil, rotation.TwoPerDay, nil)

	closed := &first.Entries[0]
	closed.Locked = true
	closed.Closed = true
	closed.VendorIDs = nil

	second := rotation.Generate(2024, vendors, nil, rotation.TwoPerDay, &first)
	kept := second.Entry(closed.ID)
	if kept == nil {
		t.Fatal("closed locked entry dropped")
	}
	if !kept.Closed || len(kept.VendorIDs) != 0 {
		t.Errorf("closed day regained vendors: %+v", kept)
	}
}

func TestGenerate_LockedLoadSeedsCounters(t *testing.T) {
	// GIVEN: Ana holds locked assignments on the first four Sundays
	// WHEN: The rest of the year is regenerated
	// THEN: Ana ends the year no more than one assignment ahead of anyone

	vendors := roster("Ana", "Bia", "Caio")
	first := rotation.Generate(2024, vendors, nil, rotation.TwoPerDay, nil)

	for i := 0; i < 4; i++ {
		first.Entries[i].Locked = true
		first.Entries[i].VendorIDs = []rotation.VendorID{vendors[0].ID}
	}

	second := rotation.Generate(2024, vendors, nil, rotation.TwoPerDay, &first)
	counts := poolCounts(second, rotation.EntrySunday)
	if got := spread(counts, vendors); got > 1 {
		t.Errorf("locked seed not honored, spread %d: %v", got, counts)
	}
}

func TestGenerate_SortedByDate(t *testing.T) {
	vendors := roster("Ana", "Bia")
	hs := []rotation.Holiday{
		holiday("2024-12-25", "Natal"),
		holiday("2024-01-01", "Ano Novo"),
	}
	s := rotation.Generate(2024, vendors, hs, rotation.TwoPerDay, nil)
	for i := 1; i < len(s.Entries); i++ {
		if s.Entries[i].Date.Before(s.Entries[i-1].Date) {
			t.Fatalf("entries out of order at %d", i)
		}
	}
	if s.Entries[0].Date != rotation.NewDate(2024, time.January, 1) {
		t.Errorf("expected Ano Novo first, got %s", s.Entries[0].Date)
	}
}
