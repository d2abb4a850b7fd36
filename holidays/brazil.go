/*
Package holidays computes and fetches the holiday sets the scheduler
consumes.

PURPOSE:
  Two data sources feed the rotation engine:
  - the Brazilian national catalog: a pure function of the year (eight
    fixed dates plus five derived from the Gregorian Easter computation)
  - municipal holidays: fetched from an external lookup service and
    merge-imported with date-level dedup

  The engine is agnostic to which source a holiday came from; both produce
  plain (date, name) candidates that the state container turns into
  Holiday records.

SEE ALSO:
  - source.go: Municipal holiday lookup boundary
  - states.go: Brazilian state list backing the lookup UI
*/
package holidays

import (
	"sort"
	"time"

	"github.com/escala/rotation-engine/rotation"
)

// Candidate is a holiday without an id, as produced by a source and
// consumed by the import operations.
type Candidate struct {
	Date rotation.Date `json:"date"`
	Name string        `json:"name"`
}

// Easter returns Easter Sunday for the year, per the anonymous Gregorian
// (Meeus/Jones/Butcher) algorithm. Valid for any Gregorian year.
func Easter(year int) rotation.Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1
	return rotation.NewDate(year, time.Month(month), day)
}

// Brazilian returns the thirteen national holidays for the year, sorted by
// date ascending: eight fixed dates plus Carnival (Easter-48 and -47),
// Good Friday (Easter-2), Easter itself, and Corpus Christi (Easter+60).
// Pure and exactly reproducible: no I/O, no randomness.
func Brazilian(year int) []Candidate {
	easter := Easter(year)

	fixed := []Candidate{
		{Date: mustDate(year, 1, 1), Name: "Ano Novo"},
		{Date: mustDate(year, 4, 21), Name: "Tiradentes"},
		{Date: mustDate(year, 5, 1), Name: "Dia do Trabalho"},
		{Date: mustDate(year, 9, 7), Name: "Independência do Brasil"},
		{Date: mustDate(year, 10, 12), Name: "Nossa Sra. Aparecida"},
		{Date: mustDate(year, 11, 2), Name: "Finados"},
		{Date: mustDate(year, 11, 15), Name: "Proclamação da República"},
		{Date: mustDate(year, 12, 25), Name: "Natal"},
	}

	moveable := []Candidate{
		{Date: easter.AddDays(-48), Name: "Carnaval"},
		{Date: easter.AddDays(-47), Name: "Carnaval"},
		{Date: easter.AddDays(-2), Name: "Sexta-Feira Santa"},
		{Date: easter, Name: "Páscoa"},
		{Date: easter.AddDays(60), Name: "Corpus Christi"},
	}

	all := append(fixed, moveable...)
	sort.Slice(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	return all
}

func mustDate(year, month, day int) rotation.Date {
	return rotation.NewDate(year, time.Month(month), day)
}
