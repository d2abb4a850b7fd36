package rotation

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// DATE - Civil date abstraction (the engine only cares about whole days)
// =============================================================================

// Date is a calendar date with day granularity, always in UTC.
// Two Dates are comparable with == and usable as map keys.
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO 8601 date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t.UTC()}, nil
}

// MustParseDate is ParseDate for compile-time-known literals (tests, catalogs).
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsSunday() bool        { return d.t.Weekday() == time.Sunday }

func (d Date) String() string { return d.t.Format(dateLayout) }

// Compare returns -1, 0, or 1 ordering d against other.
// Used for deterministic entry sorting.
func (d Date) Compare(other Date) int {
	switch {
	case d.Before(other):
		return -1
	case d.After(other):
		return 1
	default:
		return 0
	}
}

// JSON round-trips as the ISO string ("2025-03-09").
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// YEAR UTILITIES
// =============================================================================

// Sundays returns every Sunday of the year, Jan 1 through Dec 31 inclusive,
// in ascending order.
func Sundays(year int) []Date {
	d := NewDate(year, time.January, 1)
	// Advance to the first Sunday of the year.
	for !d.IsSunday() {
		d = d.AddDays(1)
	}

	var sundays []Date
	for d.Year() == year {
		sundays = append(sundays, d)
		d = d.AddDays(7)
	}
	return sundays
}
