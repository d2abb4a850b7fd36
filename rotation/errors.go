/*
errors.go - Centralized error types for the rotation engine

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  Callers match with errors.Is / errors.As; the state and api layers wrap
  these with additional context.

ERROR CATEGORIES:
  1. Validation errors - Malformed input (dates, staffing levels, types)
  2. Invariant violations - Business rule breaches caught at the mutation
     boundary (vendor cap)
  3. Lookup errors - Addressed records that do not exist

Persistence failures are NOT modeled here: the Store implementations return
their own errors, and the state container's contract is simply
revert-and-report (see state package).
*/
package rotation

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidVendorsPerDay is returned for staffing levels other than 2 or 3.
	ErrInvalidVendorsPerDay = errors.New("vendors per day must be 2 or 3")

	// ErrInvalidEntryType is returned for entry types other than sunday/holiday.
	ErrInvalidEntryType = errors.New("invalid entry type")

	// ErrVendorCapExceeded is returned when a patch would assign more vendors
	// to an entry than the schedule's VendorsPerDay allows.
	ErrVendorCapExceeded = errors.New("vendor cap exceeded")

	// ErrVendorNotFound is returned when an addressed vendor does not exist.
	ErrVendorNotFound = errors.New("vendor not found")

	// ErrHolidayNotFound is returned when an addressed holiday does not exist.
	ErrHolidayNotFound = errors.New("holiday not found")

	// ErrScheduleNotFound is returned when no schedule exists for the year.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrEntryNotFound is returned when an addressed entry does not exist.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrNotLoaded is returned when a command runs before a successful Load.
	ErrNotLoaded = errors.New("owner data not loaded")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CapExceededError reports how far a patch overshot the staffing cap.
type CapExceededError struct {
	EntryID EntryID
	Got     int
	Max     VendorsPerDay
}

func (e *CapExceededError) Error() string {
	return fmt.Sprintf("entry %s: %d vendors assigned, cap is %d", e.EntryID, e.Got, int(e.Max))
}

func (e *CapExceededError) Unwrap() error { return ErrVendorCapExceeded }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether err addresses a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrVendorNotFound) ||
		errors.Is(err, ErrHolidayNotFound) ||
		errors.Is(err, ErrScheduleNotFound) ||
		errors.Is(err, ErrEntryNotFound)
}

// IsClientError reports whether err is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidVendorsPerDay) ||
		errors.Is(err, ErrInvalidEntryType) ||
		errors.Is(err, ErrVendorCapExceeded)
}
