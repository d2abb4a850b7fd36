/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and domain code, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - rotation/types.go: The domain types these mirror
*/
package api

import (
	"github.com/escala/rotation-engine/rotation"
	"github.com/escala/rotation-engine/state"
)

// =============================================================================
// VENDOR TYPES
// =============================================================================

// VendorDTO represents a roster member in API responses.
type VendorDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// CreateVendorRequest is the request to add a vendor.
type CreateVendorRequest struct {
	Name string `json:"name"`
}

// UpdateVendorRequest carries partial vendor edits; absent fields are
// left unchanged.
type UpdateVendorRequest = state.VendorPatch

func toVendorDTO(v rotation.Vendor) VendorDTO {
	return VendorDTO{ID: string(v.ID), Name: v.Name, Active: v.Active}
}

func toVendorDTOs(vendors []rotation.Vendor) []VendorDTO {
	dtos := make([]VendorDTO, len(vendors))
	for i, v := range vendors {
		dtos[i] = toVendorDTO(v)
	}
	return dtos
}

// =============================================================================
// HOLIDAY TYPES
// =============================================================================

// HolidayDTO represents a holiday in API responses.
type HolidayDTO struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// CreateHolidayRequest is the request to record a holiday.
type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// UpdateHolidayRequest carries partial holiday edits.
type UpdateHolidayRequest struct {
	Date *string `json:"date,omitempty"`
	Name *string `json:"name,omitempty"`
}

// ImportMunicipalRequest selects the lookup location.
type ImportMunicipalRequest struct {
	State string `json:"state"`
	City  string `json:"city"`
}

// ImportResultDTO reports an import outcome.
type ImportResultDTO struct {
	Imported int          `json:"imported"`
	Holidays []HolidayDTO `json:"holidays,omitempty"`
}

func toHolidayDTO(h rotation.Holiday) HolidayDTO {
	return HolidayDTO{ID: string(h.ID), Date: h.Date.String(), Name: h.Name}
}

func toHolidayDTOs(hs []rotation.Holiday) []HolidayDTO {
	dtos := make([]HolidayDTO, len(hs))
	for i, h := range hs {
		dtos[i] = toHolidayDTO(h)
	}
	return dtos
}

// =============================================================================
// SCHEDULE TYPES
// =============================================================================

// EntryDTO represents one schedule entry in API responses.
type EntryDTO struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	Type      string   `json:"type"`
	VendorIDs []string `json:"vendorIds"`
	Closed    bool     `json:"closed"`
	Locked    bool     `json:"locked"`
	Note      string   `json:"note,omitempty"`
}

// ScheduleDTO represents a year's schedule.
type ScheduleDTO struct {
	Year          int        `json:"year"`
	VendorsPerDay int        `json:"vendorsPerDay"`
	Entries       []EntryDTO `json:"entries"`
}

// GenerateScheduleRequest selects the staffing level for generation.
type GenerateScheduleRequest struct {
	VendorsPerDay int `json:"vendorsPerDay"`
}

// SetLockedRequest is the bulk lock/unlock request.
type SetLockedRequest struct {
	EntryIDs []string `json:"entryIds"`
	Locked   bool     `json:"locked"`
}

// VendorStatsDTO reports one vendor's workload.
type VendorStatsDTO struct {
	VendorID     string `json:"vendorId"`
	SundayCount  int    `json:"sundayCount"`
	HolidayCount int    `json:"holidayCount"`
	TotalPoints  int    `json:"totalPoints"`
	Share        string `json:"share"`
}

func toEntryDTO(e rotation.ScheduleEntry) EntryDTO {
	ids := make([]string, len(e.VendorIDs))
	for i, id := range e.VendorIDs {
		ids[i] = string(id)
	}
	return EntryDTO{
		ID:        string(e.ID),
		Date:      e.Date.String(),
		Type:      string(e.Type),
		VendorIDs: ids,
		Closed:    e.Closed,
		Locked:    e.Locked,
		Note:      e.Note,
	}
}

func toScheduleDTO(s *rotation.Schedule) ScheduleDTO {
	dto := ScheduleDTO{
		Year:          s.Year,
		VendorsPerDay: int(s.VendorsPerDay),
		Entries:       make([]EntryDTO, len(s.Entries)),
	}
	for i, e := range s.Entries {
		dto.Entries[i] = toEntryDTO(e)
	}
	return dto
}

// =============================================================================
// COMMON TYPES
// =============================================================================

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
