/*
handlers.go - HTTP API handlers for the rotation engine

PURPOSE:
  Exposes the rotation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the state
  container and domain logic.

ENDPOINTS:
  Vendors:
    GET    /api/vendors                 List the roster
    POST   /api/vendors                 Add a vendor
    POST   /api/vendors/seed            Seed the default roster
    PUT    /api/vendors/{id}            Rename / (de)activate
    DELETE /api/vendors/{id}            Remove a vendor

  Holidays:
    GET    /api/holidays/{year}                   List the year's set
    POST   /api/holidays/{year}                   Add one holiday
    PUT    /api/holidays/{year}/{id}              Edit a holiday
    DELETE /api/holidays/{year}/{id}              Remove a holiday
    POST   /api/holidays/{year}/import/national   Replace with national catalog
    POST   /api/holidays/{year}/import/municipal  Merge municipal lookup results
    GET    /api/states                            Brazilian state list

  Schedules:
    GET    /api/schedules/{year}                  Fetch the schedule
    POST   /api/schedules/{year}/generate         (Re)generate
    DELETE /api/schedules/{year}                  Remove schedule + entries
    PATCH  /api/schedules/{year}/entries/{id}     Edit one entry
    POST   /api/schedules/{year}/entries/locked   Bulk lock/unlock
    POST   /api/schedules/{year}/entries/clear    Clear unlocked assignments
    GET    /api/schedules/{year}/stats            Per-vendor workload

OWNER SCOPING:
  Every request is scoped to an owner via the X-Owner-ID header (falls
  back to "default" for single-tenant deployments). The handler keeps one
  lazily loaded state.App per owner.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invariant violations (vendor cap)
  - 404: Record not found
  - 503: Data load timed out
  - 500: Persistence and other internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - state/state.go: The command layer these handlers drive
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/escala/rotation-engine/holidays"
	"github.com/escala/rotation-engine/rotation"
	"github.com/escala/rotation-engine/state"
)

// OwnerHeader selects the tenant. Missing means the default owner.
const OwnerHeader = "X-Owner-ID"

const defaultOwner = rotation.OwnerID("default")

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     rotation.Store
	Municipal holidays.MunicipalSource
	Log       zerolog.Logger

	stateOpts []state.Option

	mu   sync.Mutex
	apps map[rotation.OwnerID]*state.App
}

// NewHandler creates a handler over the given store. stateOpts are passed
// to every per-owner state container (load timeout, logger).
func NewHandler(store rotation.Store, municipal holidays.MunicipalSource, log zerolog.Logger, stateOpts ...state.Option) *Handler {
	return &Handler{
		Store:     store,
		Municipal: municipal,
		Log:       log,
		stateOpts: stateOpts,
		apps:      make(map[rotation.OwnerID]*state.App),
	}
}

// app returns the owner's loaded state container, creating and loading it
// on first use.
func (h *Handler) app(ctx context.Context, r *http.Request) (*state.App, error) {
	owner := rotation.OwnerID(r.Header.Get(OwnerHeader))
	if owner == "" {
		owner = defaultOwner
	}

	h.mu.Lock()
	a, ok := h.apps[owner]
	if !ok {
		a = state.New(h.Store, owner, h.stateOpts...)
		h.apps[owner] = a
	}
	h.mu.Unlock()

	if !a.Loaded() {
		if err := a.Load(ctx); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// =============================================================================
// VENDOR HANDLERS
// =============================================================================

// ListVendors returns the owner's roster.
func (h *Handler) ListVendors(w http.ResponseWriter, r *http.Request) {
	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVendorDTOs(a.Vendors()))
}

// CreateVendor adds one active vendor.
func (h *Handler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req CreateVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Vendor name is required", nil)
		return
	}

	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	vendor, err := a.AddVendor(r.Context(), req.Name)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVendorDTO(vendor))
}

// SeedVendors creates the default roster for a fresh owner.
func (h *Handler) SeedVendors(w http.ResponseWriter, r *http.Request) {
	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	seeded, err := a.SeedDefaultVendors(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVendorDTOs(seeded))
}

// UpdateVendor applies a partial vendor edit.
func (h *Handler) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	var req UpdateVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	id := rotation.VendorID(chi.URLParam(r, "id"))
	if err := a.UpdateVendor(r.Context(), id, req); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteVendor removes a vendor from the roster.
func (h *Handler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	id := rotation.VendorID(chi.URLParam(r, "id"))
	if err := a.RemoveVendor(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns the year's holiday set.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHolidayDTOs(a.Holidays(year)))
}

// CreateHoliday records one holiday.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := rotation.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Holiday name is required", nil)
		return
	}

	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	holiday, err := a.AddHoliday(r.Context(), year, date, req.Name)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// UpdateHoliday applies a partial holiday edit.
func (h *Handler) UpdateHoliday(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var req UpdateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var patch state.HolidayPatch
	if req.Date != nil {
		date, err := rotation.ParseDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		patch.Date = &date
	}
	patch.Name = req.Name

	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	id := rotation.HolidayID(chi.URLParam(r, "id"))
	if err := a.UpdateHoliday(r.Context(), year, id, patch); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteHoliday removes one holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	id := rotation.HolidayID(chi.URLParam(r, "id"))
	if err := a.RemoveHoliday(r.Context(), year, id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportNationalHolidays replaces the year's set with the national catalog.
func (h *Handler) ImportNationalHolidays(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	imported, err := a.ImportNational(r.Context(), year)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	holidayImports.WithLabelValues("national").Inc()
	writeJSON(w, http.StatusOK, ImportResultDTO{
		Imported: len(imported),
		Holidays: toHolidayDTOs(imported),
	})
}

// ImportMunicipalHolidays fetches state/municipal holidays for a location
// and merges the new ones into the year's set.
func (h *Handler) ImportMunicipalHolidays(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var req ImportMunicipalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.State == "" || req.City == "" {
		writeError(w, http.StatusBadRequest, "State and city are required", nil)
		return
	}

	candidates, err := h.Municipal.Fetch(r.Context(), year, req.State, req.City)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Municipal holiday lookup failed", err)
		return
	}

	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	imported, err := a.ImportMunicipal(r.Context(), year, candidates)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	holidayImports.WithLabelValues("municipal").Inc()
	writeJSON(w, http.StatusOK, ImportResultDTO{Imported: imported})
}

// ListStates returns the Brazilian state list for the lookup UI.
func (h *Handler) ListStates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, holidays.BrazilianStates)
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetSchedule returns the year's schedule.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	schedule := a.Schedule(year)
	if schedule == nil {
		writeError(w, http.StatusNotFound, "Schedule not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(schedule))
}

// GenerateSchedule (re)builds the year's schedule, preserving locked
// entries of any previous run.
func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var req GenerateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	schedule, err := a.Generate(r.Context(), year, rotation.VendorsPerDay(req.VendorsPerDay))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	scheduleGenerations.Inc()
	writeJSON(w, http.StatusOK, toScheduleDTO(schedule))
}

// DeleteSchedule removes the year's schedule and entries.
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := a.RemoveSchedule(r.Context(), year); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateEntry applies a partial edit to one schedule entry.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var patch rotation.EntryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	id := rotation.EntryID(chi.URLParam(r, "id"))
	entry, err := a.UpdateEntry(r.Context(), year, id, patch)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// SetEntriesLocked bulk-toggles the locked flag ("lock whole month").
func (h *Handler) SetEntriesLocked(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var req SetLockedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ids := make([]rotation.EntryID, len(req.EntryIDs))
	for i, id := range req.EntryIDs {
		ids[i] = rotation.EntryID(id)
	}

	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := a.SetEntriesLocked(r.Context(), year, ids, req.Locked); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearUnlockedVendors empties assignments on every unlocked entry.
func (h *Handler) ClearUnlockedVendors(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := a.ClearUnlockedVendors(r.Context(), year); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStats returns per-vendor workload counts, points and shares.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	a, err := h.app(r.Context(), r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	stats := a.Stats(year)
	shares := rotation.WorkloadShares(stats)
	dtos := make([]VendorStatsDTO, len(stats))
	for i, st := range stats {
		dtos[i] = VendorStatsDTO{
			VendorID:     string(st.VendorID),
			SundayCount:  st.SundayCount,
			HolidayCount: st.HolidayCount,
			TotalPoints:  st.TotalPoints,
			Share:        shares[i].Share.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, false
	}
	return year, true
}

// writeDomainError maps domain errors to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case rotation.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case rotation.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, state.ErrLoadTimeout):
		writeError(w, http.StatusServiceUnavailable, "Data load timed out", err)
	case errors.Is(err, rotation.ErrNotLoaded):
		writeError(w, http.StatusServiceUnavailable, "Data not loaded", err)
	default:
		h.Log.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
