/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. zerolog:    Structured request logging
  4. Metrics:    Prometheus request counter
  5. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/vendors/*    Roster management
  /api/holidays/*   Holiday sets and imports
  /api/schedules/*  Schedule lifecycle and entry edits
  /api/states       Brazilian state list
  /metrics          Prometheus scrape endpoint (optional)

SECURITY NOTE:
  No authentication middleware. Owner scoping via X-Owner-ID is a tenancy
  convenience, not an access control.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/escala/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterOptions tune the middleware stack.
type RouterOptions struct {
	CORSOrigins []string
	Metrics     bool
}

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Log))
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", OwnerHeader},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", h.ListVendors)
			r.Post("/", h.CreateVendor)
			r.Post("/seed", h.SeedVendors)
			r.Put("/{id}", h.UpdateVendor)
			r.Delete("/{id}", h.DeleteVendor)
		})

		r.Route("/holidays/{year}", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Put("/{id}", h.UpdateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
			r.Post("/import/national", h.ImportNationalHolidays)
			r.Post("/import/municipal", h.ImportMunicipalHolidays)
		})

		r.Get("/states", h.ListStates)

		r.Route("/schedules/{year}", func(r chi.Router) {
			r.Get("/", h.GetSchedule)
			r.Post("/generate", h.GenerateSchedule)
			r.Delete("/", h.DeleteSchedule)
			r.Get("/stats", h.GetStats)
			r.Patch("/entries/{id}", h.UpdateEntry)
			r.Post("/entries/locked", h.SetEntriesLocked)
			r.Post("/entries/clear", h.ClearUnlockedVendors)
		})
	})

	if opts.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// requestLogger emits one structured log line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
