/*
metrics.go - Prometheus instrumentation

PURPOSE:
  Counts the operations worth watching on a small deployment: HTTP
  traffic by route and status, schedule generations, and holiday imports
  by source. Exposed on /metrics when enabled in config.
*/
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escala_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "escala_http_request_duration_seconds",
		Help:    "HTTP request duration by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	scheduleGenerations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "escala_schedule_generations_total",
		Help: "Schedule generation runs that persisted successfully.",
	})

	holidayImports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escala_holiday_imports_total",
		Help: "Holiday imports by source (national or municipal).",
	}, []string{"source"})
)

// metricsMiddleware records one httpRequests sample per request, labeled
// with the chi route pattern so ids don't explode cardinality.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
