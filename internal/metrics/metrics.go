// Package metrics exposes Prometheus instrumentation for the catalogue
// cache, the API client and the access tracker. Collectors register on
// the default registry; `shelf browse --metrics-addr` serves them.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/printandread/shelf/internal/domain"
)

var (
	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelf_cache_hits_total",
			Help: "Loader calls served from the catalogue cache",
		},
		[]string{"collection"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelf_cache_misses_total",
			Help: "Loader calls that went to the catalogue API",
		},
		[]string{"collection"},
	)

	CacheVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shelf_cache_version",
			Help: "Version of the most recently published cache snapshot",
		},
	)

	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelf_api_request_duration_seconds",
			Help:    "Catalogue API request latency",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	APIRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelf_api_request_errors_total",
			Help: "Failed catalogue API requests",
		},
		[]string{"operation", "error_type"},
	)

	APIRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shelf_api_retries_total",
			Help: "Catalogue API requests retried after a 5xx response",
		},
	)

	CircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shelf_api_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Tracker Metrics
	TrackerAccesses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelf_tracker_accesses_total",
			Help: "Accesses recorded by the access tracker",
		},
		[]string{"type"},
	)

	TrackerWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shelf_tracker_write_failures_total",
			Help: "Access list writes the durable store rejected",
		},
	)

	TrackerParseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shelf_tracker_parse_failures_total",
			Help: "Persisted access lists that could not be decoded",
		},
	)
)

// RecordAPIRequest records the latency and outcome of one API call.
func RecordAPIRequest(operation string, start time.Time, err error) {
	APIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		APIRequestErrors.WithLabelValues(operation, errorType(err)).Inc()
	}
}

func errorType(err error) string {
	var apiErr *domain.APIError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrServerOffline):
		return "offline"
	case errors.As(err, &apiErr):
		return "status"
	default:
		return "other"
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
