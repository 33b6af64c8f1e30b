// Package metrics provides Prometheus metrics recording for internal packages.
// This package exists to avoid import cycles between the registry client,
// the service layer and the HTTP middleware.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry request outcomes
const (
	OutcomeOK             = "ok"
	OutcomeTransportError = "transport_error"
	OutcomeStatusError    = "status_error"
	OutcomeDecodeError    = "decode_error"
)

// Rejection reasons
const (
	ReasonGraphQLErrors = "graphql_errors"
	ReasonEmpty         = "empty"
	ReasonMalformed     = "malformed"
)

// Cache lookup results
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// registryRequestDuration tracks registry round trips in seconds
	registryRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metadata_registry_request_duration_seconds",
			Help:    "Metadata registry request duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	// registryRequestsTotal counts registry requests by outcome
	registryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_registry_requests_total",
			Help: "Total number of metadata registry requests",
		},
		[]string{"operation", "outcome"},
	)

	// registrySlowRequests counts registry requests slower than a second
	registrySlowRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_registry_slow_requests_total",
			Help: "Total number of metadata registry requests slower than 1s",
		},
		[]string{"operation"},
	)

	// registryRejections counts 2xx responses that failed validation
	registryRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_registry_rejected_responses_total",
			Help: "Total number of registry responses rejected by validation",
		},
		[]string{"operation", "reason"},
	)

	// cacheLookups counts response cache lookups by result
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_cache_lookups_total",
			Help: "Total number of registry response cache lookups",
		},
		[]string{"operation", "result"},
	)

	// circuitState exposes the registry circuit breaker state (0 closed, 1 open, 2 half-open)
	circuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "metadata_circuit_breaker_state",
			Help: "Registry circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)
)

// RecordRegistryRequest records one registry round trip
func RecordRegistryRequest(operation, outcome string, duration time.Duration) {
	registryRequestsTotal.WithLabelValues(operation, outcome).Inc()
	registryRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())

	if duration > time.Second {
		registrySlowRequests.WithLabelValues(operation).Inc()
	}
}

// RecordRejectedResponse counts a response that arrived but failed validation
func RecordRejectedResponse(operation, reason string) {
	registryRejections.WithLabelValues(operation, reason).Inc()
}

// RecordCacheLookup records a response cache lookup
func RecordCacheLookup(operation, result string) {
	cacheLookups.WithLabelValues(operation, result).Inc()
}

// SetCircuitState records the current state of a circuit breaker
func SetCircuitState(name string, state int) {
	circuitState.WithLabelValues(name).Set(float64(state))
}
