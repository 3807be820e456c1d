// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

// Package metrics holds the Prometheus instrumentation for Lunch Roulette:
// API traffic, cache efficiency, upstream provider health, circuit breakers
// and classified errors. All collectors register on the default registry
// and are exposed by the /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lunch_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lunch_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunch_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunch_cache_lookups_total",
			Help: "Cache lookups by result (hit, miss, expired, stale, error)",
		},
		[]string{"result"},
	)

	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunch_cache_writes_total",
			Help: "Cache writes by result (ok, store_error, serialization_error)",
		},
		[]string{"result"},
	)

	CacheSweepDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lunch_cache_sweep_deleted_total",
			Help: "Total number of expired cache rows removed by sweeps",
		},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lunch_cache_entries",
			Help: "Cache rows by state (total, valid, expired) as of the last stats call",
		},
		[]string{"state"},
	)

	CacheSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lunch_cache_size_bytes",
			Help: "Storage size reported by the cache store",
		},
	)

	// Upstream Provider Metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lunch_upstream_request_duration_seconds",
			Help:    "Duration of upstream provider calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunch_upstream_requests_total",
			Help: "Upstream provider calls by result (success, failure)",
		},
		[]string{"provider", "result"},
	)

	UpstreamFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunch_upstream_fallbacks_total",
			Help: "Upstream results served from a fallback (stale, default)",
		},
		[]string{"provider", "kind"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lunch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunch_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunch_circuit_breaker_requests_total",
			Help: "Requests through circuit breakers by result (success, failure, rejected)",
		},
		[]string{"name", "result"},
	)

	// Error and Selection Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunch_errors_total",
			Help: "Classified errors by error type",
		},
		[]string{"type"},
	)

	Selections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunch_selections_total",
			Help: "Roulette selections by result (selected, no_candidates)",
		},
		[]string{"result"},
	)

	DistanceFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lunch_distance_fallbacks_total",
			Help: "Walking distance results replaced by the fixed fallback record",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a request rejected by the API rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordCacheLookup counts a cache read by result.
func RecordCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheWrite counts a cache write by result.
func RecordCacheWrite(result string) {
	CacheWrites.WithLabelValues(result).Inc()
}

// RecordSweep adds the number of rows removed by an expiry sweep.
func RecordSweep(deleted int) {
	if deleted > 0 {
		CacheSweepDeleted.Add(float64(deleted))
	}
}

// UpdateCacheGauges publishes the latest store statistics.
func UpdateCacheGauges(total, valid, expired int, sizeBytes int64) {
	CacheEntries.WithLabelValues("total").Set(float64(total))
	CacheEntries.WithLabelValues("valid").Set(float64(valid))
	CacheEntries.WithLabelValues("expired").Set(float64(expired))
	CacheSizeBytes.Set(float64(sizeBytes))
}

// RecordUpstreamRequest records the duration and outcome of an upstream call.
func RecordUpstreamRequest(provider string, duration time.Duration, err error) {
	UpstreamRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "failure"
	}
	UpstreamRequests.WithLabelValues(provider, result).Inc()
}

// RecordUpstreamFallback counts a result served from stale cache or defaults.
func RecordUpstreamFallback(provider, kind string) {
	UpstreamFallbacks.WithLabelValues(provider, kind).Inc()
}

// RecordError counts a classified error.
func RecordError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordSelection counts a roulette outcome.
func RecordSelection(found bool) {
	if found {
		Selections.WithLabelValues("selected").Inc()
		return
	}
	Selections.WithLabelValues("no_candidates").Inc()
}

// RecordDistanceFallback counts a walking distance replaced by the fallback record.
func RecordDistanceFallback() {
	DistanceFallbacks.Inc()
}
