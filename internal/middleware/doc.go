// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

/*
Package middleware provides the HTTP middleware shared by the API router.

All middleware has the chi signature func(http.Handler) http.Handler.

Key Components:

  - RequestID: X-Request-ID propagation plus request and correlation IDs in
    the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge labelled
    by chi route pattern
  - Compression: gzip for JSON responses
  - PerformanceMonitor: rolling latency percentiles per endpoint, served by
    GET /api/v1/stats/performance

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perfMon.Middleware)
	r.Use(middleware.Compression)

Route patterns are only known once chi has routed the request, so the
metrics middlewares read them after calling the next handler.

Thread Safety:

All middleware is safe for concurrent use. PerformanceMonitor guards its
samples with a sync.RWMutex.
*/
package middleware
