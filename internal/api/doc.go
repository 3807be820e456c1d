// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

/*
Package api provides the HTTP REST API for Lunch Roulette.

Routes are served by a chi router with go-chi/cors and go-chi/httprate for
cross-origin access and request limiting.

Endpoints:

  - POST /api/v1/roulette: pick a restaurant near the client
  - GET /api/v1/health/live, GET /api/v1/health/ready: probes
  - GET /api/v1/cache/stats, GET /api/v1/cache/info?key=: cache inspection
  - POST /api/v1/cache/sweep, DELETE /api/v1/cache: cache maintenance
  - GET /api/v1/stats/performance, GET /api/v1/stats/errors: diagnostics
  - GET /metrics: Prometheus exposition

Response Shapes:

The roulette endpoint answers with the flat roulette.Response document:

	{
	  "success": true,
	  "restaurant": {"id": "J001234567", "name": "...", "distance_info": {...}},
	  "location": {"latitude": 35.6812, "longitude": 139.7671, "source": "client"},
	  "weather": {"temperature": 21.5, "description": "...", "is_default": false},
	  "search_info": {"radius_km": 1, "max_budget": 1200, "total_found": 12}
	}

When no affordable restaurant is found the status is still 200 with
"success": false and an "error_info" message. Every other endpoint uses the
models.APIResponse envelope.

Usage Example:

	handler := api.NewHandler(rouletteSvc, cacheSvc, errs, perfMon)
	router := api.NewRouter(handler, &cfg.Security)
	srv := &http.Server{Addr: ":8080", Handler: router.SetupChi()}

Thread Safety:

Handler and Router are safe for concurrent use once constructed.
*/
package api
