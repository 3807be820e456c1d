// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package api

import (
	"context"
	"time"

	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/errhandler"
	"github.com/tomtom215/lunchroulette/internal/middleware"
	"github.com/tomtom215/lunchroulette/internal/roulette"
)

// Recommender picks a restaurant for a roulette request.
// *roulette.Service implements it.
type Recommender interface {
	Recommend(ctx context.Context, req roulette.Request) (roulette.Response, error)
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response and request helpers
//   - handlers_health.go: liveness and readiness probes
//   - handlers_roulette.go: the roulette endpoint
//   - handlers_cache.go: cache inspection and maintenance
//   - handlers_stats.go: performance and error statistics
type Handler struct {
	roulette  Recommender
	cache     *cache.Service
	errs      *errhandler.Handler
	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// errs should be the Handler shared with the upstream clients so that
// /api/v1/stats/errors reports their counts. A nil errs or perfMon gets a
// fresh instance; the default monitor keeps the last 1000 requests.
//
// Example:
//
//	handler := api.NewHandler(rouletteSvc, cacheSvc, errs, nil)
//	router := api.NewRouter(handler, &cfg.Security)
//	http.ListenAndServe(":8080", router.SetupChi())
func NewHandler(rec Recommender, cacheSvc *cache.Service, errs *errhandler.Handler, perfMon *middleware.PerformanceMonitor) *Handler {
	if errs == nil {
		errs = errhandler.New()
	}
	if perfMon == nil {
		perfMon = middleware.NewPerformanceMonitor(1000, 0)
	}
	return &Handler{
		roulette:  rec,
		cache:     cacheSvc,
		errs:      errs,
		perfMon:   perfMon,
		startTime: time.Now(),
	}
}

// PerformanceMonitor returns the monitor the router samples requests into.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}
