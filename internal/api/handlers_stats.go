// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package api

import (
	"net/http"
	"strconv"
	"time"
)

const defaultRecentSamples = 50

// PerformanceStats reports per-endpoint latency percentiles.
//
// @Summary Request latency statistics
// @Tags Stats
// @Produce json
// @Param recent query int false "Number of recent samples to include (default 50)"
// @Success 200 {object} models.APIResponse
// @Router /stats/performance [get]
func (h *Handler) PerformanceStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	recent := defaultRecentSamples
	if v := r.URL.Query().Get("recent"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, codeValidation, "recent must be a non-negative integer", nil)
			return
		}
		recent = n
	}

	respondSuccess(w, start, map[string]any{
		"endpoints": h.perfMon.GetStats(),
		"recent":    h.perfMon.GetRecentMetrics(recent),
	})
}

// ErrorStats reports upstream error counts by type.
//
// @Summary Upstream error counters
// @Tags Stats
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /stats/errors [get]
func (h *Handler) ErrorStats(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, time.Now(), map[string]any{
		"counts": h.errs.Stats().Snapshot(),
	})
}
