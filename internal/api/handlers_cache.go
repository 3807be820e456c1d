// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package api

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/logging"
)

// CacheStatsResponse is the data of GET /api/v1/cache/stats.
type CacheStatsResponse struct {
	cache.StoreStats
	Backend    string `json:"backend"`
	TTLSeconds int    `json:"ttl_seconds"`
	SizeHuman  string `json:"size_human"`
}

type cacheInfoRequest struct {
	Key string `json:"key" validate:"required,notblank,max=256"`
}

// CacheStats reports row counts and size of the cache store.
//
// @Summary Cache statistics
// @Tags Cache
// @Produce json
// @Success 200 {object} models.APIResponse{data=CacheStatsResponse}
// @Failure 500 {object} models.APIResponse "Store unavailable"
// @Router /cache/stats [get]
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats, err := h.cache.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeCache, "Failed to read cache statistics", err)
		return
	}

	respondSuccess(w, start, CacheStatsResponse{
		StoreStats: stats,
		Backend:    h.cache.Store().Name(),
		TTLSeconds: int(h.cache.TTL().Seconds()),
		SizeHuman:  humanize.Bytes(uint64(max(stats.SizeBytes, 0))),
	})
}

// CacheInfo returns metadata for one cache key without its value.
//
// @Summary Cache entry metadata
// @Tags Cache
// @Produce json
// @Param key query string true "Cache key"
// @Success 200 {object} models.APIResponse{data=cache.Info}
// @Failure 400 {object} models.APIResponse "Missing key"
// @Failure 404 {object} models.APIResponse "Unknown key"
// @Router /cache/info [get]
func (h *Handler) CacheInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := cacheInfoRequest{Key: r.URL.Query().Get("key")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	info, ok := h.cache.Info(r.Context(), req.Key)
	if !ok {
		respondError(w, http.StatusNotFound, codeNotFound, "Cache key not found", nil)
		return
	}
	respondSuccess(w, start, info)
}

// CacheSweep deletes expired cache rows.
//
// @Summary Delete expired cache entries
// @Tags Cache
// @Produce json
// @Success 200 {object} models.APIResponse "Number of rows removed"
// @Failure 500 {object} models.APIResponse "Store unavailable"
// @Router /cache/sweep [post]
func (h *Handler) CacheSweep(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	n, err := h.cache.Sweep(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeCache, "Failed to sweep cache", err)
		return
	}

	logging.CtxInfo(r.Context()).Int("removed", n).Msg("Cache swept via API")
	respondSuccess(w, start, map[string]any{"removed": n})
}

// CacheClear deletes every cache row.
//
// @Summary Clear the cache
// @Tags Cache
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse "Store unavailable"
// @Router /cache [delete]
func (h *Handler) CacheClear(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.cache.ClearAll(r.Context()) {
		respondError(w, http.StatusInternalServerError, codeCache, "Failed to clear cache", nil)
		return
	}

	logging.CtxWarn(r.Context()).Str("backend", h.cache.Store().Name()).Msg("Cache cleared via API")
	respondSuccess(w, start, map[string]any{"cleared": true})
}
