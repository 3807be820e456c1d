// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lunchroulette/internal/logging"
	"github.com/tomtom215/lunchroulette/internal/models"
	"github.com/tomtom215/lunchroulette/internal/roulette"
)

// rouletteRequest is the POST /api/v1/roulette body. Every field is optional.
type rouletteRequest struct {
	models.Coordinates
	MaxWalkingTimeMin int `json:"max_walking_time_min,omitempty" validate:"gte=0,lte=60"`
}

// Roulette picks a random affordable restaurant near the client.
//
// @Summary Spin the lunch roulette
// @Description Picks a random restaurant within walking distance and budget. Coordinates are optional;
// @Description without them the client IP is geolocated. Upstream failures degrade the answer instead of failing it.
// @Tags Roulette
// @Accept json
// @Produce json
// @Param request body rouletteRequest false "Client position and walking limit"
// @Success 200 {object} roulette.Response "Selection, or success=false with error_info when nothing matched"
// @Failure 400 {object} models.APIResponse "Invalid coordinates or body"
// @Failure 500 {object} roulette.Response "Unexpected failure"
// @Router /roulette [post]
func (h *Handler) Roulette(w http.ResponseWriter, r *http.Request) {
	var req rouletteRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, codeInvalidJSON, "Request body must be a JSON object", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	ctx := r.Context()
	resp, err := h.roulette.Recommend(ctx, roulette.Request{
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		IP:                clientIP(r),
		MaxWalkingMinutes: req.MaxWalkingTimeMin,
	})
	switch {
	case errors.Is(err, roulette.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	case err != nil:
		logging.CtxErr(ctx, err).Msg("Roulette request failed")
		msg := h.errs.Restaurant(ctx, err, false)
		respondJSON(w, http.StatusInternalServerError, &roulette.Response{
			ErrorInfo:  &msg,
			Message:    msg.Message,
			Suggestion: msg.Suggestion,
		})
		return
	}

	respondJSON(w, http.StatusOK, &resp)
}
