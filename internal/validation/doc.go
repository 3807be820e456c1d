// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps a thread-safe singleton validator with the application's
// custom rules and translates failures into the VALIDATION_ERROR API format.
//
// # Custom Rules
//
//   - notblank: string must contain a non-whitespace character
//   - models.Coordinates: latitude and longitude are given together or not at all
//
// Field names in errors are the JSON names, so clients see "latitude" rather
// than the Go field name.
//
// # Usage
//
//	var req rouletteRequest
//	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
//	    // handle decode error
//	}
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// Upstream restaurant parsing uses ValidRestaurant to drop records that lack
// an id, a name or usable coordinates.
//
// # Thread Safety
//
// GetValidator initializes the validator once; the instance caches struct
// metadata and is safe for concurrent use.
package validation
