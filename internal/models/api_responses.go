// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package models

import (
	"time"
)

// APIResponse is the envelope for the maintenance and health endpoints.
//
// Status field values:
//   - "success": see Data
//   - "error": see Error
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "latitude and longitude must be provided together",
//	    "details": {"field": "longitude"}
//	  },
//	  "metadata": {"timestamp": "2026-10-19T12:00:00Z"}
//	}
//
// The roulette endpoint keeps its own flat shape (roulette.Response) because
// existing clients read "success", "restaurant" and "error_info" at the top level.
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a structured error body.
//
// Common error codes:
//   - VALIDATION_ERROR: invalid input parameters
//   - CACHE_ERROR: the cache store failed
//   - NOT_FOUND: unknown cache key
//   - RATE_LIMIT_EXCEEDED: too many requests
//   - INTERNAL_ERROR: unexpected failure
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
