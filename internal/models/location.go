// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package models

// Location source labels.
const (
	SourceClient   = "client"
	SourceIPAPI    = "ipapi"
	SourceDefault  = "default"
	SourceFallback = "fallback_cache"
)

// Location is the resolved position of the user.
type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	City        string  `json:"city"`
	Region      string  `json:"region"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Postal      string  `json:"postal,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
	Source      string  `json:"source"`
	IsStale     bool    `json:"is_stale,omitempty"`
}

// Coordinates is an optional client-reported position. Both fields are set or
// neither is.
type Coordinates struct {
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// Present reports whether both coordinates are set.
func (c Coordinates) Present() bool {
	return c.Latitude != nil && c.Longitude != nil
}
