// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package models

// Weather is the current weather at the user's location.
type Weather struct {
	Temperature   float64 `json:"temperature"`
	FeelsLike     float64 `json:"feels_like"`
	Condition     string  `json:"condition"`
	Description   string  `json:"description"`
	UVIndex       float64 `json:"uv_index"`
	Humidity      int     `json:"humidity"`
	Pressure      int     `json:"pressure"`
	Visibility    int     `json:"visibility"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection int     `json:"wind_direction"`
	Clouds        int     `json:"clouds"`
	Icon          string  `json:"icon"`
	Sunrise       string  `json:"sunrise,omitempty"`
	Sunset        string  `json:"sunset,omitempty"`
	Timestamp     string  `json:"timestamp,omitempty"`
	Source        string  `json:"source"`
	IsStale       bool    `json:"is_stale,omitempty"`
}
