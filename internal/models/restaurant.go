// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package models

import (
	"math"
	"strings"
)

// RestaurantURLs holds the external links of a restaurant.
type RestaurantURLs struct {
	PC     string `json:"pc"`
	Mobile string `json:"mobile,omitempty"`
}

// Restaurant is a lunch candidate as returned by the restaurant search.
type Restaurant struct {
	ID            string         `json:"id" validate:"required"`
	Name          string         `json:"name" validate:"notblank"`
	NameKana      string         `json:"name_kana,omitempty"`
	Genre         string         `json:"genre"`
	Lat           float64        `json:"lat" validate:"latitude"`
	Lng           float64        `json:"lng" validate:"longitude"`
	Address       string         `json:"address"`
	BudgetAverage int            `json:"budget_average"`
	BudgetName    string         `json:"budget_name"`
	Catch         string         `json:"catch"`
	Access        string         `json:"access"`
	Open          string         `json:"open"`
	Close         string         `json:"close,omitempty"`
	Photo         string         `json:"photo"`
	URLs          RestaurantURLs `json:"urls"`
	Capacity      int            `json:"capacity"`
	NonSmoking    string         `json:"non_smoking"`
	Card          string         `json:"card"`
	Lunch         string         `json:"lunch,omitempty"`
	Source        string         `json:"source"`
}

// IsValid reports whether r can be selected: non-empty id, non-blank name and
// coordinates in range.
func (r *Restaurant) IsValid() bool {
	if r.ID == "" || strings.TrimSpace(r.Name) == "" {
		return false
	}
	if math.IsNaN(r.Lat) || r.Lat < -90 || r.Lat > 90 {
		return false
	}
	if math.IsNaN(r.Lng) || r.Lng < -180 || r.Lng > 180 {
		return false
	}
	return true
}
