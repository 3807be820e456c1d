// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package selector

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tomtom215/lunchroulette/internal/distance"
	"github.com/tomtom215/lunchroulette/internal/models"
)

const (
	maxAccessRunes = 100
	maxHoursRunes  = 50

	defaultGenre  = "Restaurant"
	unknownBudget = "unknown"

	mapsSearchURL = "https://www.google.com/maps/search/"
)

// Display holds the preformatted strings a client renders for a selection.
type Display struct {
	BudgetDisplay   string `json:"budget_display"`
	GenreDisplay    string `json:"genre_display"`
	AccessDisplay   string `json:"access_display"`
	HoursDisplay    string `json:"hours_display"`
	DistanceDisplay string `json:"distance_display"`
	TimeDisplay     string `json:"time_display"`
	PhotoURL        string `json:"photo_url"`
	MapURL          string `json:"map_url"`
	HotpepperURL    string `json:"hotpepper_url"`
	Summary         string `json:"summary"`
}

// BuildDisplay formats a restaurant and its distance estimate for display.
func BuildDisplay(r *models.Restaurant, d distance.Result) Display {
	genre := strings.TrimSpace(r.Genre)
	if genre == "" {
		genre = defaultGenre
	}

	return Display{
		BudgetDisplay:   FormatBudget(r.BudgetAverage),
		GenreDisplay:    genre,
		AccessDisplay:   truncate(r.Access, maxAccessRunes),
		HoursDisplay:    truncate(r.Open, maxHoursRunes),
		DistanceDisplay: d.DistanceDisplay,
		TimeDisplay:     d.TimeDisplay,
		PhotoURL:        r.Photo,
		MapURL:          MapURL(r.Name, r.Lat, r.Lng),
		HotpepperURL:    r.URLs.PC,
		Summary:         summary(r, d),
	}
}

// FormatBudget renders an average budget in yen as its bracket label, or as
// "¥N,NNN~" above the top bracket. Non-positive values are unknown.
func FormatBudget(yen int) string {
	switch {
	case yen <= 0:
		return unknownBudget
	case yen <= 2000:
		return BudgetBracket(yen)
	default:
		return "¥" + humanize.Comma(int64(yen)) + "~"
	}
}

// MapURL returns a Google Maps search link, or "" when the coordinates are unset.
func MapURL(name string, lat, lng float64) string {
	if lat == 0 || lng == 0 {
		return ""
	}
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", fmt.Sprintf("%g,%g", lat, lng))
	if name != "" {
		q.Set("query_place_id", name)
	}
	return mapsSearchURL + "?" + q.Encode()
}

func summary(r *models.Restaurant, d distance.Result) string {
	name := strings.TrimSpace(r.Name)
	var b strings.Builder
	if genre := strings.TrimSpace(r.Genre); genre != "" {
		b.WriteString(genre)
		b.WriteString(": ")
	}
	b.WriteString(name)
	if d.DistanceDisplay != "" {
		fmt.Fprintf(&b, " (%s, %s)", d.DistanceDisplay, d.TimeDisplay)
	}
	return b.String()
}

// truncate trims s and cuts it to limit runes, ending with "..." when shortened.
func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
