// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package selector

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tomtom215/lunchroulette/internal/distance"
	"github.com/tomtom215/lunchroulette/internal/models"
)

func TestFormatBudget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		yen  int
		want string
	}{
		{-100, "unknown"},
		{0, "unknown"},
		{300, "~¥500"},
		{500, "~¥500"},
		{501, "¥500~¥1,000"},
		{1000, "¥500~¥1,000"},
		{1200, "¥1,000~¥1,500"},
		{2000, "¥1,500~¥2,000"},
		{2500, "¥2,500~"},
		{12000, "¥12,000~"},
	}

	for _, tt := range tests {
		if got := FormatBudget(tt.yen); got != tt.want {
			t.Errorf("FormatBudget(%d) = %q, want %q", tt.yen, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 120)
	got := truncate(long, maxAccessRunes)
	if utf8.RuneCountInString(got) != 100 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncate(120 chars) = %q", got)
	}
	if got[:97] != long[:97] {
		t.Error("truncate did not keep the first 97 characters")
	}

	// Multibyte text is cut on rune boundaries.
	hours := strings.Repeat("月", 60)
	got = truncate(hours, maxHoursRunes)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if want := strings.Repeat("月", 47) + "..."; got != want {
		t.Errorf("truncate(60 runes) = %q, want %q", got, want)
	}

	if got := truncate("  short  ", maxHoursRunes); got != "short" {
		t.Errorf("truncate(short) = %q, want trimmed", got)
	}
	if exact := strings.Repeat("b", 50); truncate(exact, maxHoursRunes) != exact {
		t.Error("text at the limit must not be truncated")
	}
}

func TestMapURL(t *testing.T) {
	t.Parallel()

	got := MapURL("Ramen & Co", 35.68, 139.76)
	if !strings.HasPrefix(got, "https://www.google.com/maps/search/?") {
		t.Fatalf("MapURL() = %q", got)
	}
	for _, part := range []string{"api=1", "query=35.68%2C139.76", "query_place_id=Ramen+%26+Co"} {
		if !strings.Contains(got, part) {
			t.Errorf("MapURL() = %q, missing %q", got, part)
		}
	}

	if got := MapURL("Nowhere", 0, 139.76); got != "" {
		t.Errorf("MapURL() with unset latitude = %q, want empty", got)
	}
}

func TestBuildDisplay(t *testing.T) {
	t.Parallel()

	r := models.Restaurant{
		ID:            "J1",
		Name:          "Soba Taro",
		Genre:         "Japanese",
		Lat:           35.68,
		Lng:           139.76,
		BudgetAverage: 900,
		Access:        "  3 min from Tokyo Station  ",
		Open:          "11:00-15:00",
		Photo:         "https://img.example.com/l.jpg",
		URLs:          models.RestaurantURLs{PC: "https://www.hotpepper.jp/strJ1/"},
	}
	d := distance.Result{DistanceDisplay: "450m", TimeDisplay: "approx. 7 minutes walking"}

	got := BuildDisplay(&r, d)

	if got.Summary != "Japanese: Soba Taro (450m, approx. 7 minutes walking)" {
		t.Errorf("Summary = %q", got.Summary)
	}
	if got.AccessDisplay != "3 min from Tokyo Station" {
		t.Errorf("AccessDisplay = %q", got.AccessDisplay)
	}
	if got.HoursDisplay != "11:00-15:00" {
		t.Errorf("HoursDisplay = %q", got.HoursDisplay)
	}
	if got.GenreDisplay != "Japanese" || got.BudgetDisplay != "¥500~¥1,000" {
		t.Errorf("genre/budget = %q/%q", got.GenreDisplay, got.BudgetDisplay)
	}
	if got.HotpepperURL != r.URLs.PC || got.PhotoURL != r.Photo {
		t.Errorf("links = %q / %q", got.HotpepperURL, got.PhotoURL)
	}
	if got.DistanceDisplay != "450m" || got.TimeDisplay != d.TimeDisplay {
		t.Errorf("distance display = %q / %q", got.DistanceDisplay, got.TimeDisplay)
	}

	r.Genre = " "
	if got := BuildDisplay(&r, d); got.Summary != "Soba Taro (450m, approx. 7 minutes walking)" {
		t.Errorf("Summary without genre = %q", got.Summary)
	}
}
