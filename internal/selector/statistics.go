// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package selector

import (
	"strings"

	"github.com/tomtom215/lunchroulette/internal/models"
)

// Budget bracket labels. Each bracket includes its upper bound.
const (
	BudgetUnder500  = "~¥500"
	BudgetUnder1000 = "¥500~¥1,000"
	BudgetUnder1500 = "¥1,000~¥1,500"
	BudgetUnder2000 = "¥1,500~¥2,000"
	BudgetOver2000  = "¥2,000~"

	unknownGenre = "Unknown"
)

// Statistics summarizes a candidate list.
type Statistics struct {
	TotalCount   int            `json:"total_count"`
	ValidCount   int            `json:"valid_count"`
	InvalidCount int            `json:"invalid_count"`
	Genres       map[string]int `json:"genres"`
	BudgetRanges map[string]int `json:"budget_ranges"`
}

// Statistics counts candidates by validity, genre and budget bracket.
// Genre and budget counts include only valid candidates.
func (s *Selector) Statistics(candidates []models.Restaurant) Statistics {
	return ComputeStatistics(candidates)
}

// ComputeStatistics is Statistics without a Selector.
func ComputeStatistics(candidates []models.Restaurant) Statistics {
	stats := Statistics{
		TotalCount:   len(candidates),
		Genres:       make(map[string]int),
		BudgetRanges: make(map[string]int),
	}

	for i := range candidates {
		r := &candidates[i]
		if !r.IsValid() {
			stats.InvalidCount++
			continue
		}
		stats.ValidCount++

		genre := strings.TrimSpace(r.Genre)
		if genre == "" {
			genre = unknownGenre
		}
		stats.Genres[genre]++
		stats.BudgetRanges[BudgetBracket(r.BudgetAverage)]++
	}
	return stats
}

// BudgetBracket maps an average budget in yen to its bracket label.
// An unknown budget (<= 0) falls into the cheapest bracket.
func BudgetBracket(yen int) string {
	switch {
	case yen <= 500:
		return BudgetUnder500
	case yen <= 1000:
		return BudgetUnder1000
	case yen <= 1500:
		return BudgetUnder1500
	case yen <= 2000:
		return BudgetUnder2000
	default:
		return BudgetOver2000
	}
}
