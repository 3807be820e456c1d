// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

// Package selector picks restaurants at random from a candidate list and
// enriches them with walking distance and display strings.
//
//	sel := selector.New()
//	pick, ok := sel.SelectOne(candidates, loc.Latitude, loc.Longitude)
//	if !ok {
//	    // no valid candidates
//	}
//	fmt.Println(pick.DisplayInfo.Summary)
package selector

import (
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/tomtom215/lunchroulette/internal/distance"
	"github.com/tomtom215/lunchroulette/internal/logging"
	"github.com/tomtom215/lunchroulette/internal/models"
)

// Selection is a chosen restaurant with its walking estimate and display block.
// The restaurant fields are flattened into the JSON object.
type Selection struct {
	models.Restaurant
	DistanceInfo distance.Result `json:"distance_info"`
	DisplayInfo  Display         `json:"display_info"`
}

// Selector picks candidates. It is safe for concurrent use.
type Selector struct {
	calc *distance.Calculator

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Selector.
type Option func(*Selector)

// WithSeed makes the selection sequence deterministic.
func WithSeed(seed uint64) Option {
	return func(s *Selector) {
		s.rng = newRand(seed)
	}
}

// WithCalculator replaces the default distance calculator.
func WithCalculator(calc *distance.Calculator) Option {
	return func(s *Selector) {
		if calc != nil {
			s.calc = calc
		}
	}
}

// New creates a Selector seeded from the runtime's random source.
func New(opts ...Option) *Selector {
	s := &Selector{
		calc: distance.New(),
		rng:  newRand(rand.Uint64()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SetSeed reseeds the random source.
func (s *Selector) SetSeed(seed uint64) {
	s.mu.Lock()
	s.rng = newRand(seed)
	s.mu.Unlock()
}

// SelectOne picks one valid candidate uniformly at random.
// It reports false when candidates is empty or contains no valid entry.
func (s *Selector) SelectOne(candidates []models.Restaurant, lat, lon float64) (Selection, bool) {
	if len(candidates) == 0 {
		logging.Debug().Msg("No candidates to select from")
		return Selection{}, false
	}

	valid := filterValid(candidates)
	if len(valid) == 0 {
		logging.Debug().Int("candidates", len(candidates)).Msg("No valid candidates to select from")
		return Selection{}, false
	}

	s.mu.Lock()
	idx := s.rng.IntN(len(valid))
	s.mu.Unlock()

	picked := s.enrich(valid[idx], lat, lon)
	logging.Debug().Str("restaurant_id", picked.ID).Str("name", picked.Name).Msg("Restaurant selected")
	return picked, true
}

// SelectMany picks min(count, valid) distinct candidates, sorted by walking distance.
// It returns an empty slice when there is nothing to select.
func (s *Selector) SelectMany(candidates []models.Restaurant, lat, lon float64, count int) []Selection {
	valid := filterValid(candidates)
	if len(valid) == 0 || count <= 0 {
		return []Selection{}
	}
	if count > len(valid) {
		count = len(valid)
	}

	s.mu.Lock()
	order := s.rng.Perm(len(valid))[:count]
	s.mu.Unlock()

	picks := make([]Selection, 0, count)
	for _, i := range order {
		picks = append(picks, s.enrich(valid[i], lat, lon))
	}
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].DistanceInfo.WalkingDistanceKm < picks[j].DistanceInfo.WalkingDistanceKm
	})
	return picks
}

// enrich attaches distance and display data. A failed distance computation
// yields the calculator's fallback estimate, never a dropped candidate.
func (s *Selector) enrich(r models.Restaurant, lat, lon float64) Selection {
	sel := Selection{
		Restaurant:   r,
		DistanceInfo: s.calc.WalkingDistance(lat, lon, r.Lat, r.Lng),
	}
	if sel.DistanceInfo.Fallback {
		logging.Warn().Err(sel.DistanceInfo.Err).Str("restaurant_id", r.ID).
			Msg("Distance unavailable, using fallback estimate")
	}
	sel.DisplayInfo = BuildDisplay(&sel.Restaurant, sel.DistanceInfo)
	return sel
}

func filterValid(candidates []models.Restaurant) []models.Restaurant {
	valid := make([]models.Restaurant, 0, len(candidates))
	for i := range candidates {
		if candidates[i].IsValid() {
			valid = append(valid, candidates[i])
		}
	}
	return valid
}
