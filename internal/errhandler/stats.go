// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package errhandler

import (
	"sync"

	"github.com/tomtom215/lunchroulette/internal/metrics"
)

// Stats counts handled errors by type. The zero value is ready to use.
type Stats struct {
	mu     sync.Mutex
	counts map[ErrorType]int
}

// Record counts one error of type t and mirrors it to lunch_errors_total.
func (s *Stats) Record(t ErrorType) {
	s.mu.Lock()
	if s.counts == nil {
		s.counts = make(map[ErrorType]int)
	}
	s.counts[t]++
	s.mu.Unlock()

	metrics.RecordError(string(t))
}

// Snapshot returns a copy of the counters keyed by type name.
func (s *Stats) Snapshot() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int, len(s.counts))
	for t, n := range s.counts {
		out[string(t)] = n
	}
	return out
}

// Count returns the counter for t.
func (s *Stats) Count(t ErrorType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[t]
}

// Reset zeroes all counters. The prometheus counter is not reset.
func (s *Stats) Reset() {
	s.mu.Lock()
	s.counts = nil
	s.mu.Unlock()
}
