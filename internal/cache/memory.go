// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a map-backed Store. Rows do not survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]Row
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Row)}
}

// Name implements Store.
func (m *MemoryStore) Name() string { return BackendMemory }

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, row Row) error {
	value := make([]byte, len(row.Value))
	copy(value, row.Value)
	row.Value = value

	m.mu.Lock()
	m.rows[row.Key] = row
	m.mu.Unlock()
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (Row, bool, error) {
	m.mu.RLock()
	row, ok := m.rows[key]
	m.mu.RUnlock()
	return row, ok, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[key]; !ok {
		return false, nil
	}
	delete(m.rows, key)
	return true, nil
}

// DeleteExpired implements Store.
func (m *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, row := range m.rows {
		if row.ExpiresAt.Before(now) {
			delete(m.rows, key)
			removed++
		}
	}
	return removed, nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.rows)
	m.rows = make(map[string]Row)
	return n, nil
}

// Stats implements Store.
func (m *MemoryStore) Stats(_ context.Context, now time.Time) (StoreStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats StoreStats
	for _, row := range m.rows {
		stats.Total++
		if row.ValidAt(now) {
			stats.Valid++
		}
		stats.SizeBytes += int64(len(row.Value))
	}
	stats.Expired = stats.Total - stats.Valid
	return stats, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
