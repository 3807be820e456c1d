// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lunchroulette/internal/cache"
)

// fixture is a memory store seeded with one fresh and one expired entry.
type fixture struct {
	store  *cache.MemoryStore
	opened []cache.StoreConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := cache.NewMemoryStore()

	fresh := cache.NewService(store)
	if ok, err := fresh.Set(ctx, "weather_fresh", map[string]any{"temp": 21.5}, time.Hour); !ok || err != nil {
		t.Fatalf("seed fresh: %v %v", ok, err)
	}

	past := time.Now().Add(-time.Hour)
	stale := cache.NewService(store, cache.WithClock(func() time.Time { return past }))
	if ok, err := stale.Set(ctx, "weather_stale", map[string]any{"temp": 3.0}, time.Minute); !ok || err != nil {
		t.Fatalf("seed stale: %v %v", ok, err)
	}

	return &fixture{store: store}
}

func (f *fixture) open(_ context.Context, cfg cache.StoreConfig) (cache.Store, error) {
	f.opened = append(f.opened, cfg)
	return f.store, nil
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")

	var out bytes.Buffer
	cmd := newRootCmd(f.open)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStatsCmd(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "stats", "--backend", "memory")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"Backend:  memory", "2 (1 valid, 1 expired)", "TTL:      10m0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
	if len(f.opened) != 1 || f.opened[0].Backend != "memory" {
		t.Errorf("opened = %+v, want one memory store", f.opened)
	}
}

func TestStatsCmd_JSON(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "stats", "--json")
	if err != nil {
		t.Fatalf("stats --json: %v", err)
	}
	var got struct {
		Total      int    `json:"total_entries"`
		Valid      int    `json:"valid_entries"`
		Expired    int    `json:"expired_entries"`
		Backend    string `json:"backend"`
		TTLSeconds int64  `json:"ttl_seconds"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Total != 2 || got.Valid != 1 || got.Expired != 1 {
		t.Errorf("counts = %+v", got)
	}
	if got.Backend != "memory" || got.TTLSeconds != 600 {
		t.Errorf("backend/ttl = %q/%d", got.Backend, got.TTLSeconds)
	}
}

func TestSweepCmd(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "sweep")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if !strings.Contains(out, "Removed 1 expired entry") {
		t.Errorf("sweep output = %q", out)
	}

	stats, _ := f.store.Stats(context.Background(), time.Now())
	if stats.Total != 1 {
		t.Errorf("entries after sweep = %d, want 1", stats.Total)
	}
}

func TestClearCmd(t *testing.T) {
	t.Run("requires confirmation", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.run(t, "clear"); !errors.Is(err, errNotConfirmed) {
			t.Fatalf("clear without --yes = %v, want errNotConfirmed", err)
		}
		stats, _ := f.store.Stats(context.Background(), time.Now())
		if stats.Total != 2 {
			t.Errorf("entries = %d, want 2 untouched", stats.Total)
		}
	})

	t.Run("clears with --yes", func(t *testing.T) {
		f := newFixture(t)
		out, err := f.run(t, "clear", "--yes")
		if err != nil {
			t.Fatalf("clear --yes: %v", err)
		}
		if !strings.Contains(out, "Cache cleared") {
			t.Errorf("output = %q", out)
		}
		stats, _ := f.store.Stats(context.Background(), time.Now())
		if stats.Total != 0 {
			t.Errorf("entries = %d, want 0", stats.Total)
		}
	})
}

func TestInfoCmd(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "fresh", key: "weather_fresh", want: "State:    valid"},
		{name: "expired", key: "weather_stale", want: "TTL left: 0s"},
		{name: "missing", key: "weather_nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			out, err := f.run(t, "info", tt.key)
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "not found") {
					t.Fatalf("info %s = %v, want not found", tt.key, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("info %s: %v", tt.key, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("info output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestInfoCmd_RequiresKey(t *testing.T) {
	f := newFixture(t)
	if _, err := f.run(t, "info"); err == nil {
		t.Fatal("info without a key should fail")
	}
}

func TestKeyCmd(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "key", "weather", "lat=35.6812", "lon=139.7671")
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	want := cache.GenerateKey("weather", map[string]any{"lat": 35.6812, "lon": 139.7671})
	if strings.TrimSpace(out) != want {
		t.Errorf("key = %q, want %q", strings.TrimSpace(out), want)
	}
	if len(f.opened) != 0 {
		t.Error("key should not open the store")
	}

	if _, err := f.run(t, "key", "weather", "lat"); err == nil {
		t.Error("a parameter without '=' should fail")
	}
}

func TestParseValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want any
	}{
		{"35.6812", 35.6812},
		{"1", 1.0},
		{"true", true},
		{"auto", "auto"},
		{"203.0.113.5", "203.0.113.5"},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"TRUE", "TRUE"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
