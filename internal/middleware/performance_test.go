// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func TestPerformanceMonitor_Eviction(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(3, 0)
	for i := 1; i <= 5; i++ {
		pm.RecordRequest(&RequestMetrics{Route: "/r", Method: "GET", DurationMS: int64(i)})
	}

	recent := pm.GetRecentMetrics(10)
	if len(recent) != 3 {
		t.Fatalf("retained %d samples, want 3", len(recent))
	}
	for i, want := range []int64{3, 4, 5} {
		if recent[i].DurationMS != want {
			t.Errorf("recent[%d] = %d, want %d", i, recent[i].DurationMS, want)
		}
	}
	if got := pm.GetRecentMetrics(0); len(got) != 0 {
		t.Errorf("GetRecentMetrics(0) = %v", got)
	}
}

func TestPerformanceMonitor_GetStats(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(100, 0)
	for i := int64(1); i <= 10; i++ {
		pm.RecordRequest(&RequestMetrics{Route: "/api/v1/roulette", Method: "POST", DurationMS: i * 10, StatusCode: 200})
	}
	pm.RecordRequest(&RequestMetrics{Route: "/api/v1/health/live", Method: "GET", DurationMS: 1, StatusCode: 200})
	pm.RecordRequest(&RequestMetrics{Route: "/api/v1/health/live", Method: "GET", DurationMS: 3, StatusCode: 503})

	stats := pm.GetStats()
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}

	roulette := stats[0]
	if roulette.Endpoint != "POST /api/v1/roulette" || roulette.RequestCount != 10 {
		t.Errorf("stats[0] = %+v", roulette)
	}
	if roulette.MinDuration != 10 || roulette.MaxDuration != 100 || roulette.AvgDuration != 55 {
		t.Errorf("min/max/avg = %d/%d/%v", roulette.MinDuration, roulette.MaxDuration, roulette.AvgDuration)
	}
	if roulette.P50Duration != 50 || roulette.P95Duration != 90 || roulette.P99Duration != 90 {
		t.Errorf("p50/p95/p99 = %d/%d/%d", roulette.P50Duration, roulette.P95Duration, roulette.P99Duration)
	}

	health := stats[1]
	if health.ErrorCount != 1 || health.RequestCount != 2 {
		t.Errorf("stats[1] = %+v", health)
	}
}

func TestPerformanceMonitor_Middleware(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(10, time.Nanosecond)
	r := chi.NewRouter()
	r.Use(pm.Middleware)
	r.Get("/api/v1/cache/info", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/cache/info?key=abc", nil))

	recent := pm.GetRecentMetrics(1)
	if len(recent) != 1 {
		t.Fatal("request not recorded")
	}
	if recent[0].Route != "/api/v1/cache/info" || recent[0].StatusCode != http.StatusNotFound || recent[0].Method != http.MethodGet {
		t.Errorf("sample = %+v", recent[0])
	}
}

func TestPerformanceMonitor_Concurrent(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(50, 0)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				pm.RecordRequest(&RequestMetrics{Route: fmt.Sprintf("/r%d", g%2), Method: "GET", DurationMS: int64(i)})
				_ = pm.GetStats()
			}
		}(g)
	}
	wg.Wait()

	if got := len(pm.GetRecentMetrics(100)); got != 50 {
		t.Errorf("retained %d samples, want 50", got)
	}
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile(nil) = %d", got)
	}
	if got := percentile([]int64{7}, 0.99); got != 7 {
		t.Errorf("percentile([7]) = %d", got)
	}
}
