// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/config"
	"github.com/tomtom215/lunchroulette/internal/errhandler"
)

var baseTime = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// testConfig never trips the breaker and never waits on the limiter.
func testConfig() *config.UpstreamConfig {
	return &config.UpstreamConfig{
		HotpepperAPIKey:   "hp-key",
		OpenWeatherAPIKey: "ow-key",
		Timeout:           2 * time.Second,
		RatePerSecond:     1000,
		Burst:             100,
		RetryAttempts:     1,
		Breaker: config.BreakerConfig{
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Minute,
			MinRequests:  1000,
			FailureRatio: 1,
		},
	}
}

func testSearch() *config.SearchConfig {
	return &config.SearchConfig{DefaultLatitude: 35.6812, DefaultLongitude: 139.7671}
}

func newTestCache(t *testing.T) (*cache.Service, *testClock) {
	t.Helper()
	clock := &testClock{now: baseTime}
	svc := cache.NewService(cache.NewMemoryStore(), cache.WithClock(clock.Now), cache.WithTTL(10*time.Minute))
	return svc, clock
}

// noSleep keeps retries instant.
func noSleep() *errhandler.Handler {
	return errhandler.New(errhandler.WithSleep(func(context.Context, time.Duration) error { return nil }))
}

// fakeAPI serves a configurable status and body and records requests.
type fakeAPI struct {
	mu       sync.Mutex
	status   int
	body     string
	requests []*url.URL
	agents   []string
	srv      *httptest.Server
}

func newFakeAPI(t *testing.T, status int, body string) *fakeAPI {
	t.Helper()
	f := &fakeAPI{status: status, body: body}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.URL)
		f.agents = append(f.agents, r.UserAgent())
		status, body := f.status, f.body
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) URL() string { return f.srv.URL }

func (f *fakeAPI) Set(status int, body string) {
	f.mu.Lock()
	f.status, f.body = status, body
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) Last() *url.URL {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}
