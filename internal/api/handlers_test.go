// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package api

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/errhandler"
	"github.com/tomtom215/lunchroulette/internal/models"
	"github.com/tomtom215/lunchroulette/internal/roulette"
	"github.com/tomtom215/lunchroulette/internal/selector"
)

var baseTime = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeRecommender returns a canned response and records the request.
type fakeRecommender struct {
	mu    sync.Mutex
	calls int
	last  roulette.Request
	resp  roulette.Response
	err   error
}

func (f *fakeRecommender) Recommend(_ context.Context, req roulette.Request) (roulette.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	return f.resp, f.err
}

func (f *fakeRecommender) lastRequest() (roulette.Request, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, f.calls
}

func successResponse() roulette.Response {
	return roulette.Response{
		Success: true,
		Restaurant: &selector.Selection{
			Restaurant: models.Restaurant{ID: "J001", Name: "Soba Kanda"},
		},
		Location: models.Location{Latitude: 35.6812, Longitude: 139.7671, Source: models.SourceClient},
		SearchInfo: roulette.SearchInfo{
			RadiusKm:     1,
			MaxBudget:    1200,
			TotalFound:   3,
			WithinBudget: 2,
		},
	}
}

// errStore fails every operation.
type errStore struct{}

var errStoreDown = errors.New("store down")

func (errStore) Put(context.Context, cache.Row) error { return errStoreDown }
func (errStore) Get(context.Context, string) (cache.Row, bool, error) {
	return cache.Row{}, false, errStoreDown
}
func (errStore) Delete(context.Context, string) (bool, error)           { return false, errStoreDown }
func (errStore) DeleteExpired(context.Context, time.Time) (int, error) { return 0, errStoreDown }
func (errStore) Clear(context.Context) (int, error)                     { return 0, errStoreDown }
func (errStore) Stats(context.Context, time.Time) (cache.StoreStats, error) {
	return cache.StoreStats{}, errStoreDown
}
func (errStore) Name() string { return "broken" }
func (errStore) Close() error { return nil }

type testEnv struct {
	handler *Handler
	rec     *fakeRecommender
	cache   *cache.Service
	clock   *fakeClock
	errs    *errhandler.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := &fakeClock{now: baseTime}
	svc := cache.NewService(cache.NewMemoryStore(), cache.WithClock(clock.Now), cache.WithTTL(10*time.Minute))
	rec := &fakeRecommender{resp: successResponse()}
	errs := errhandler.New()

	return &testEnv{
		handler: NewHandler(rec, svc, errs, nil),
		rec:     rec,
		cache:   svc,
		clock:   clock,
		errs:    errs,
	}
}

// envelope is models.APIResponse with Data left raw.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}
