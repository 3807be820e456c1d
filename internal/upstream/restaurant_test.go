// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package upstream

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tomtom215/lunchroulette/internal/errhandler"
	"github.com/tomtom215/lunchroulette/internal/models"
)

const shopsPayload = `{
	"results": {
		"api_version": "1.26",
		"results_available": 3,
		"results_returned": "3",
		"results_start": 1,
		"shop": [
			{
				"id": "J001234567",
				"name": "Soba Kanda",
				"name_kana": "そばかんだ",
				"address": "Tokyo Chiyoda Kanda 1-1",
				"lat": "35.6915",
				"lng": 139.7709,
				"genre": {"name": "和食", "catch": "Handmade soba"},
				"budget": {"code": "B010", "name": "501～1000円", "average": "900円"},
				"catch": "Fresh noodles daily",
				"access": "3 min from Kanda Station",
				"open": "11:00-15:00",
				"close": "Sunday",
				"photo": {"pc": {"l": "", "m": "https://img.example/m.jpg", "s": "https://img.example/s.jpg"}, "mobile": {"l": "https://img.example/ml.jpg", "s": ""}},
				"urls": {"pc": "https://www.hotpepper.jp/strJ001234567/"},
				"capacity": "",
				"non_smoking": "全面禁煙",
				"card": "利用可",
				"lunch": "あり"
			},
			{
				"id": "J007654321",
				"name": "Curry House",
				"lat": 35.6901,
				"lng": "139.7701",
				"budget": {"code": "", "name": "ランチ 1,200円～"},
				"capacity": 40
			},
			{
				"id": "",
				"name": "Broken Shop",
				"lat": 35.69,
				"lng": 139.77
			}
		]
	}
}`

func newRestaurantClient(t *testing.T, api *fakeAPI, apiKey string) (*RestaurantClient, *testClock) {
	t.Helper()
	svc, clock := newTestCache(t)
	cfg := testConfig()
	cfg.HotpepperURL = api.URL()
	cfg.HotpepperAPIKey = apiKey
	return NewRestaurantClient(cfg, 50, svc, noSleep()), clock
}

func TestRestaurantClient_NoKey(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, shopsPayload)
	rc, _ := newRestaurantClient(t, api, "")

	list, out, err := rc.Search(context.Background(), 35.69, 139.77, 1.0)
	if !errors.Is(err, errhandler.ErrRestaurantNotFound) {
		t.Fatalf("Search() err = %v, want ErrRestaurantNotFound", err)
	}
	if list != nil {
		t.Errorf("list = %v, want nil", list)
	}
	if out.Message == nil || out.Message.Type != errhandler.TypeRestaurantNotFound {
		t.Errorf("Message = %+v", out.Message)
	}
	if api.Calls() != 0 {
		t.Errorf("server calls = %d, want 0", api.Calls())
	}

	if _, _, err := rc.ByID(context.Background(), "J001234567"); !errors.Is(err, errhandler.ErrRestaurantNotFound) {
		t.Errorf("ByID() err = %v", err)
	}
}

func TestRestaurantClient_Search(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, shopsPayload)
	rc, _ := newRestaurantClient(t, api, "hp-key")

	list, out, err := rc.Search(context.Background(), 35.6905, 139.7705, 1.0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if out.Kind != KindFresh {
		t.Errorf("Kind = %s, want fresh", out.Kind)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2 (invalid shop skipped)", len(list))
	}

	soba := list[0]
	want := models.Restaurant{
		ID:            "J001234567",
		Name:          "Soba Kanda",
		NameKana:      "そばかんだ",
		Genre:         "和食",
		Lat:           35.6915,
		Lng:           139.7709,
		Address:       "Tokyo Chiyoda Kanda 1-1",
		BudgetAverage: 1000,
		BudgetName:    "501～1000円",
		Catch:         "Fresh noodles daily",
		Access:        "3 min from Kanda Station",
		Open:          "11:00-15:00",
		Close:         "Sunday",
		Photo:         "https://img.example/m.jpg",
		URLs:          models.RestaurantURLs{PC: "https://www.hotpepper.jp/strJ001234567/"},
		Capacity:      0,
		NonSmoking:    "全面禁煙",
		Card:          "利用可",
		Lunch:         "あり",
		Source:        SourceHotpepper,
	}
	if soba != want {
		t.Errorf("first shop =\n%+v\nwant\n%+v", soba, want)
	}

	curry := list[1]
	if curry.BudgetAverage != 1200 || curry.Capacity != 40 || curry.Lng != 139.7701 || curry.Photo != "" {
		t.Errorf("second shop = %+v", curry)
	}

	q := api.Last().Query()
	for k, v := range map[string]string{
		"key":    "hp-key",
		"lat":    "35.6905",
		"lng":    "139.7705",
		"range":  "3",
		"count":  "50",
		"format": "json",
	} {
		if got := q.Get(k); got != v {
			t.Errorf("query %s = %q, want %q", k, got, v)
		}
	}

	if _, out, _ := rc.Search(context.Background(), 35.6905, 139.7705, 1.0); out.Kind != KindCached {
		t.Errorf("second Kind = %s, want cached", out.Kind)
	}
	// A different radius is a different search.
	if _, out, _ := rc.Search(context.Background(), 35.6905, 139.7705, 0.5); out.Kind != KindFresh {
		t.Errorf("other radius Kind = %s, want fresh", out.Kind)
	}
	if api.Calls() != 2 {
		t.Errorf("server calls = %d, want 2", api.Calls())
	}
}

func TestRestaurantClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantType errhandler.ErrorType
	}{
		{"auth result error", http.StatusOK, `{"results":{"error":[{"code":2000,"message":"invalid key"}]}}`, errhandler.TypeAuth},
		{"server result error", http.StatusOK, `{"results":{"error":[{"code":1000,"message":"maintenance"}]}}`, errhandler.TypeNetwork},
		{"parameter result error", http.StatusOK, `{"results":{"error":[{"code":3000,"message":"bad range"}]}}`, errhandler.TypeNetwork},
		{"missing results", http.StatusOK, `{}`, errhandler.TypeParsing},
		{"bad latitude", http.StatusOK, `{"results":{"shop":[{"id":"x","name":"y","lat":"north","lng":1}]}}`, errhandler.TypeParsing},
		{"rate limited", http.StatusTooManyRequests, ``, errhandler.TypeRateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newFakeAPI(t, tt.status, tt.body)
			rc, _ := newRestaurantClient(t, api, "hp-key")

			list, out, err := rc.Search(context.Background(), 35.69, 139.77, 1.0)
			if !errors.Is(err, errhandler.ErrRestaurantNotFound) {
				t.Errorf("err = %v, want wrapping ErrRestaurantNotFound", err)
			}
			if got := errhandler.Classify(err); got != tt.wantType {
				t.Errorf("Classify(err) = %s, want %s", got, tt.wantType)
			}
			if list != nil {
				t.Errorf("list = %v, want nil", list)
			}
			if out.Message == nil || out.Message.Type != tt.wantType || out.Message.FallbackUsed {
				t.Errorf("Message = %+v", out.Message)
			}
		})
	}
}

func TestRestaurantClient_StaleFallback(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, shopsPayload)
	rc, clock := newRestaurantClient(t, api, "hp-key")
	ctx := context.Background()

	if _, _, err := rc.Search(ctx, 35.69, 139.77, 1.0); err != nil {
		t.Fatalf("priming Search() error = %v", err)
	}
	clock.Advance(11 * time.Minute)
	api.Set(http.StatusTooManyRequests, `{}`)

	list, out, err := rc.Search(ctx, 35.69, 139.77, 1.0)
	if err != nil {
		t.Fatalf("Search() error = %v, want stale data", err)
	}
	if out.Kind != KindStale || len(list) != 2 {
		t.Fatalf("Kind = %s len = %d", out.Kind, len(list))
	}
	for _, r := range list {
		if r.Source != models.SourceFallback {
			t.Errorf("Source = %q, want %q", r.Source, models.SourceFallback)
		}
	}
	if out.Message == nil || out.Message.Message != "Showing earlier search results because of API limits." {
		t.Errorf("Message = %+v", out.Message)
	}
}

func TestRestaurantClient_ByID(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, shopsPayload)
	rc, _ := newRestaurantClient(t, api, "hp-key")

	r, ok, err := rc.ByID(context.Background(), "J001234567")
	if err != nil || !ok {
		t.Fatalf("ByID() = %v, %v", ok, err)
	}
	if r.ID != "J001234567" {
		t.Errorf("ID = %q", r.ID)
	}
	if got := api.Last().Query().Get("id"); got != "J001234567" {
		t.Errorf("query id = %q", got)
	}

	api.Set(http.StatusOK, `{"results":{"results_available":0,"shop":[]}}`)
	if _, ok, err := rc.ByID(context.Background(), "missing"); err != nil || ok {
		t.Errorf("ByID(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestParseBudget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
		text string
		want int
	}{
		{"lunch code", "B009", "", 500},
		{"code wins over name", "B010", "3000円", 1000},
		{"top code", "B014", "", 30001},
		{"name with comma", "", "ランチ 1,200円～", 1200},
		{"name range", "", "801～1500円", 801},
		{"unknown code falls back to name", "B999", "2500円", 2500},
		{"no number", "", "お手頃", DefaultBudgetYen},
		{"empty", "", "", DefaultBudgetYen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseBudget(tt.code, tt.text); got != tt.want {
				t.Errorf("ParseBudget(%q, %q) = %d, want %d", tt.code, tt.text, got, tt.want)
			}
		})
	}
}

func TestRangeCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		km   float64
		want int
	}{
		{0.1, 1}, {0.3, 1}, {0.31, 2}, {0.5, 2}, {0.8, 3}, {1.0, 3},
		{1.5, 4}, {2.0, 4}, {2.5, 5}, {3.0, 5},
	}
	for _, tt := range tests {
		if got := RangeCode(tt.km); got != tt.want {
			t.Errorf("RangeCode(%v) = %d, want %d", tt.km, got, tt.want)
		}
	}
}

func TestWalkingRangeCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		minutes int
		want    int
	}{
		{0, 2}, {5, 2}, {6, 3}, {10, 3}, {15, 4}, {20, 4}, {21, 5}, {60, 5},
	}
	for _, tt := range tests {
		if got := WalkingRangeCode(tt.minutes); got != tt.want {
			t.Errorf("WalkingRangeCode(%d) = %d, want %d", tt.minutes, got, tt.want)
		}
	}
}

func TestRangeRadiusKm(t *testing.T) {
	t.Parallel()

	for code := 1; code <= 5; code++ {
		if got := RangeCode(RangeRadiusKm(code)); got != code {
			t.Errorf("RangeCode(RangeRadiusKm(%d)) = %d", code, got)
		}
	}
	if got := RangeRadiusKm(9); got != 1 {
		t.Errorf("RangeRadiusKm(9) = %v, want 1", got)
	}
}

func TestFilterByBudget(t *testing.T) {
	t.Parallel()

	list := []models.Restaurant{
		{ID: "a", BudgetAverage: 800},
		{ID: "b", BudgetAverage: 1200},
		{ID: "c", BudgetAverage: 1500},
		{ID: "d", BudgetAverage: 0},
	}

	got := FilterByBudget(list, 1200)
	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "d" {
		t.Errorf("FilterByBudget() ids = %v, want [a b d]", ids)
	}
	if len(list) != 4 {
		t.Error("input slice was modified")
	}
	if got := FilterByBudget(nil, 1000); len(got) != 0 {
		t.Errorf("FilterByBudget(nil) = %v", got)
	}
}
