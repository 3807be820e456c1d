// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package upstream

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/tomtom215/lunchroulette/internal/errhandler"
	"github.com/tomtom215/lunchroulette/internal/models"
)

const shibuyaPayload = `{
	"ip": "203.0.113.7",
	"city": "Shibuya",
	"region": "Tokyo",
	"country_name": "Japan",
	"country_code": "JP",
	"postal": "150-0002",
	"timezone": "Asia/Tokyo",
	"latitude": 35.6595,
	"longitude": 139.7005
}`

func newLocationClient(t *testing.T, api *fakeAPI) (*LocationClient, *testClock) {
	t.Helper()
	svc, clock := newTestCache(t)
	cfg := testConfig()
	cfg.IPAPIURL = api.URL()
	return NewLocationClient(cfg, testSearch(), svc, noSleep()), clock
}

func TestPublicIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"203.0.113.7", "203.0.113.7"},
		{" 8.8.8.8 ", "8.8.8.8"},
		{"2001:4860:4860::8888", "2001:4860:4860::8888"},
		{"::ffff:8.8.4.4", "8.8.4.4"},
		{"", ""},
		{"not-an-ip", ""},
		{"127.0.0.1", ""},
		{"::1", ""},
		{"10.1.2.3", ""},
		{"192.168.0.10", ""},
		{"172.16.5.4", ""},
		{"169.254.1.1", ""},
		{"0.0.0.0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := publicIP(tt.in); got != tt.want {
				t.Errorf("publicIP(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLocationClient_Lookup(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, shibuyaPayload)
	lc, _ := newLocationClient(t, api)
	ctx := context.Background()

	loc, out := lc.Lookup(ctx, "203.0.113.7")
	if out.Kind != KindFresh || out.Err != nil || out.Message != nil {
		t.Fatalf("Outcome = %+v, want fresh", out)
	}
	if got := api.Last().Path; got != "/203.0.113.7/json/" {
		t.Errorf("path = %q", got)
	}
	want := models.Location{
		Latitude: 35.6595, Longitude: 139.7005,
		City: "Shibuya", Region: "Tokyo", Country: "Japan", CountryCode: "JP",
		Postal: "150-0002", Timezone: "Asia/Tokyo", Source: models.SourceIPAPI,
	}
	if loc != want {
		t.Errorf("Lookup() = %+v, want %+v", loc, want)
	}

	// Second lookup is served from the cache.
	loc2, out2 := lc.Lookup(ctx, "203.0.113.7")
	if out2.Kind != KindCached {
		t.Errorf("second Kind = %s, want cached", out2.Kind)
	}
	if loc2 != want {
		t.Errorf("cached Lookup() = %+v", loc2)
	}
	if api.Calls() != 1 {
		t.Errorf("server calls = %d, want 1", api.Calls())
	}
}

func TestLocationClient_PrivateIPUsesAuto(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, shibuyaPayload)
	lc, _ := newLocationClient(t, api)

	for _, ip := range []string{"192.168.1.20", "127.0.0.1", ""} {
		lc.Lookup(context.Background(), ip)
	}
	if got := api.Last().Path; got != "/json/" {
		t.Errorf("path = %q, want /json/", got)
	}
	// All three share the "auto" cache entry.
	if api.Calls() != 1 {
		t.Errorf("server calls = %d, want 1", api.Calls())
	}
}

func TestLocationClient_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantType errhandler.ErrorType
		wantErr  error
	}{
		{"rate limited in payload", http.StatusOK, `{"error":true,"reason":"RateLimited"}`, errhandler.TypeRateLimit, nil},
		{"rate limited status", http.StatusTooManyRequests, `{"error":true,"reason":"RateLimited"}`, errhandler.TypeRateLimit, nil},
		{"reserved address", http.StatusOK, `{"error":true,"reason":"Reserved IP Address"}`, errhandler.TypeLocationNotFound, errhandler.ErrLocationNotFound},
		{"missing coordinates", http.StatusOK, `{"city":"Nowhere"}`, errhandler.TypeParsing, errhandler.ErrParse},
		{"coordinates out of range", http.StatusOK, `{"city":"Nowhere","latitude":95,"longitude":10}`, errhandler.TypeParsing, errhandler.ErrParse},
		{"server error", http.StatusInternalServerError, `oops`, errhandler.TypeNetwork, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newFakeAPI(t, tt.status, tt.body)
			lc, _ := newLocationClient(t, api)

			loc, out := lc.Lookup(context.Background(), "203.0.113.7")
			if !IsDefaultLocation(loc) {
				t.Errorf("Lookup() = %+v, want default location", loc)
			}
			if loc.Latitude != 35.6812 || loc.Longitude != 139.7671 {
				t.Errorf("default coordinates = %v,%v", loc.Latitude, loc.Longitude)
			}
			if out.Kind != KindDefault {
				t.Errorf("Kind = %s, want default", out.Kind)
			}
			if tt.wantErr != nil && !errors.Is(out.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", out.Err, tt.wantErr)
			}
			if out.Message == nil {
				t.Fatal("Message should be set")
			}
			if out.Message.Type != tt.wantType {
				t.Errorf("Message.Type = %s, want %s", out.Message.Type, tt.wantType)
			}
			if out.Message.FallbackUsed {
				t.Error("FallbackUsed should be false for the default location")
			}
			if out.Message.ServiceAffected != errhandler.ServiceLocation {
				t.Errorf("ServiceAffected = %q", out.Message.ServiceAffected)
			}
		})
	}
}

func TestLocationClient_StaleFallback(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, shibuyaPayload)
	lc, clock := newLocationClient(t, api)
	ctx := context.Background()

	if _, out := lc.Lookup(ctx, "203.0.113.7"); out.Kind != KindFresh {
		t.Fatalf("priming Kind = %s", out.Kind)
	}

	clock.Advance(11 * time.Minute)
	api.Set(http.StatusTooManyRequests, `{"error":true,"reason":"RateLimited"}`)

	loc, out := lc.Lookup(ctx, "203.0.113.7")
	if out.Kind != KindStale {
		t.Fatalf("Kind = %s, want stale", out.Kind)
	}
	if loc.City != "Shibuya" || loc.Source != models.SourceFallback || !loc.IsStale {
		t.Errorf("stale location = %+v", loc)
	}
	if out.Stale == nil || !out.Stale.Expired {
		t.Errorf("Stale = %+v, want expired entry", out.Stale)
	}
	if out.Message == nil || !out.Message.FallbackUsed || out.Message.Type != errhandler.TypeRateLimit {
		t.Errorf("Message = %+v", out.Message)
	}
	if !out.Degraded() {
		t.Error("stale outcome should be degraded")
	}
}

func TestLocationClient_NoStaleForParseErrors(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, shibuyaPayload)
	lc, clock := newLocationClient(t, api)
	ctx := context.Background()
	lc.Lookup(ctx, "203.0.113.7")

	clock.Advance(11 * time.Minute)
	api.Set(http.StatusOK, `{"city":"Nowhere"}`)

	loc, out := lc.Lookup(ctx, "203.0.113.7")
	if out.Kind != KindDefault || !IsDefaultLocation(loc) {
		t.Errorf("Kind = %s loc = %+v, want default", out.Kind, loc)
	}
}

func TestValidateLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		loc  models.Location
		want bool
	}{
		{"valid", models.Location{Latitude: 35.68, Longitude: 139.76, City: "Tokyo"}, true},
		{"missing city", models.Location{Latitude: 35.68, Longitude: 139.76}, false},
		{"blank city", models.Location{Latitude: 35.68, Longitude: 139.76, City: " "}, false},
		{"latitude out of range", models.Location{Latitude: -91, Longitude: 0, City: "X"}, false},
		{"longitude out of range", models.Location{Latitude: 0, Longitude: 181, City: "X"}, false},
		{"NaN", models.Location{Latitude: math.NaN(), Longitude: 0, City: "X"}, false},
		{"boundaries", models.Location{Latitude: 90, Longitude: -180, City: "X"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidateLocation(tt.loc); got != tt.want {
				t.Errorf("ValidateLocation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocationClient_DefaultLocation(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, shibuyaPayload)
	lc, _ := newLocationClient(t, api)
	def := lc.DefaultLocation()
	if !IsDefaultLocation(def) || !ValidateLocation(def) {
		t.Errorf("DefaultLocation() = %+v", def)
	}
	if IsDefaultLocation(models.Location{Source: models.SourceIPAPI}) {
		t.Error("ipapi location reported as default")
	}
}
