// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package upstream

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/netip"
	"strings"

	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/config"
	"github.com/tomtom215/lunchroulette/internal/errhandler"
	"github.com/tomtom215/lunchroulette/internal/metrics"
	"github.com/tomtom215/lunchroulette/internal/models"
)

// autoIP is the cache key component for "whoever is calling".
const autoIP = "auto"

// ipapiResponse is the ipapi.co /json/ payload.
type ipapiResponse struct {
	IP          string   `json:"ip"`
	City        string   `json:"city"`
	Region      string   `json:"region"`
	CountryName string   `json:"country_name"`
	CountryCode string   `json:"country_code"`
	Postal      string   `json:"postal"`
	Timezone    string   `json:"timezone"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Error       bool     `json:"error"`
	Reason      string   `json:"reason"`
}

// LocationClient resolves an IP address to a location through ipapi.co.
type LocationClient struct {
	client   *Client
	cache    *cache.Service
	errs     *errhandler.Handler
	fallback models.Location
}

// NewLocationClient creates a location client. Failed lookups resolve to
// search.DefaultLocation().
func NewLocationClient(cfg *config.UpstreamConfig, search *config.SearchConfig, svc *cache.Service, errs *errhandler.Handler, opts ...ClientOption) *LocationClient {
	return &LocationClient{
		client:   NewClient(ProviderIPAPI, cfg.IPAPIURL, cfg, errs, opts...),
		cache:    svc,
		errs:     errs,
		fallback: search.DefaultLocation(),
	}
}

// Client exposes the underlying HTTP client.
func (lc *LocationClient) Client() *Client { return lc.client }

// DefaultLocation returns the location used when lookups fail.
func (lc *LocationClient) DefaultLocation() models.Location { return lc.fallback }

// Lookup resolves ip. Empty, private and loopback addresses look up the
// caller's public address instead. Lookup never fails: without live or stale
// data it returns the default location and an Outcome carrying the reason.
func (lc *LocationClient) Lookup(ctx context.Context, ip string) (models.Location, Outcome) {
	ip = publicIP(ip)
	keyIP := ip
	if keyIP == "" {
		keyIP = autoIP
	}
	key := cache.GenerateKey("location", map[string]any{"ip": keyIP})

	loc, out, err := cacheAside(ctx, lc.cache, ProviderIPAPI, key, 0, func(ctx context.Context) (models.Location, error) {
		return lc.fetch(ctx, ip)
	})

	switch {
	case err != nil:
		metrics.RecordUpstreamFallback(ProviderIPAPI, string(KindDefault))
		msg := lc.errs.Location(ctx, err, false)
		return lc.fallback, Outcome{Kind: KindDefault, Err: err, Message: &msg}
	case out.Kind == KindStale:
		loc.Source = models.SourceFallback
		loc.IsStale = true
		msg := lc.errs.Location(ctx, out.Err, true)
		out.Message = &msg
	}
	return loc, out
}

func (lc *LocationClient) fetch(ctx context.Context, ip string) (models.Location, error) {
	path := "/json/"
	if ip != "" {
		path = "/" + ip + "/json/"
	}

	var resp ipapiResponse
	if err := lc.client.GetJSON(ctx, path, nil, &resp); err != nil {
		return models.Location{}, err
	}

	if resp.Error {
		if resp.Reason == "RateLimited" {
			return models.Location{}, &StatusError{Provider: ProviderIPAPI, Code: http.StatusTooManyRequests, Body: resp.Reason}
		}
		return models.Location{}, fmt.Errorf("ipapi: %s: %w", resp.Reason, errhandler.ErrLocationNotFound)
	}
	if resp.Latitude == nil || resp.Longitude == nil {
		return models.Location{}, fmt.Errorf("ipapi: %w: missing coordinates", errhandler.ErrParse)
	}

	loc := models.Location{
		Latitude:    *resp.Latitude,
		Longitude:   *resp.Longitude,
		City:        orDefault(resp.City, "Unknown"),
		Region:      orDefault(resp.Region, "Unknown"),
		Country:     orDefault(resp.CountryName, "Unknown"),
		CountryCode: orDefault(resp.CountryCode, "XX"),
		Postal:      resp.Postal,
		Timezone:    orDefault(resp.Timezone, "Asia/Tokyo"),
		Source:      models.SourceIPAPI,
	}
	if !validCoordinates(loc.Latitude, loc.Longitude) {
		return models.Location{}, fmt.Errorf("ipapi: %w: coordinates out of range", errhandler.ErrParse)
	}
	return loc, nil
}

// publicIP returns the canonical form of ip, or "" when ip is empty,
// unparsable or not publicly routable.
func publicIP(ip string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return ""
	}
	addr = addr.Unmap()
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsMulticast() {
		return ""
	}
	return addr.String()
}

// IsDefaultLocation reports whether loc is the configured fallback location.
func IsDefaultLocation(loc models.Location) bool {
	return loc.Source == models.SourceDefault
}

// ValidateLocation reports whether loc has usable coordinates and a city.
func ValidateLocation(loc models.Location) bool {
	return validCoordinates(loc.Latitude, loc.Longitude) && strings.TrimSpace(loc.City) != ""
}

func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
