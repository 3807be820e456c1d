// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package roulette

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/lunchroulette/internal/config"
	"github.com/tomtom215/lunchroulette/internal/distance"
	"github.com/tomtom215/lunchroulette/internal/errhandler"
	"github.com/tomtom215/lunchroulette/internal/logging"
	"github.com/tomtom215/lunchroulette/internal/metrics"
	"github.com/tomtom215/lunchroulette/internal/models"
	"github.com/tomtom215/lunchroulette/internal/selector"
	"github.com/tomtom215/lunchroulette/internal/upstream"
)

// ErrInvalidRequest is returned for requests that cannot be served as given.
var ErrInvalidRequest = errors.New("invalid roulette request")

// errNoneWithinBudget explains an empty selection when the search itself
// succeeded.
var errNoneWithinBudget = fmt.Errorf("no restaurant within budget: %w", errhandler.ErrRestaurantNotFound)

// LocationSource resolves the caller's position from an IP address.
type LocationSource interface {
	Lookup(ctx context.Context, ip string) (models.Location, upstream.Outcome)
}

// WeatherSource reports the current weather at a position.
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (models.Weather, upstream.Outcome)
}

// RestaurantSource lists restaurants around a position.
type RestaurantSource interface {
	Search(ctx context.Context, lat, lon, radiusKm float64) ([]models.Restaurant, upstream.Outcome, error)
}

// Request is one spin of the roulette. Latitude and Longitude are set
// together or not at all; without them IP is geolocated.
type Request struct {
	Latitude          *float64
	Longitude         *float64
	IP                string
	MaxWalkingMinutes int
}

// SearchInfo describes the search behind a Response.
type SearchInfo struct {
	RadiusKm       float64              `json:"radius_km"`
	MaxBudget      int                  `json:"max_budget"`
	TotalFound     int                  `json:"total_found"`
	WithinBudget   int                  `json:"within_budget"`
	WalkingWeather bool                 `json:"walking_weather"`
	UserLocation   UserLocation         `json:"user_location"`
	Statistics     *selector.Statistics `json:"statistics,omitempty"`
	DurationMS     int64                `json:"duration_ms"`
}

// UserLocation is the position the search was centered on.
type UserLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Response is the roulette result. When Success is false ErrorInfo says why
// and Restaurant is nil.
type Response struct {
	Success    bool                     `json:"success"`
	Restaurant *selector.Selection      `json:"restaurant,omitempty"`
	Location   models.Location          `json:"location"`
	Weather    models.Weather           `json:"weather"`
	SearchInfo SearchInfo               `json:"search_info"`
	ErrorInfo  *errhandler.UserMessage  `json:"error_info,omitempty"`
	Message    string                   `json:"message,omitempty"`
	Suggestion string                   `json:"suggestion,omitempty"`
	Warnings   []errhandler.UserMessage `json:"warnings,omitempty"`
}

// Service runs the recommendation flow: locate, look up weather and
// restaurants, filter by budget, pick one.
type Service struct {
	locations   LocationSource
	weather     WeatherSource
	restaurants RestaurantSource
	selector    *selector.Selector
	errs        *errhandler.Handler
	search      config.SearchConfig
}

// Deps are the collaborators of a Service. Selector and Errors default to
// fresh instances when nil.
type Deps struct {
	Locations   LocationSource
	Weather     WeatherSource
	Restaurants RestaurantSource
	Selector    *selector.Selector
	Errors      *errhandler.Handler
}

// NewService creates a Service searching with the given settings.
func NewService(deps Deps, search config.SearchConfig) *Service {
	if deps.Selector == nil {
		deps.Selector = selector.New()
	}
	if deps.Errors == nil {
		deps.Errors = errhandler.New()
	}
	return &Service{
		locations:   deps.Locations,
		weather:     deps.Weather,
		restaurants: deps.Restaurants,
		selector:    deps.Selector,
		errs:        deps.Errors,
		search:      search,
	}
}

// Recommend picks a restaurant for req. Upstream trouble degrades the
// response (default location, typical weather, stale results) instead of
// failing it; an empty candidate list is a Response with Success false.
// The error is non-nil only for invalid requests and cancellation.
func (s *Service) Recommend(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	loc, err := s.locate(ctx, req)
	if err != nil {
		return Response{}, err
	}
	resp := Response{Location: loc.Location}
	if loc.msg != nil {
		resp.Warnings = append(resp.Warnings, *loc.msg)
	}

	radius := s.search.RadiusKm
	if req.MaxWalkingMinutes > 0 {
		radius = upstream.RangeRadiusKm(upstream.WalkingRangeCode(req.MaxWalkingMinutes))
	}
	lat, lon := loc.Latitude, loc.Longitude

	var (
		weather    models.Weather
		weatherOut upstream.Outcome
		found      []models.Restaurant
		searchOut  upstream.Outcome
		searchErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		weather, weatherOut = s.weather.Current(gctx, lat, lon)
		return nil
	})
	g.Go(func() error {
		found, searchOut, searchErr = s.restaurants.Search(gctx, lat, lon, radius)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Response{}, fmt.Errorf("roulette: %w", err)
	}

	resp.Weather = weather
	if weatherOut.Message != nil {
		resp.Warnings = append(resp.Warnings, *weatherOut.Message)
	}

	within := upstream.FilterByBudget(found, s.search.MaxBudgetYen)
	resp.SearchInfo = SearchInfo{
		RadiusKm:       radius,
		MaxBudget:      s.search.MaxBudgetYen,
		TotalFound:     len(found),
		WithinBudget:   len(within),
		WalkingWeather: upstream.IsGoodWalkingWeather(weather),
		UserLocation:   UserLocation{Latitude: lat, Longitude: lon},
	}
	if len(found) > 0 {
		stats := s.selector.Statistics(found)
		resp.SearchInfo.Statistics = &stats
	}

	if searchErr != nil {
		metrics.RecordSelection(false)
		s.fail(ctx, &resp, searchErr, searchOut.Message)
		resp.SearchInfo.DurationMS = time.Since(start).Milliseconds()
		return resp, nil
	}
	if searchOut.Message != nil {
		resp.Warnings = append(resp.Warnings, *searchOut.Message)
	}

	pick, ok := s.selector.SelectOne(within, lat, lon)
	metrics.RecordSelection(ok)
	resp.SearchInfo.DurationMS = time.Since(start).Milliseconds()
	if !ok {
		s.fail(ctx, &resp, errNoneWithinBudget, nil)
		return resp, nil
	}

	resp.Success = true
	resp.Restaurant = &pick
	logging.CtxInfo(ctx).
		Str("restaurant_id", pick.ID).
		Str("location_source", resp.Location.Source).
		Int("candidates", len(within)).
		Str("distance", pick.DistanceInfo.DistanceDisplay).
		Msg("Roulette selected restaurant")
	return resp, nil
}

// fail marks resp unsuccessful. msg is the message already produced for err,
// if any.
func (s *Service) fail(ctx context.Context, resp *Response, err error, msg *errhandler.UserMessage) {
	if msg == nil {
		m := s.errs.Restaurant(ctx, err, false)
		msg = &m
	}
	resp.ErrorInfo = msg
	resp.Message = msg.Message
	resp.Suggestion = msg.Suggestion
}

type located struct {
	models.Location
	msg *errhandler.UserMessage
}

// locate prefers client coordinates over IP geolocation.
func (s *Service) locate(ctx context.Context, req Request) (located, error) {
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		if err := distance.ValidateCoordinates(*req.Latitude, *req.Longitude); err != nil {
			return located{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return located{Location: models.Location{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
			Source:    models.SourceClient,
		}}, nil
	case req.Latitude != nil || req.Longitude != nil:
		return located{}, fmt.Errorf("%w: latitude and longitude must be provided together", ErrInvalidRequest)
	}

	loc, out := s.locations.Lookup(ctx, req.IP)
	return located{Location: loc, msg: out.Message}, nil
}
