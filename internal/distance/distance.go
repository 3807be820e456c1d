// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

// Package distance converts pairs of coordinates into straight-line and walking
// distances for display next to a recommended restaurant.
//
// Straight-line distance uses the haversine formula on a sphere of radius
// 6371 km. Walking distance applies a 1.3 detour factor for street routing and
// assumes a walking speed of 4 km/h.
//
//	calc := distance.New()
//	res := calc.WalkingDistance(35.6812, 139.7671, 35.6896, 139.7006)
//	fmt.Println(res.DistanceDisplay, res.TimeDisplay) // 7.9km approx. 119 minutes walking
package distance

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/lunchroulette/internal/logging"
	"github.com/tomtom215/lunchroulette/internal/metrics"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// DetourFactor converts straight-line distance into an estimated street distance.
	DetourFactor = 1.3

	// WalkingSpeedKmh is the assumed average walking speed.
	WalkingSpeedKmh = 4.0

	// Planar approximation used when the haversine result is not finite.
	// The longitude factor is tuned for central Japan (about 35 degrees north).
	kmPerDegreeLat = 111.0
	kmPerDegreeLon = 91.0
)

// Fixed walking estimate returned when the real one cannot be computed.
const (
	FallbackWalkingKm      = 0.5
	FallbackWalkingM       = 500
	FallbackWalkingMinutes = 8
	FallbackDistanceText   = "approx. 500m"
	FallbackTimeText       = "approx. 8 minutes walking"
)

// ErrInvalidCoordinate is matched by every coordinate validation failure.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// InvalidCoordinateError reports which value was rejected.
type InvalidCoordinateError struct {
	Field string // "latitude" or "longitude"
	Value float64
}

func (e *InvalidCoordinateError) Error() string {
	limit := 90
	if e.Field == "longitude" {
		limit = 180
	}
	return fmt.Sprintf("%s must be between -%d and %d: %v", e.Field, limit, limit, e.Value)
}

// Is makes InvalidCoordinateError match ErrInvalidCoordinate.
func (e *InvalidCoordinateError) Is(target error) bool {
	return target == ErrInvalidCoordinate
}

// ValidateCoordinates checks that lat is in [-90, 90] and lon in [-180, 180].
// NaN is rejected.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return &InvalidCoordinateError{Field: "latitude", Value: lat}
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return &InvalidCoordinateError{Field: "longitude", Value: lon}
	}
	return nil
}

// Result is a walking estimate between two points.
type Result struct {
	DistanceKm         float64 `json:"distance_km"`
	WalkingDistanceKm  float64 `json:"walking_distance_km"`
	WalkingDistanceM   int     `json:"walking_distance_m"`
	WalkingTimeMinutes int     `json:"walking_time_minutes"`
	DistanceDisplay    string  `json:"distance_display"`
	TimeDisplay        string  `json:"time_display"`
	Fallback           bool    `json:"fallback,omitempty"`
	Error              string  `json:"error,omitempty"`

	// Err is the cause of a fallback result, for errors.Is checks.
	Err error `json:"-"`
}

// FallbackResult is the fixed estimate used when a real one is unavailable.
func FallbackResult(err error) Result {
	res := Result{
		DistanceKm:         round3(FallbackWalkingKm / DetourFactor),
		WalkingDistanceKm:  FallbackWalkingKm,
		WalkingDistanceM:   FallbackWalkingM,
		WalkingTimeMinutes: FallbackWalkingMinutes,
		DistanceDisplay:    FallbackDistanceText,
		TimeDisplay:        FallbackTimeText,
		Fallback:           true,
		Err:                err,
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// Calculator computes distances. The zero value is not usable; call New.
type Calculator struct {
	greatCircle func(lat1, lon1, lat2, lon2 float64) float64
}

// New returns a haversine calculator.
func New() *Calculator {
	return &Calculator{greatCircle: haversine}
}

// Distance returns the straight-line distance in km, rounded to 3 decimals.
//
// Invalid coordinates return an error matching ErrInvalidCoordinate. A
// non-finite haversine result is replaced by the planar approximation.
func (c *Calculator) Distance(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if err := ValidateCoordinates(lat1, lon1); err != nil {
		return 0, err
	}
	if err := ValidateCoordinates(lat2, lon2); err != nil {
		return 0, err
	}

	km := c.greatCircle(lat1, lon1, lat2, lon2)
	if math.IsNaN(km) || math.IsInf(km, 0) {
		logging.Warn().
			Float64("lat1", lat1).Float64("lon1", lon1).
			Float64("lat2", lat2).Float64("lon2", lon2).
			Msg("Haversine result not finite, using planar approximation")
		return approximate(lat1, lon1, lat2, lon2), nil
	}
	return round3(km), nil
}

// WalkingDistance estimates walking distance and time. It never fails: invalid
// input yields FallbackResult with Err set.
func (c *Calculator) WalkingDistance(lat1, lon1, lat2, lon2 float64) Result {
	km, err := c.Distance(lat1, lon1, lat2, lon2)
	if err != nil {
		metrics.RecordDistanceFallback()
		logging.Debug().Err(err).Msg("Walking distance unavailable, using fallback estimate")
		return FallbackResult(err)
	}
	return walking(km)
}

func walking(km float64) Result {
	walkKm := round3(km * DetourFactor)
	walkM := int(math.Round(walkKm * 1000))
	minutes := int(math.Round(walkKm / WalkingSpeedKmh * 60))

	display := fmt.Sprintf("%.1fkm", walkKm)
	if walkM < 1000 {
		display = fmt.Sprintf("%dm", walkM)
	}

	return Result{
		DistanceKm:         km,
		WalkingDistanceKm:  walkKm,
		WalkingDistanceM:   walkM,
		WalkingTimeMinutes: minutes,
		DistanceDisplay:    display,
		TimeDisplay:        fmt.Sprintf("approx. %d minutes walking", minutes),
	}
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func approximate(lat1, lon1, lat2, lon2 float64) float64 {
	dy := (lat2 - lat1) * kmPerDegreeLat
	dx := (lon2 - lon1) * kmPerDegreeLon
	return round3(math.Sqrt(dx*dx + dy*dy))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
