// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package upstream

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/config"
	"github.com/tomtom215/lunchroulette/internal/errhandler"
	"github.com/tomtom215/lunchroulette/internal/metrics"
	"github.com/tomtom215/lunchroulette/internal/models"
)

// SourceOpenWeather labels live weather data.
const SourceOpenWeather = "openweathermap"

const (
	defaultIcon       = "01d"
	defaultVisibility = 10000
	iconURLFormat     = "https://openweathermap.org/img/wn/%s@2x.png"
)

// oneCallResponse is the subset of the One Call 3.0 payload used here.
type oneCallResponse struct {
	TimezoneOffset int             `json:"timezone_offset"`
	Current        *oneCallCurrent `json:"current"`
}

type oneCallCurrent struct {
	Dt         int64   `json:"dt"`
	Sunrise    int64   `json:"sunrise"`
	Sunset     int64   `json:"sunset"`
	Temp       float64 `json:"temp"`
	FeelsLike  float64 `json:"feels_like"`
	Pressure   int     `json:"pressure"`
	Humidity   int     `json:"humidity"`
	UVI        float64 `json:"uvi"`
	Clouds     int     `json:"clouds"`
	Visibility *int    `json:"visibility"`
	WindSpeed  float64 `json:"wind_speed"`
	WindDeg    int     `json:"wind_deg"`
	Weather    []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

// WeatherClient reads current weather from OpenWeatherMap One Call 3.0.
type WeatherClient struct {
	client *Client
	apiKey string
	cache  *cache.Service
	errs   *errhandler.Handler
}

// NewWeatherClient creates a weather client. Without an API key every call
// returns DefaultWeather without touching the network.
func NewWeatherClient(cfg *config.UpstreamConfig, svc *cache.Service, errs *errhandler.Handler, opts ...ClientOption) *WeatherClient {
	return &WeatherClient{
		client: NewClient(ProviderOpenWeather, cfg.OpenWeatherURL, cfg, errs, opts...),
		apiKey: cfg.OpenWeatherAPIKey,
		cache:  svc,
		errs:   errs,
	}
}

// Client exposes the underlying HTTP client.
func (wc *WeatherClient) Client() *Client { return wc.client }

// DefaultWeather is the typical mild day used when no data is available.
func DefaultWeather() models.Weather {
	return models.Weather{
		Temperature:   20.0,
		FeelsLike:     20.0,
		Condition:     "clear",
		Description:   "clear sky",
		UVIndex:       3.0,
		Humidity:      60,
		Pressure:      1013,
		Visibility:    defaultVisibility,
		WindSpeed:     2.0,
		WindDirection: 180,
		Clouds:        20,
		Icon:          defaultIcon,
		Sunrise:       "06:00",
		Sunset:        "18:00",
		Source:        models.SourceDefault,
	}
}

// Current returns the weather at lat/lon. Like LocationClient.Lookup it
// never fails; degraded results are described by the Outcome.
func (wc *WeatherClient) Current(ctx context.Context, lat, lon float64) (models.Weather, Outcome) {
	if wc.apiKey == "" {
		metrics.RecordUpstreamFallback(ProviderOpenWeather, string(KindDefault))
		return DefaultWeather(), Outcome{Kind: KindDefault}
	}

	key := cache.GenerateKey("weather", map[string]any{
		"lat": round4(lat),
		"lon": round4(lon),
	})

	w, out, err := cacheAside(ctx, wc.cache, ProviderOpenWeather, key, 0, func(ctx context.Context) (models.Weather, error) {
		return wc.fetch(ctx, lat, lon)
	})

	switch {
	case err != nil:
		metrics.RecordUpstreamFallback(ProviderOpenWeather, string(KindDefault))
		msg := wc.errs.Weather(ctx, err, false)
		return DefaultWeather(), Outcome{Kind: KindDefault, Err: err, Message: &msg}
	case out.Kind == KindStale:
		w.Source = models.SourceFallback
		w.IsStale = true
		msg := wc.errs.Weather(ctx, out.Err, true)
		out.Message = &msg
	}
	return w, out
}

func (wc *WeatherClient) fetch(ctx context.Context, lat, lon float64) (models.Weather, error) {
	q := url.Values{}
	q.Set("lat", formatCoord(lat))
	q.Set("lon", formatCoord(lon))
	q.Set("appid", wc.apiKey)
	q.Set("units", "metric")
	q.Set("lang", "ja")
	q.Set("exclude", "minutely,hourly,daily,alerts")

	var resp oneCallResponse
	if err := wc.client.GetJSON(ctx, "", q, &resp); err != nil {
		return models.Weather{}, err
	}
	if resp.Current == nil {
		return models.Weather{}, fmt.Errorf("openweathermap: %w: missing current block", errhandler.ErrParse)
	}
	return parseWeather(resp.TimezoneOffset, resp.Current), nil
}

func parseWeather(offset int, c *oneCallCurrent) models.Weather {
	zone := time.FixedZone("", offset)
	w := models.Weather{
		Temperature:   c.Temp,
		FeelsLike:     c.FeelsLike,
		Condition:     "clear",
		UVIndex:       c.UVI,
		Humidity:      c.Humidity,
		Pressure:      c.Pressure,
		Visibility:    defaultVisibility,
		WindSpeed:     c.WindSpeed,
		WindDirection: c.WindDeg,
		Clouds:        c.Clouds,
		Icon:          defaultIcon,
		Source:        SourceOpenWeather,
	}
	if c.Visibility != nil {
		w.Visibility = *c.Visibility
	}
	if len(c.Weather) > 0 {
		if m := strings.ToLower(c.Weather[0].Main); m != "" {
			w.Condition = m
		}
		w.Description = c.Weather[0].Description
		if c.Weather[0].Icon != "" {
			w.Icon = c.Weather[0].Icon
		}
	}
	if c.Sunrise > 0 {
		w.Sunrise = time.Unix(c.Sunrise, 0).In(zone).Format("15:04")
	}
	if c.Sunset > 0 {
		w.Sunset = time.Unix(c.Sunset, 0).In(zone).Format("15:04")
	}
	if c.Dt > 0 {
		w.Timestamp = time.Unix(c.Dt, 0).UTC().Format(time.RFC3339)
	}
	return w
}

var badWalkingConditions = []string{"rain", "drizzle", "thunderstorm", "snow"}

// IsGoodWalkingWeather reports whether w is pleasant enough to walk to lunch:
// no precipitation, 0 to 35 °C and wind up to 10 m/s.
func IsGoodWalkingWeather(w models.Weather) bool {
	cond := strings.ToLower(w.Condition)
	for _, bad := range badWalkingConditions {
		if strings.Contains(cond, bad) {
			return false
		}
	}
	return w.Temperature >= 0 && w.Temperature <= 35 && w.WindSpeed <= 10
}

// IconURL returns the OpenWeatherMap icon image for icon.
func IconURL(icon string) string {
	if icon == "" {
		icon = defaultIcon
	}
	return fmt.Sprintf(iconURLFormat, icon)
}

// ValidateWeather reports whether w holds plausible values.
func ValidateWeather(w models.Weather) bool {
	if math.IsNaN(w.Temperature) || math.IsNaN(w.UVIndex) {
		return false
	}
	return w.Temperature >= -50 && w.Temperature <= 60 && w.UVIndex >= 0 && w.UVIndex <= 15
}

// round4 rounds a coordinate to 4 decimals (about 11 m) for cache keys.
func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
