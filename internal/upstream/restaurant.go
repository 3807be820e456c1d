// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package upstream

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/config"
	"github.com/tomtom215/lunchroulette/internal/errhandler"
	"github.com/tomtom215/lunchroulette/internal/logging"
	"github.com/tomtom215/lunchroulette/internal/models"
	"github.com/tomtom215/lunchroulette/internal/validation"
)

// SourceHotpepper labels restaurants from the Hot Pepper Gourmet API.
const SourceHotpepper = "hotpepper"

// DefaultBudgetYen is assumed when a shop's budget cannot be determined.
const DefaultBudgetYen = 2000

// budgetCodes maps Hot Pepper budget codes to the upper bound in yen.
var budgetCodes = map[string]int{
	"B009": 500,
	"B010": 1000,
	"B011": 1500,
	"B001": 2000,
	"B002": 3000,
	"B003": 4000,
	"B008": 5000,
	"B004": 7000,
	"B005": 10000,
	"B006": 15000,
	"B012": 20000,
	"B013": 30000,
	"B014": 30001,
}

// Hot Pepper result error codes.
const (
	hotpepperServerError = 1000
	hotpepperAuthError   = 2000
)

// flexFloat accepts a JSON number or a numeric string. Empty strings and
// null decode to 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("flexFloat %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

// flexInt accepts a JSON number or a numeric string. Non-numeric strings
// (Hot Pepper sends "" for unknown capacity) decode to 0.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexInt(v)
	return nil
}

type hotpepperResponse struct {
	Results *struct {
		Error []struct {
			Code    flexInt `json:"code"`
			Message string  `json:"message"`
		} `json:"error"`
		ResultsAvailable flexInt         `json:"results_available"`
		Shop             []hotpepperShop `json:"shop"`
	} `json:"results"`
}

type hotpepperShop struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	NameKana string    `json:"name_kana"`
	Address  string    `json:"address"`
	Lat      flexFloat `json:"lat"`
	Lng      flexFloat `json:"lng"`
	Genre    struct {
		Name  string `json:"name"`
		Catch string `json:"catch"`
	} `json:"genre"`
	Budget struct {
		Code    string `json:"code"`
		Name    string `json:"name"`
		Average string `json:"average"`
	} `json:"budget"`
	Catch  string `json:"catch"`
	Access string `json:"access"`
	Open   string `json:"open"`
	Close  string `json:"close"`
	Photo  struct {
		PC struct {
			L string `json:"l"`
			M string `json:"m"`
			S string `json:"s"`
		} `json:"pc"`
		Mobile struct {
			L string `json:"l"`
			S string `json:"s"`
		} `json:"mobile"`
	} `json:"photo"`
	URLs struct {
		PC string `json:"pc"`
	} `json:"urls"`
	Capacity   flexInt `json:"capacity"`
	NonSmoking string  `json:"non_smoking"`
	Card       string  `json:"card"`
	Lunch      string  `json:"lunch"`
}

// RestaurantClient searches restaurants through Hot Pepper Gourmet.
type RestaurantClient struct {
	client *Client
	apiKey string
	count  int
	cache  *cache.Service
	errs   *errhandler.Handler
}

// NewRestaurantClient creates a restaurant client returning up to count
// shops per search.
func NewRestaurantClient(cfg *config.UpstreamConfig, count int, svc *cache.Service, errs *errhandler.Handler, opts ...ClientOption) *RestaurantClient {
	if count <= 0 {
		count = 100
	}
	return &RestaurantClient{
		client: NewClient(ProviderHotpepper, cfg.HotpepperURL, cfg, errs, opts...),
		apiKey: cfg.HotpepperAPIKey,
		count:  count,
		cache:  svc,
		errs:   errs,
	}
}

// Client exposes the underlying HTTP client.
func (rc *RestaurantClient) Client() *Client { return rc.client }

// Search returns the shops within radiusKm of lat/lon. Unlike location and
// weather there is no default list: when neither live nor stale data is
// available the error wraps errhandler.ErrRestaurantNotFound and the Outcome
// carries the user message.
func (rc *RestaurantClient) Search(ctx context.Context, lat, lon, radiusKm float64) ([]models.Restaurant, Outcome, error) {
	if rc.apiKey == "" {
		err := fmt.Errorf("hotpepper: no API key configured: %w", errhandler.ErrRestaurantNotFound)
		msg := rc.errs.Restaurant(ctx, err, false)
		return nil, Outcome{Kind: KindDefault, Err: err, Message: &msg}, err
	}

	key := cache.GenerateKey("restaurants", map[string]any{
		"lat":    round4(lat),
		"lon":    round4(lon),
		"radius": radiusKm,
	})

	list, out, err := cacheAside(ctx, rc.cache, ProviderHotpepper, key, 0, func(ctx context.Context) ([]models.Restaurant, error) {
		return rc.search(ctx, lat, lon, radiusKm)
	})
	if err != nil {
		msg := rc.errs.Restaurant(ctx, err, false)
		return nil, Outcome{Kind: KindDefault, Err: err, Message: &msg}, fmt.Errorf("%w: %w", errhandler.ErrRestaurantNotFound, err)
	}

	if out.Kind == KindStale {
		for i := range list {
			list[i].Source = models.SourceFallback
		}
		msg := rc.errs.Restaurant(ctx, out.Err, true)
		out.Message = &msg
	}
	return list, out, nil
}

func (rc *RestaurantClient) search(ctx context.Context, lat, lon, radiusKm float64) ([]models.Restaurant, error) {
	q := url.Values{}
	q.Set("key", rc.apiKey)
	q.Set("lat", formatCoord(lat))
	q.Set("lng", formatCoord(lon))
	q.Set("range", strconv.Itoa(RangeCode(radiusKm)))
	q.Set("count", strconv.Itoa(rc.count))
	q.Set("format", "json")

	return rc.query(ctx, q)
}

// ByID looks up one shop. It reports false when the shop does not exist.
func (rc *RestaurantClient) ByID(ctx context.Context, id string) (models.Restaurant, bool, error) {
	if rc.apiKey == "" {
		return models.Restaurant{}, false, fmt.Errorf("hotpepper: no API key configured: %w", errhandler.ErrRestaurantNotFound)
	}

	q := url.Values{}
	q.Set("key", rc.apiKey)
	q.Set("id", id)
	q.Set("format", "json")

	list, err := rc.query(ctx, q)
	if err != nil {
		return models.Restaurant{}, false, err
	}
	if len(list) == 0 {
		return models.Restaurant{}, false, nil
	}
	return list[0], true, nil
}

func (rc *RestaurantClient) query(ctx context.Context, q url.Values) ([]models.Restaurant, error) {
	var resp hotpepperResponse
	if err := rc.client.GetJSON(ctx, "", q, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("hotpepper: %w: missing results", errhandler.ErrParse)
	}
	if len(resp.Results.Error) > 0 {
		e := resp.Results.Error[0]
		return nil, &StatusError{Provider: ProviderHotpepper, Code: hotpepperStatus(int(e.Code)), Body: e.Message}
	}

	list := make([]models.Restaurant, 0, len(resp.Results.Shop))
	for i := range resp.Results.Shop {
		r := convertShop(&resp.Results.Shop[i])
		if !validation.ValidRestaurant(&r) {
			logging.CtxDebug(ctx).Str("id", r.ID).Msg("Skipping malformed restaurant record")
			continue
		}
		list = append(list, r)
	}
	return list, nil
}

// hotpepperStatus maps a results.error code onto the HTTP status the error
// classifier understands.
func hotpepperStatus(code int) int {
	switch code {
	case hotpepperAuthError:
		return http.StatusUnauthorized
	case hotpepperServerError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func convertShop(s *hotpepperShop) models.Restaurant {
	return models.Restaurant{
		ID:            s.ID,
		Name:          s.Name,
		NameKana:      s.NameKana,
		Genre:         s.Genre.Name,
		Lat:           float64(s.Lat),
		Lng:           float64(s.Lng),
		Address:       s.Address,
		BudgetAverage: ParseBudget(s.Budget.Code, s.Budget.Name),
		BudgetName:    s.Budget.Name,
		Catch:         s.Catch,
		Access:        s.Access,
		Open:          s.Open,
		Close:         s.Close,
		Photo: firstNonEmpty(
			s.Photo.PC.L, s.Photo.PC.M, s.Photo.PC.S,
			s.Photo.Mobile.L, s.Photo.Mobile.S,
		),
		URLs:       models.RestaurantURLs{PC: s.URLs.PC},
		Capacity:   int(s.Capacity),
		NonSmoking: s.NonSmoking,
		Card:       s.Card,
		Lunch:      s.Lunch,
		Source:     SourceHotpepper,
	}
}

var firstNumber = regexp.MustCompile(`\d[\d,]*`)

// ParseBudget converts a Hot Pepper budget to yen: the code table first,
// then the first number in the name, else DefaultBudgetYen.
func ParseBudget(code, name string) int {
	if yen, ok := budgetCodes[code]; ok {
		return yen
	}
	if m := firstNumber.FindString(name); m != "" {
		if yen, err := strconv.Atoi(strings.ReplaceAll(m, ",", "")); err == nil && yen > 0 {
			return yen
		}
	}
	return DefaultBudgetYen
}

// RangeCode converts a search radius to the Hot Pepper range parameter:
// 1=300m, 2=500m, 3=1km, 4=2km, 5=3km.
func RangeCode(radiusKm float64) int {
	switch {
	case radiusKm <= 0.3:
		return 1
	case radiusKm <= 0.5:
		return 2
	case radiusKm <= 1:
		return 3
	case radiusKm <= 2:
		return 4
	default:
		return 5
	}
}

// WalkingRangeCode converts a walking time to a range code assuming
// 80 m per minute.
func WalkingRangeCode(minutes int) int {
	switch {
	case minutes <= 5:
		return 2
	case minutes <= 10:
		return 3
	case minutes <= 20:
		return 4
	default:
		return 5
	}
}

// RangeRadiusKm is the inverse of RangeCode. Codes outside 1..5 map to 1 km.
func RangeRadiusKm(code int) float64 {
	switch code {
	case 1:
		return 0.3
	case 2:
		return 0.5
	case 4:
		return 2
	case 5:
		return 3
	default:
		return 1
	}
}

// FilterByBudget keeps restaurants whose average budget is at most maxYen.
// Unknown budgets (0) are kept.
func FilterByBudget(list []models.Restaurant, maxYen int) []models.Restaurant {
	out := make([]models.Restaurant, 0, len(list))
	for _, r := range list {
		if r.BudgetAverage <= maxYen {
			out = append(out, r)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
