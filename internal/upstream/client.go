// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/lunchroulette/internal/config"
	"github.com/tomtom215/lunchroulette/internal/errhandler"
	"github.com/tomtom215/lunchroulette/internal/metrics"
)

// Provider names used for breakers, metrics and logs.
const (
	ProviderIPAPI       = "ipapi"
	ProviderOpenWeather = "openweathermap"
	ProviderHotpepper   = "hotpepper"
)

const (
	userAgent = "lunchroulette/1.0"

	// maxResponseBytes bounds a decoded payload. A full Hot Pepper page of
	// 100 shops is well under 1MB.
	maxResponseBytes = 4 << 20
	maxErrorBodySize = 64 << 10
)

// StatusError is a non-200 response, or an error reported inside a 200
// payload that maps onto an HTTP status.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: request failed with status %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s: request failed with status %d: %s", e.Provider, e.Code, e.Body)
}

// HTTPStatus lets errhandler.Classify map the status code.
func (e *StatusError) HTTPStatus() int { return e.Code }

// Client performs rate limited, circuit broken JSON GET requests against one
// provider.
type Client struct {
	provider string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[[]byte]
	errs     *errhandler.Handler
	attempts int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithBaseURL overrides the configured endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// NewClient creates a client for provider rooted at baseURL.
func NewClient(provider, baseURL string, cfg *config.UpstreamConfig, errs *errhandler.Handler, opts ...ClientOption) *Client {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	if errs == nil {
		errs = errhandler.New()
	}

	c := &Client{
		provider: provider,
		baseURL:  baseURL,
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst),
		breaker:  newBreaker(provider+"-api", cfg.Breaker),
		errs:     errs,
		attempts: attempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider name.
func (c *Client) Provider() string { return c.provider }

// BreakerState returns closed, half-open or open.
func (c *Client) BreakerState() string { return stateToString(c.breaker.State()) }

// GetJSON fetches path with query and decodes the body into dst.
// Undecodable bodies are reported as errhandler.ErrParse.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, dst any) error {
	body, err := c.fetch(ctx, c.endpoint(path, query))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%s: %w: %w", c.provider, errhandler.ErrParse, err)
	}
	return nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL
	if path != "" {
		u = strings.TrimRight(u, "/") + "/" + strings.TrimLeft(path, "/")
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// fetch runs one logical request: retries (per errhandler policy) around the
// limiter, the breaker and the HTTP round trip.
func (c *Client) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	var body []byte
	err := errhandler.Retry(ctx, c.errs, c.attempts, func(ctx context.Context) error {
		if err := c.wait(ctx); err != nil {
			return err
		}

		start := time.Now()
		b, err := c.breaker.Execute(func() ([]byte, error) {
			return c.do(ctx, reqURL)
		})
		recordBreakerResult(c.breaker.Name(), err)
		metrics.RecordUpstreamRequest(c.provider, time.Since(start), err)
		if err != nil {
			// StatusError already names the provider.
			var se *StatusError
			if errors.As(err, &se) {
				return err
			}
			return fmt.Errorf("%s: %w", c.provider, err)
		}
		body = b
		return nil
	})
	return body, err
}

// wait blocks on the provider limiter. A wait that cannot finish before the
// context deadline is reported as a deadline error.
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", c.provider, ctxErr)
		}
		return fmt.Errorf("%s: %w: %v", c.provider, context.DeadlineExceeded, err)
	}
	return nil
}

// do executes an HTTP GET request and returns the response body
func (c *Client) do(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			Provider: c.provider,
			Code:     resp.StatusCode,
			Body:     readBodyForError(resp.Body),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// readBodyForError reads a bounded, trimmed prefix of an error body.
func readBodyForError(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
