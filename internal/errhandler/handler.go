// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package errhandler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lunchroulette/internal/logging"
)

// Service names reported in UserMessage.ServiceAffected.
const (
	ServiceLocation   = "location"
	ServiceRestaurant = "restaurant"
	ServiceWeather    = "weather"
	ServiceDistance   = "distance_calculator"
)

// Info is the full record of a handled error.
type Info struct {
	Type       ErrorType      `json:"error_type"`
	Message    string         `json:"user_message"`
	Suggestion string         `json:"suggestion"`
	Severity   Severity       `json:"severity"`
	Timestamp  time.Time      `json:"timestamp"`
	Detail     string         `json:"technical_details,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// UserMessage is the client-facing subset of Info.
type UserMessage struct {
	Type            ErrorType `json:"error_type"`
	Message         string    `json:"message"`
	Suggestion      string    `json:"suggestion"`
	Severity        Severity  `json:"severity"`
	FallbackUsed    bool      `json:"fallback_used"`
	ServiceAffected string    `json:"service_affected"`
}

// Handler classifies, logs and counts errors. It is safe for concurrent use.
type Handler struct {
	stats *Stats
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithSleep overrides the wait used between Retry attempts.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(h *Handler) { h.sleep = sleep }
}

// New creates a Handler with its own Stats.
func New(opts ...Option) *Handler {
	h := &Handler{
		stats: &Stats{},
		now:   time.Now,
		sleep: sleepCtx,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Stats returns the handler's counters.
func (h *Handler) Stats() *Stats {
	return h.stats
}

// Handle classifies err, records it, logs it at the level of its type and
// returns the user-facing record. fields is attached to the log and to Info.
func (h *Handler) Handle(ctx context.Context, err error, fields map[string]any) Info {
	return h.handleAs(ctx, Classify(err), err, fields)
}

func (h *Handler) handleAs(ctx context.Context, t ErrorType, err error, fields map[string]any) Info {
	entry := lookup(t)
	info := Info{
		Type:       t,
		Message:    entry.message,
		Suggestion: entry.suggestion,
		Severity:   entry.severity,
		Timestamp:  h.now(),
		Context:    fields,
	}
	if err != nil {
		info.Detail = err.Error()
	}

	h.stats.Record(t)

	logger := logging.Ctx(ctx)
	event := logger.WithLevel(logLevel(t)).Err(err).Str("error_type", string(t))
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	event.Msg("Handled error")

	return info
}

func logLevel(t ErrorType) zerolog.Level {
	switch t {
	case TypeAuth, TypeUnknown:
		return zerolog.ErrorLevel
	case TypeRateLimit, TypeNetwork, TypeTimeout, TypeParsing:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

func (h *Handler) forService(ctx context.Context, t ErrorType, err error, service string, fallback bool) UserMessage {
	info := h.handleAs(ctx, t, err, map[string]any{
		"affected_service":   service,
		"fallback_available": fallback,
	})
	return UserMessage{
		Type:            info.Type,
		Message:         info.Message,
		Suggestion:      info.Suggestion,
		Severity:        info.Severity,
		FallbackUsed:    fallback,
		ServiceAffected: service,
	}
}

// Location handles a location lookup failure. Without a fallback the message
// says the default location is used.
func (h *Handler) Location(ctx context.Context, err error, fallbackUsed bool) UserMessage {
	msg := h.forService(ctx, Classify(err), err, ServiceLocation, fallbackUsed)
	if !fallbackUsed {
		msg.Message = "Could not determine your location. Searching around Tokyo Station instead."
		msg.Suggestion = "Allow location access for more accurate results."
	}
	return msg
}

// Restaurant handles a restaurant search failure.
func (h *Handler) Restaurant(ctx context.Context, err error, fallbackUsed bool) UserMessage {
	msg := h.forService(ctx, Classify(err), err, ServiceRestaurant, fallbackUsed)
	if msg.Type == TypeRateLimit && fallbackUsed {
		msg.Message = "Showing earlier search results because of API limits."
		msg.Suggestion = "Wait a while to get the latest information."
	}
	return msg
}

// Weather handles a weather lookup failure.
func (h *Handler) Weather(ctx context.Context, err error, fallbackUsed bool) UserMessage {
	msg := h.forService(ctx, Classify(err), err, ServiceWeather, fallbackUsed)
	if !fallbackUsed {
		msg.Message = "Could not get weather information. Showing typical weather instead."
		msg.Suggestion = "Actual weather may differ."
	}
	return msg
}

// Distance handles a distance calculation failure. An approximate distance is
// always available, so the record is a warning with fallback_used set.
func (h *Handler) Distance(ctx context.Context, err error) UserMessage {
	return h.forService(ctx, TypeDistance, err, ServiceDistance, true)
}
