// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package events

import (
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/metrics"
)

// Auditor consumes RecommendationServed events, counting served items by
// category and source and writing one log line per event.
type Auditor struct {
	logger   zerolog.Logger
	handled  atomic.Int64
	rejected atomic.Int64
}

// NewAuditor creates an auditor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAuditor(logger zerolog.Logger) *Auditor {
	return &Auditor{logger: logger.With().Str("component", "audit").Logger()}
}

// Handle implements message.NoPublishHandlerFunc. Undecodable payloads are
// acked and counted as rejected.
func (a *Auditor) Handle(msg *message.Message) error {
	ev, err := DecodeRecommendationServed(msg.Payload)
	if err != nil {
		a.rejected.Add(1)
		a.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping undecodable event")
		return nil
	}

	categories := make([]string, 0, len(ev.Items))
	for _, it := range ev.Items {
		metrics.RecordServed(string(it.Category), string(it.Source))
		categories = append(categories, string(it.Category))
	}
	a.handled.Add(1)

	a.logger.Info().
		Str("event_id", ev.EventID).
		Str("session_id", ev.SessionID).
		Str("request_id", ev.RequestID).
		Strs("categories", categories).
		Bool("fallback_used", ev.FallbackUsed).
		Bool("llm_evaluated", ev.LLMEvaluated).
		Int64("latency_ms", ev.LatencyMS).
		Msg("recommendation served")
	return nil
}

// Handled returns the number of events processed.
func (a *Auditor) Handled() int64 {
	return a.handled.Load()
}

// Rejected returns the number of payloads dropped as undecodable.
func (a *Auditor) Rejected() int64 {
	return a.rejected.Load()
}

// RouterConfig configures the consumer router.
type RouterConfig struct {
	CloseTimeout         time.Duration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

// DefaultRouterConfig returns production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     2 * time.Second,
	}
}

// NewRouter builds a Watermill router that feeds bus events to the auditor.
// Middleware order (outer to inner): Recoverer, Retry.
//
// A Watermill router cannot be restarted after Close, so supervised
// services build a fresh one per run.
func NewRouter(cfg RouterConfig, bus *Bus, auditor *Auditor) (*message.Router, error) {
	logger := bus.WatermillLogger()
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      2.0,
		Logger:          logger,
	}
	router.AddMiddleware(retry.Middleware)

	router.AddConsumerHandler("recommendation_audit", bus.Topic(), bus.Subscriber(), auditor.Handle)
	return router, nil
}
