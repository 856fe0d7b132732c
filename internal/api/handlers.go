// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sidequest/internal/events"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
	"github.com/tomtom215/sidequest/internal/session"
	"github.com/tomtom215/sidequest/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Recommender runs the recommendation pipeline.
type Recommender interface {
	Recommend(ctx context.Context, req models.RecommendRequest, opts recommend.Options) (*models.RecommendResponse, error)
	DefaultContext() models.Context
}

// EventPublisher receives served recommendations. Publishing must not
// block the response.
type EventPublisher interface {
	PublishAsync(ctx context.Context, ev *events.RecommendationServed)
}

// BreakerReporter exposes a circuit breaker for the health endpoint.
type BreakerReporter interface {
	Name() string
	BreakerState() string
}

// HandlerConfig bundles the Handler dependencies. Events may be nil.
type HandlerConfig struct {
	Recommender    Recommender
	Sessions       *session.Service
	Events         EventPublisher
	Breakers       []BreakerReporter
	Providers      []string
	JudgeEnabled   bool
	Version        string
	RequestTimeout time.Duration
}

// Handler serves the HTTP API.
type Handler struct {
	recommender    Recommender
	sessions       *session.Service
	events         EventPublisher
	breakers       []BreakerReporter
	providers      []string
	judgeEnabled   bool
	version        string
	requestTimeout time.Duration
}

// NewHandler creates a handler.
//
//nolint:gocritic // hugeParam: config copied once at startup
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		recommender:    cfg.Recommender,
		sessions:       cfg.Sessions,
		events:         cfg.Events,
		breakers:       cfg.Breakers,
		providers:      append([]string(nil), cfg.Providers...),
		judgeEnabled:   cfg.JudgeEnabled,
		version:        cfg.Version,
		requestTimeout: cfg.RequestTimeout,
	}
}

// decodeJSON reads a bounded JSON body into dst. Unknown fields are
// rejected. An empty body is allowed when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		if allowEmpty {
			return nil
		}
		return errors.New("request body is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// withTimeout applies the per-request pipeline budget.
func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.requestTimeout)
}

// respondFailure maps domain errors onto status codes and error codes.
func respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		apiErr := verr.ToAPIError()
		respondAPIError(w, r, http.StatusBadRequest, &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		})
		return
	}

	switch {
	case errors.Is(err, session.ErrNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Question session not found", err)
		return
	case errors.Is(err, session.ErrConflict):
		respondError(w, r, http.StatusConflict, ErrCodeConflict, "Question session was modified, retry", err)
		return
	case errors.Is(err, session.ErrCompleted),
		errors.Is(err, session.ErrNotCompleted),
		errors.Is(err, session.ErrQuestionMismatch),
		errors.Is(err, session.ErrEmptyAnswer):
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidInput, err.Error(), err)
		return
	}

	switch recommend.CodeOf(err) {
	case recommend.CodeInvalidInput:
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request", err)
	case recommend.CodeUpstreamTimeout:
		respondError(w, r, http.StatusGatewayTimeout, ErrCodeUpstreamTimeout, "An upstream provider timed out", err)
	case recommend.CodeProviderError:
		respondError(w, r, http.StatusBadGateway, ErrCodeProviderError, "An upstream provider failed", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error", err)
	}
}

// publishServed hands a served response to the event bus, if any.
func (h *Handler) publishServed(ctx context.Context, resp *models.RecommendResponse, requestID string) {
	if h.events == nil {
		return
	}
	h.events.PublishAsync(ctx, events.NewRecommendationServed(resp, requestID))
}
