// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/sidequest/internal/logging"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

// Recommend handles POST /api/v1/recommend.
//
// The body is a models.RecommendRequest. Validation failures return 400
// before any provider is called; a successful response always carries
// the configured number of items.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RecommendRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidInput, "Request body must be a JSON recommendation request", err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	requestID := logging.RequestIDFromContext(r.Context())
	resp, err := h.recommender.Recommend(ctx, req, recommend.Options{RequestID: requestID})
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	h.publishServed(r.Context(), resp, requestID)
	respondSuccess(w, r, http.StatusOK, resp, start)
}

// Context handles GET /api/v1/context and returns the default anchor.
func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, h.recommender.DefaultContext(), time.Now())
}

// Health handles GET /api/v1/health. Status is "degraded" while any
// provider breaker is open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := "healthy"
	breakers := make(map[string]string, len(h.breakers))
	for _, b := range h.breakers {
		state := b.BreakerState()
		breakers[b.Name()] = state
		if state == "open" {
			status = "degraded"
		}
	}

	respondSuccess(w, r, http.StatusOK, models.HealthResponse{
		Status:    status,
		Version:   h.version,
		Time:      start.UTC(),
		Breakers:  breakers,
		Providers: h.providers,
		Judge:     h.judgeEnabled,
	}, start)
}
