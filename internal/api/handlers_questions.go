// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sidequest/internal/logging"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
	"github.com/tomtom215/sidequest/internal/session"
)

// AnswerRequest is the body of POST /api/v1/questions/answer.
type AnswerRequest struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// QuestionRecommendRequest is the optional body of
// POST /api/v1/questions/{id}/recommend.
type QuestionRecommendRequest struct {
	ContextOverride *models.ContextOverride `json:"context_override,omitempty"`
}

// StartQuestions handles POST /api/v1/questions/start. Every seed field is
// optional; an empty body starts an unseeded session.
func (h *Handler) StartQuestions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var seed session.Seed
	if err := decodeJSON(w, r, &seed, true); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidInput, "Request body must be a JSON seed", err)
		return
	}

	rec, err := h.sessions.Start(r.Context(), seed, h.recommender.DefaultContext())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, rec.View(), start)
}

// AnswerQuestion handles POST /api/v1/questions/answer.
func (h *Handler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AnswerRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidInput, "Request body must be a JSON answer", err)
		return
	}
	if req.SessionID == "" || req.QuestionID == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidInput, "session_id and question_id are required", nil)
		return
	}

	rec, err := h.sessions.Answer(r.Context(), req.SessionID, req.QuestionID, req.Answer)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, rec.View(), start)
}

// GetQuestions handles GET /api/v1/questions/{id}.
func (h *Handler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	rec, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, rec.View(), start)
}

// BackQuestion handles POST /api/v1/questions/{id}/back. At the first
// question the session is returned unchanged.
func (h *Handler) BackQuestion(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	rec, err := h.sessions.Back(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, rec.View(), start)
}

// RecommendFromQuestions handles POST /api/v1/questions/{id}/recommend.
// The session must be completed; its answers become the preferences and
// its id becomes the response session id.
func (h *Handler) RecommendFromQuestions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	var body QuestionRecommendRequest
	if err := decodeJSON(w, r, &body, true); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidInput, "Request body must be a JSON object", err)
		return
	}

	prefs, err := h.sessions.Preferences(r.Context(), id)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	requestID := logging.RequestIDFromContext(r.Context())
	resp, err := h.recommender.Recommend(ctx, models.RecommendRequest{
		Preferences:     prefs,
		ContextOverride: body.ContextOverride,
	}, recommend.Options{RequestID: requestID, SessionID: id})
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	h.publishServed(r.Context(), resp, requestID)
	respondSuccess(w, r, http.StatusOK, resp, start)
}
