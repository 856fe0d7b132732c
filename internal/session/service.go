// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/metrics"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/validation"
)

// Service runs question-session transitions against a Store.
type Service struct {
	store  Store
	now    func() time.Time
	newID  func() string
	logger zerolog.Logger
}

// NewService creates a service over store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger.With().Str("component", "questions").Logger(),
	}
}

// Start validates seed and stores a new session for the anchor ctx.
// Validation failures are returned as *validation.RequestValidationError.
//
//nolint:gocritic // hugeParam: anchor is read-only
func (s *Service) Start(ctx context.Context, seed Seed, anchor models.Context) (*Record, error) {
	if verr := validation.ValidateStruct(&seed); verr != nil {
		return nil, verr
	}
	if seed.TimeBucket != "" {
		bucket, err := models.ParseTimeBucket(string(seed.TimeBucket))
		if err != nil {
			return nil, err
		}
		seed.TimeBucket = bucket
	}
	seed.Themes = append([]models.Theme(nil), seed.Themes...)

	now := s.now().UTC()
	rec := &Record{
		ID:        s.newID(),
		Questions: DefaultQuestions(&seed, anchor, s.newID),
		Seed:      seed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create question session: %w", err)
	}

	metrics.QuestionSessions.WithLabelValues("start").Inc()
	s.logger.Debug().
		Str("question_session", rec.ID).
		Int("questions", len(rec.Questions)).
		Msg("question session started")
	return rec, nil
}

// Get returns the current record for id.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	return s.store.Get(ctx, id)
}

// Answer records answer for questionID and advances the session.
func (s *Service) Answer(ctx context.Context, id, questionID, answer string) (*Record, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := cur.Answer(questionID, answer, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.store.Replace(ctx, next); err != nil {
		return nil, err
	}

	metrics.QuestionSessions.WithLabelValues("answer").Inc()
	if next.Completed() {
		metrics.QuestionSessions.WithLabelValues("complete").Inc()
	}
	return next, nil
}

// Back moves the session to the previous question. At the first question
// the record is returned unchanged.
func (s *Service) Back(ctx context.Context, id string) (*Record, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, moved := cur.Back(s.now().UTC())
	if !moved {
		return cur, nil
	}
	if err := s.store.Replace(ctx, next); err != nil {
		return nil, err
	}
	metrics.QuestionSessions.WithLabelValues("back").Inc()
	return next, nil
}

// Preferences derives recommendation preferences from a completed session.
func (s *Service) Preferences(ctx context.Context, id string) (models.Preferences, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Preferences{}, err
	}
	prefs, err := Preferences(rec)
	if err != nil {
		return models.Preferences{}, err
	}
	metrics.QuestionSessions.WithLabelValues("recommend").Inc()
	return prefs, nil
}
