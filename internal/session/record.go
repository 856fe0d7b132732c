// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package session

import (
	"errors"
	"strings"
	"time"

	"github.com/tomtom215/sidequest/internal/models"
)

// Session errors.
var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("question session not found")

	// ErrCompleted is returned when answering a finished session.
	ErrCompleted = errors.New("question session is already completed")

	// ErrNotCompleted is returned when preferences are requested before
	// every question has been answered.
	ErrNotCompleted = errors.New("question session is not completed")

	// ErrQuestionMismatch is returned when an answer names a question other
	// than the current one.
	ErrQuestionMismatch = errors.New("answer does not match the current question")

	// ErrEmptyAnswer is returned for blank answers.
	ErrEmptyAnswer = errors.New("answer is empty")

	// ErrConflict is returned when a record changed between read and write.
	ErrConflict = errors.New("question session was modified concurrently")
)

// Question is one step of the flow. Order is 1-based.
type Question struct {
	ID     string `json:"id"`
	Text   string `json:"question"`
	Order  int    `json:"order"`
	Answer string `json:"answer,omitempty"`
}

// Seed holds answers the traveler gave before the flow started.
type Seed struct {
	TimeBucket  models.TimeBucket `json:"time_bucket,omitempty" validate:"omitempty,timebucket"`
	BudgetLevel models.PriceLevel `json:"budget_level,omitempty" validate:"omitempty,pricelevel"`
	Themes      []models.Theme    `json:"themes,omitempty" validate:"omitempty,max=4,dive,theme"`
}

// Record is an immutable snapshot of a question session.
type Record struct {
	ID        string     `json:"session_id"`
	Questions []Question `json:"questions"`
	Step      int        `json:"step"`
	Seed      Seed       `json:"seed"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Completed reports whether every question has been answered.
func (r *Record) Completed() bool {
	return r.Step >= len(r.Questions)
}

// Current returns the question awaiting an answer, or nil when completed.
func (r *Record) Current() *Question {
	if r.Completed() {
		return nil
	}
	q := r.Questions[r.Step]
	return &q
}

// Progress returns the share of answered questions in percent.
func (r *Record) Progress() int {
	if len(r.Questions) == 0 || r.Completed() {
		return 100
	}
	return r.Step * 100 / len(r.Questions)
}

// CanGoBack reports whether Back would move the step pointer.
func (r *Record) CanGoBack() bool {
	return r.Step > 0
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	out := *r
	out.Questions = append([]Question(nil), r.Questions...)
	out.Seed.Themes = append([]models.Theme(nil), r.Seed.Themes...)
	return &out
}

// Answer returns the record that follows answering the current question.
// questionID must name the current question.
func (r *Record) Answer(questionID, answer string, now time.Time) (*Record, error) {
	if r.Completed() {
		return nil, ErrCompleted
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrEmptyAnswer
	}
	if r.Questions[r.Step].ID != questionID {
		return nil, ErrQuestionMismatch
	}

	next := r.Clone()
	next.Questions[r.Step].Answer = answer
	next.Step++
	next.Version++
	next.UpdatedAt = now
	return next, nil
}

// Back returns the record with the step pointer moved to the previous
// question. Answers are kept so the client can prefill them. ok is false
// when the session is already at the first question.
func (r *Record) Back(now time.Time) (next *Record, ok bool) {
	if !r.CanGoBack() {
		return r, false
	}
	next = r.Clone()
	next.Step--
	next.Version++
	next.UpdatedAt = now
	return next, true
}

// View is the client-facing state of a session.
type View struct {
	SessionID       string    `json:"session_id"`
	CurrentQuestion *Question `json:"current_question"`
	IsCompleted     bool      `json:"is_completed"`
	Progress        int       `json:"progress"`
	CanGoBack       bool      `json:"can_go_back"`
	TotalQuestions  int       `json:"total_questions"`
}

// View returns the client-facing state.
func (r *Record) View() View {
	return View{
		SessionID:       r.ID,
		CurrentQuestion: r.Current(),
		IsCompleted:     r.Completed(),
		Progress:        r.Progress(),
		CanGoBack:       r.CanGoBack(),
		TotalQuestions:  len(r.Questions),
	}
}
