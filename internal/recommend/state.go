// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package recommend

import (
	"time"

	"github.com/tomtom215/sidequest/internal/models"
)

// SearchTarget hints which kind of provider a query suits.
type SearchTarget string

const (
	TargetMaps SearchTarget = "maps"
	TargetWeb  SearchTarget = "web"
)

// SearchQuery is one generated, provider-agnostic query.
type SearchQuery struct {
	Text    string
	Target  SearchTarget
	RadiusM int
	Locale  string
	Theme   models.Theme
}

// State is the request-scoped value threaded through the stages.
//
// Stages run strictly in registration order on one goroutine, so State
// needs no locking. Stages that fan out must merge their results back
// before returning.
type State struct {
	RequestID string
	SessionID string
	Started   time.Time

	Context models.Context
	Prefs   models.Preferences
	TopN    int

	Queries []SearchQuery

	// Items is the normalized, deduplicated search output.
	Items []models.ActivityItem

	// Candidates holds every item that survived the strict filter, scored
	// and sorted. Pool is its head offered to the evaluator.
	Candidates []models.ActivityItem
	Pool       []models.ActivityItem

	// Results is the current top-N selection.
	Results []models.ActivityItem

	SourceStats    map[string]int
	ProviderFailed bool
	FallbackUsed   bool
	LLMEvaluated   bool
	LLMEvaluation  string
}

// NewState seeds a State for one request.
//
//nolint:gocritic // hugeParam: ctx and prefs are copied in once per request
func NewState(requestID, sessionID string, ctx models.Context, prefs models.Preferences, topN int) *State {
	return &State{
		RequestID:   requestID,
		SessionID:   sessionID,
		Started:     time.Now(),
		Context:     ctx,
		Prefs:       prefs,
		TopN:        topN,
		SourceStats: make(map[string]int),
	}
}

// Has reports whether an item with the same id or normalized name is
// already in Results.
func (s *State) Has(id, normalizedName string, normalize func(string) string) bool {
	for i := range s.Results {
		if s.Results[i].ID == id || normalize(s.Results[i].Name) == normalizedName {
			return true
		}
	}
	return false
}

// Missing returns how many results are still needed to reach TopN.
func (s *State) Missing() int {
	if n := s.TopN - len(s.Results); n > 0 {
		return n
	}
	return 0
}
