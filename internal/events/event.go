// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/sidequest/internal/models"
)

// DefaultTopic is the subject RecommendationServed events are published to.
const DefaultTopic = "sidequest.recommendations.served"

// ErrInvalidEvent is returned when a payload fails to decode or is missing
// required fields.
var ErrInvalidEvent = errors.New("invalid event")

// ServedItem identifies one recommended item.
type ServedItem struct {
	ID       string          `json:"id"`
	Category models.Category `json:"category"`
	Source   models.Source   `json:"source"`
}

// RecommendationServed records one successful recommendation response.
type RecommendationServed struct {
	EventID      string         `json:"event_id"`
	SessionID    string         `json:"session_id"`
	RequestID    string         `json:"request_id,omitempty"`
	Items        []ServedItem   `json:"items"`
	SourceStats  map[string]int `json:"source_stats"`
	FallbackUsed bool           `json:"fallback_used"`
	LLMEvaluated bool           `json:"llm_evaluated"`
	LatencyMS    int64          `json:"latency_ms"`
	ServedAt     time.Time      `json:"served_at"`
}

// NewRecommendationServed builds the event for resp.
func NewRecommendationServed(resp *models.RecommendResponse, requestID string) *RecommendationServed {
	items := make([]ServedItem, len(resp.Items))
	for i := range resp.Items {
		it := &resp.Items[i]
		items[i] = ServedItem{ID: it.ID, Category: it.Category, Source: it.Source}
	}
	stats := make(map[string]int, len(resp.Meta.SourceStats))
	for k, v := range resp.Meta.SourceStats {
		stats[k] = v
	}
	return &RecommendationServed{
		EventID:      uuid.NewString(),
		SessionID:    resp.SessionID,
		RequestID:    requestID,
		Items:        items,
		SourceStats:  stats,
		FallbackUsed: resp.Meta.FallbackUsed,
		LLMEvaluated: resp.Meta.LLMEvaluated,
		LatencyMS:    resp.Meta.LatencyMS,
		ServedAt:     time.Now().UTC(),
	}
}

// Marshal encodes the event as JSON.
func (e *RecommendationServed) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", e.EventID, err)
	}
	return data, nil
}

// DecodeRecommendationServed parses a payload produced by Marshal.
func DecodeRecommendationServed(data []byte) (*RecommendationServed, error) {
	var e RecommendationServed
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if e.EventID == "" || e.SessionID == "" {
		return nil, fmt.Errorf("%w: missing event_id or session_id", ErrInvalidEvent)
	}
	return &e, nil
}
