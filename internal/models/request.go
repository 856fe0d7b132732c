// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package models

import "time"

// Weather is the current weather at the anchor.
type Weather struct {
	Condition string  `json:"condition"`
	TempC     float64 `json:"temp_c"`
}

// IsRain reports whether the condition should favour indoor activities.
func (w Weather) IsRain() bool {
	switch w.Condition {
	case "rain", "rainy", "storm", "drizzle":
		return true
	}
	return false
}

// Context is the request-scoped anchor. It is created once per request.
type Context struct {
	LocationLabel string      `json:"location_label"`
	Coords        Coordinates `json:"coords"`
	Weather       Weather     `json:"weather"`
	Language      string      `json:"language"`
	Timestamp     time.Time   `json:"timestamp"`
}

// ContextOverride partially replaces the default Context.
type ContextOverride struct {
	LocationLabel string           `json:"location_label,omitempty" validate:"max=200"`
	Coords        *CoordsOverride  `json:"coords,omitempty"`
	Weather       *WeatherOverride `json:"weather,omitempty"`
}

// CoordsOverride replaces the anchor coordinates. Both values are required.
type CoordsOverride struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

// WeatherOverride replaces individual weather fields.
type WeatherOverride struct {
	Condition string   `json:"condition,omitempty" validate:"max=40"`
	TempC     *float64 `json:"temp_c,omitempty" validate:"omitempty,gte=-60,lte=60"`
}

// Preferences are the caller's constraints, validated before pipeline entry.
type Preferences struct {
	TimeBucket   TimeBucket `json:"time_bucket" validate:"required,timebucket"`
	BudgetLevel  PriceLevel `json:"budget_level" validate:"required,pricelevel"`
	Themes       []Theme    `json:"themes" validate:"required,min=1,max=4,dive,theme"`
	TravelMode   TravelMode `json:"travel_mode,omitempty" validate:"travelmode"`
	NaturalInput string     `json:"natural_input,omitempty" validate:"max=1000"`
}

// HasTheme reports whether t was requested.
func (p *Preferences) HasTheme(t Theme) bool {
	for _, th := range p.Themes {
		if th == t {
			return true
		}
	}
	return false
}

// RecommendRequest is the body of POST /api/v1/recommend.
type RecommendRequest struct {
	Preferences     Preferences      `json:"preferences" validate:"required"`
	ContextOverride *ContextOverride `json:"context_override,omitempty"`
}

// RecommendMeta describes how a response was produced.
type RecommendMeta struct {
	LatencyMS     int64          `json:"latency_ms"`
	SourceStats   map[string]int `json:"source_stats"`
	FallbackUsed  bool           `json:"fallback_used"`
	LLMEvaluated  bool           `json:"llm_evaluated"`
	LLMEvaluation string         `json:"llm_evaluation,omitempty"`
	ProviderError bool           `json:"provider_error,omitempty"`
}

// RecommendResponse is the data payload of a recommendation.
type RecommendResponse struct {
	SessionID string         `json:"session_id"`
	Context   Context        `json:"context"`
	Items     []ActivityItem `json:"items"`
	Meta      RecommendMeta  `json:"meta"`
}
