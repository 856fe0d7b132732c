// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package models

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// TravelTimes holds per-mode travel estimates in minutes.
type TravelTimes struct {
	WalkingMin int `json:"walking_min"`
	DrivingMin int `json:"driving_min"`
	TransitMin int `json:"transit_min"`
}

// IsZero reports whether no estimate has been attached.
func (t TravelTimes) IsZero() bool {
	return t.WalkingMin == 0 && t.DrivingMin == 0 && t.TransitMin == 0
}

// Fastest returns the smallest positive estimate.
func (t TravelTimes) Fastest() int {
	best := 0
	for _, v := range []int{t.WalkingMin, t.DrivingMin, t.TransitMin} {
		if v > 0 && (best == 0 || v < best) {
			best = v
		}
	}
	return best
}

// For returns the estimate for mode. The empty mode means walking.
func (t TravelTimes) For(mode TravelMode) int {
	switch mode {
	case TravelDriving:
		return t.DrivingMin
	case TravelTransit:
		return t.TransitMin
	case TravelFastest:
		return t.Fastest()
	default:
		return t.WalkingMin
	}
}

// LocaleHints carries provenance flags.
type LocaleHints struct {
	Chain      bool   `json:"chain"`
	ChainBrand string `json:"chain_brand,omitempty"`
	LocalVibe  bool   `json:"local_vibe"`
}

// ActivityItem is the canonical unit flowing from search to response.
//
// Identity and provider fields are fixed once normalized. Score fields are
// written by the classifier, ranker and evaluator; enrichment fields by the
// review enricher.
type ActivityItem struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Category      Category      `json:"category"`
	PriceLevel    PriceLevel    `json:"price_level"`
	BudgetHint    PriceLevel    `json:"budget_hint"`
	Rating        *float64      `json:"rating,omitempty"`
	ReviewCount   *int          `json:"review_count,omitempty"`
	OpenNow       *bool         `json:"open_now,omitempty"`
	IndoorOutdoor IndoorOutdoor `json:"indoor_outdoor"`
	Address       string        `json:"address,omitempty"`
	PlaceID       string        `json:"place_id,omitempty"`

	Coords         *Coordinates `json:"coords,omitempty"`
	DistanceMeters *int         `json:"distance_meters,omitempty"`
	Travel         TravelTimes  `json:"travel"`

	// TravelTimeMin is the representative estimate for the requested mode.
	TravelTimeMin       int `json:"travel_time_min"`
	ExpectedWaitMin     int `json:"expected_wait_min"`
	ExpectedDurationMin int `json:"expected_duration_min"`
	TotalTimeMin        int `json:"total_time_min"`

	ThemeTags []Theme `json:"theme_tags"`

	TimeFitnessScore float64  `json:"time_fitness_score"`
	TotalScore       float64  `json:"total_score"`
	LLMScore         *float64 `json:"llm_score,omitempty"`
	LLMReason        string   `json:"llm_reason,omitempty"`

	Source      Source      `json:"source"`
	SourceURL   string      `json:"source_url,omitempty"`
	LocaleHints LocaleHints `json:"locale_hints"`

	ReviewSummary  string   `json:"review_summary,omitempty"`
	TopReviews     []string `json:"top_reviews,omitempty"`
	Photos         []string `json:"photos,omitempty"`
	ReasonText     string   `json:"reason_text"`
	DirectionsLink string   `json:"directions_link"`
}

// Clone returns a deep copy of the item.
//
//nolint:gocritic // hugeParam: value receiver keeps Clone usable on map/slice elements
func (it ActivityItem) Clone() ActivityItem {
	out := it
	if it.Rating != nil {
		v := *it.Rating
		out.Rating = &v
	}
	if it.ReviewCount != nil {
		v := *it.ReviewCount
		out.ReviewCount = &v
	}
	if it.OpenNow != nil {
		v := *it.OpenNow
		out.OpenNow = &v
	}
	if it.Coords != nil {
		v := *it.Coords
		out.Coords = &v
	}
	if it.DistanceMeters != nil {
		v := *it.DistanceMeters
		out.DistanceMeters = &v
	}
	if it.LLMScore != nil {
		v := *it.LLMScore
		out.LLMScore = &v
	}
	if it.ThemeTags != nil {
		out.ThemeTags = append(make([]Theme, 0, len(it.ThemeTags)), it.ThemeTags...)
	}
	out.TopReviews = append([]string(nil), it.TopReviews...)
	out.Photos = append([]string(nil), it.Photos...)
	return out
}

// HasTheme reports whether the item is tagged with t.
func (it *ActivityItem) HasTheme(t Theme) bool {
	for _, tag := range it.ThemeTags {
		if tag == t {
			return true
		}
	}
	return false
}

// CloneItems deep-copies a slice of items.
func CloneItems(items []ActivityItem) []ActivityItem {
	if items == nil {
		return nil
	}
	out := make([]ActivityItem, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}
