// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package judge

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

// StrictCap is the highest score a time-violating candidate may receive
// in the strict bucket.
const StrictCap = 70

// ErrMalformed marks a judge response that could not be used.
var ErrMalformed = errors.New("malformed judge response")

// Candidate is the judge's view of one pooled item. Index is 1-based.
type Candidate struct {
	Index        int                  `json:"index"`
	Name         string               `json:"name"`
	Category     models.Category      `json:"category"`
	Rating       *float64             `json:"rating,omitempty"`
	ReviewCount  *int                 `json:"review_count,omitempty"`
	OpenNow      *bool                `json:"open_now,omitempty"`
	Setting      models.IndoorOutdoor `json:"setting"`
	TotalTimeMin int                  `json:"total_time_min"`
	PriceLevel   models.PriceLevel    `json:"price_level"`
	Themes       []models.Theme       `json:"themes"`
	LocalVibe    bool                 `json:"local_vibe"`
	Chain        bool                 `json:"chain"`
}

// Constraints are the traveler's stated limits, time first.
type Constraints struct {
	N            int
	TimeBucket   models.TimeBucket
	Budget       models.PriceLevel
	Themes       []models.Theme
	Weather      models.Weather
	Location     string
	NaturalInput string
}

// Selection is one chosen candidate. Index is 0-based into the pool.
type Selection struct {
	Index  int
	Score  float64
	Reason string
	Pitch  string
}

// Evaluation is a judge response. Selection indices are 0-based.
type Evaluation struct {
	Selections []Selection
	Summary    string
}

// Validate checks that e selects exactly n distinct pool items with
// scores in [0,100].
func (e *Evaluation) Validate(poolSize, n int) error {
	if e == nil {
		return fmt.Errorf("%w: no evaluation", ErrMalformed)
	}
	if len(e.Selections) != n {
		return fmt.Errorf("%w: got %d selections, want %d", ErrMalformed, len(e.Selections), n)
	}
	seen := make(map[int]bool, n)
	for _, sel := range e.Selections {
		if sel.Index < 0 || sel.Index >= poolSize {
			return fmt.Errorf("%w: index %d outside pool of %d", ErrMalformed, sel.Index, poolSize)
		}
		if seen[sel.Index] {
			return fmt.Errorf("%w: index %d selected twice", ErrMalformed, sel.Index)
		}
		seen[sel.Index] = true
		if sel.Score < 0 || sel.Score > 100 {
			return fmt.Errorf("%w: score %v out of range", ErrMalformed, sel.Score)
		}
	}
	return nil
}

// Summary is a condensed review digest.
type Summary struct {
	Text       string
	PriceLevel models.PriceLevel
}

// Judge re-ranks a candidate pool.
type Judge interface {
	Evaluate(ctx context.Context, candidates []Candidate, c Constraints) (*Evaluation, error)
}

// Summarizer condenses review snippets for one place.
type Summarizer interface {
	Summarize(ctx context.Context, place string, reviews []string, naturalInput string) (Summary, error)
}

// CandidatesFrom converts pooled items into judge candidates.
func CandidatesFrom(items []models.ActivityItem) []Candidate {
	out := make([]Candidate, len(items))
	for i := range items {
		it := &items[i]
		out[i] = Candidate{
			Index:        i + 1,
			Name:         it.Name,
			Category:     it.Category,
			Rating:       it.Rating,
			ReviewCount:  it.ReviewCount,
			OpenNow:      it.OpenNow,
			Setting:      it.IndoorOutdoor,
			TotalTimeMin: it.TotalTimeMin,
			PriceLevel:   it.PriceLevel,
			Themes:       it.ThemeTags,
			LocalVibe:    it.LocaleHints.LocalVibe,
			Chain:        it.LocaleHints.Chain,
		}
	}
	return out
}

// ConstraintsFrom derives judge constraints from the request state.
func ConstraintsFrom(st *recommend.State, n int) Constraints {
	return Constraints{
		N:            n,
		TimeBucket:   st.Prefs.TimeBucket,
		Budget:       st.Prefs.BudgetLevel,
		Themes:       st.Prefs.Themes,
		Weather:      st.Context.Weather,
		Location:     st.Context.LocationLabel,
		NaturalInput: st.Prefs.NaturalInput,
	}
}

// outcome maps a judge error onto the metrics outcome label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "applied"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case recommend.CodeOf(err) == recommend.CodeUpstreamTimeout:
		return "timeout"
	default:
		return "error"
	}
}
