// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/tomtom215/sidequest/internal/geo"
	"github.com/tomtom215/sidequest/internal/metrics"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
	"github.com/tomtom215/sidequest/internal/recommend/judge"
	"github.com/tomtom215/sidequest/internal/recommend/timefit"
)

// StageName is the pipeline name of the enricher.
const StageName = "reviews"

// Config bounds the enrichment fan-out.
type Config struct {
	ItemTimeout      time.Duration
	BatchTimeout     time.Duration
	SummarizeTimeout time.Duration
	Concurrency      int
	ShowSnippets     int
}

// DefaultConfig returns the production budgets.
func DefaultConfig() Config {
	return Config{
		ItemTimeout:      3 * time.Second,
		BatchTimeout:     5 * time.Second,
		SummarizeTimeout: 4 * time.Second,
		Concurrency:      4,
		ShowSnippets:     3,
	}
}

// Enricher is the review enrichment stage. Register it with
// RegisterOptionalStage.
type Enricher struct {
	lookup     PlaceLookup
	summarizer judge.Summarizer
	cfg        Config
	logger     zerolog.Logger
}

// NewEnricher creates the stage. A nil lookup skips the network and only
// writes rating-based summaries; a nil summarizer uses the keyword one.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEnricher(lookup PlaceLookup, summarizer judge.Summarizer, cfg Config, logger zerolog.Logger) *Enricher {
	def := DefaultConfig()
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = def.ItemTimeout
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = def.BatchTimeout
	}
	if cfg.SummarizeTimeout <= 0 {
		cfg.SummarizeTimeout = def.SummarizeTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.ShowSnippets <= 0 {
		cfg.ShowSnippets = def.ShowSnippets
	}
	if summarizer == nil {
		summarizer = judge.NewKeywordSummarizer()
	}
	return &Enricher{
		lookup:     lookup,
		summarizer: summarizer,
		cfg:        cfg,
		logger:     logger.With().Str("component", "reviews").Logger(),
	}
}

// Name implements recommend.Stage.
func (e *Enricher) Name() string { return StageName }

// enrichment is the result computed for st.Results[index]. Workers never
// touch State; the stage goroutine merges.
type enrichment struct {
	index   int
	outcome string
	lookup  *Lookup
	summary judge.Summary
}

// Run implements recommend.Stage.
func (e *Enricher) Run(ctx context.Context, st *recommend.State) error {
	if len(st.Results) == 0 {
		return nil
	}
	if e.lookup == nil {
		for i := range st.Results {
			if st.Results[i].Source != models.SourceFallback && st.Results[i].ReviewSummary == "" {
				st.Results[i].ReviewSummary = RatingSummary(&st.Results[i])
			}
		}
		return nil
	}

	batchCtx, cancel := context.WithTimeout(ctx, e.cfg.BatchTimeout)
	defer cancel()

	sem := semaphore.NewWeighted(int64(e.cfg.Concurrency))
	done := make(chan enrichment, len(st.Results))
	launched := 0

	for i := range st.Results {
		it := &st.Results[i]
		if it.Source == models.SourceFallback {
			continue
		}
		if err := sem.Acquire(batchCtx, 1); err != nil {
			break
		}
		launched++
		q := PlaceQuery{
			Name:     it.Name,
			Address:  it.Address,
			Category: it.Category,
			Location: st.Context.LocationLabel,
			Language: st.Context.Language,
		}
		if it.Source == models.SourceSerpAPI {
			q.PlaceID = it.PlaceID
		}
		natural := st.Prefs.NaturalInput
		go func(index int, q PlaceQuery) {
			defer sem.Release(1)
			done <- e.enrichOne(batchCtx, index, &q, natural)
		}(i, q)
	}

	received := 0
	var exceeded map[int]bool
collect:
	for received < launched {
		select {
		case r := <-done:
			received++
			metrics.RecordReviewFetch(r.outcome)
			if r.lookup != nil && !e.apply(st, &r) {
				if exceeded == nil {
					exceeded = make(map[int]bool)
				}
				exceeded[r.index] = true
			}
		case <-batchCtx.Done():
			break collect
		}
	}
	if len(exceeded) > 0 {
		st.Results = dropIndices(st.Results, exceeded)
		e.logger.Debug().
			Str("request_id", st.RequestID).
			Int("dropped", len(exceeded)).
			Msg("looked-up positions broke the strict time bound")
	}

	if pending := launched - received; pending > 0 {
		for i := 0; i < pending; i++ {
			metrics.RecordReviewFetch("deadline")
		}
		e.logger.Warn().
			Str("request_id", st.RequestID).
			Int("pending", pending).
			Dur("budget", e.cfg.BatchTimeout).
			Msg("review enrichment deadline reached, returning items unenriched")
	}
	return nil
}

// enrichOne fetches and summarizes reviews for one item. A nil lookup in
// the result means nothing should change. Metrics are recorded by Run so
// results that miss the batch deadline are counted once.
func (e *Enricher) enrichOne(ctx context.Context, index int, q *PlaceQuery, natural string) enrichment {
	out := enrichment{index: index}

	itemCtx, cancel := context.WithTimeout(ctx, e.cfg.ItemTimeout)
	lookup, err := e.lookup.FindReviews(itemCtx, *q)
	cancel()
	if err != nil {
		out.outcome = "error"
		if errors.Is(err, context.DeadlineExceeded) || recommend.CodeOf(err) == recommend.CodeUpstreamTimeout {
			out.outcome = "deadline"
		}
		e.logger.Debug().Err(err).Str("place", q.Name).Msg("review lookup failed")
		return out
	}
	if lookup == nil {
		lookup = &Lookup{}
	}
	out.lookup = lookup

	if len(lookup.Reviews) == 0 {
		out.outcome = "empty"
		return out
	}
	out.outcome = "ok"

	sumCtx, cancel := context.WithTimeout(ctx, e.cfg.SummarizeTimeout)
	defer cancel()
	summary, err := e.summarizer.Summarize(sumCtx, q.Name, lookup.Reviews, natural)
	if err != nil {
		e.logger.Debug().Err(err).Str("place", q.Name).Msg("review summary failed")
		return out
	}
	out.summary = summary
	return out
}

// apply merges r into its result. Coordinates found by the lookup refresh
// distance, time fields and the directions link; the ranking order and
// scores stay as the ranker left them. It returns false when the refreshed
// time breaks the strict bucket bound and the item must be dropped.
func (e *Enricher) apply(st *recommend.State, r *enrichment) bool {
	it := &st.Results[r.index]
	lookup := r.lookup

	if it.PlaceID == "" {
		it.PlaceID = lookup.PlaceID
	}
	if len(it.Photos) == 0 && len(lookup.Photos) > 0 {
		it.Photos = append([]string(nil), lookup.Photos...)
	}
	refreshed := false
	if it.Coords == nil && lookup.Coords != nil {
		refreshed = true
		c := *lookup.Coords
		it.Coords = &c
		d := geo.DistanceMeters(st.Context.Coords, c)
		it.DistanceMeters = &d
		it.Travel = geo.EstimateTravel(d)
		timefit.Annotate(it, st.Prefs.TimeBucket, st.Prefs.TravelMode)
		it.DirectionsLink = geo.DirectionsLink(st.Context.Coords, it.Coords, it.Name, "")
	}

	if n := len(lookup.Reviews); n > 0 {
		if n > e.cfg.ShowSnippets {
			n = e.cfg.ShowSnippets
		}
		it.TopReviews = append([]string(nil), lookup.Reviews[:n]...)
	}

	switch {
	case r.summary.Text != "":
		it.ReviewSummary = r.summary.Text
	case it.ReviewSummary == "":
		it.ReviewSummary = RatingSummary(it)
	}
	if r.summary.PriceLevel != "" && r.summary.PriceLevel != models.PriceUnknown {
		it.PriceLevel = r.summary.PriceLevel
		it.BudgetHint = r.summary.PriceLevel
	}
	return !refreshed || !timefit.Exceeds(it, st.Prefs.TimeBucket)
}

func dropIndices(items []models.ActivityItem, drop map[int]bool) []models.ActivityItem {
	kept := items[:0]
	for i := range items {
		if !drop[i] {
			kept = append(kept, items[i])
		}
	}
	return kept
}

// RatingSummary describes an item from its rating alone.
func RatingSummary(it *models.ActivityItem) string {
	if it.Rating == nil {
		return "No review information yet."
	}
	r := *it.Rating
	var verdict string
	switch {
	case r >= 4.0:
		verdict = "highly rated"
	case r >= 3.5:
		verdict = "well reviewed"
	default:
		verdict = "check details before visiting"
	}
	if it.ReviewCount != nil && *it.ReviewCount > 0 {
		return fmt.Sprintf("Rated %.1f/5 across %d reviews, %s.", r, *it.ReviewCount, verdict)
	}
	return fmt.Sprintf("Rated %.1f/5, %s.", r, verdict)
}
