// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/metrics"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

// StageName is the pipeline name of the search stage.
const StageName = "search"

// AggregatorConfig holds the search budgets.
type AggregatorConfig struct {
	PrimaryTimeout   time.Duration
	SecondaryTimeout time.Duration
	TotalTimeout     time.Duration

	// MinPrimaryItems is the raw primary result count below which the
	// secondary providers are consulted.
	MinPrimaryItems int
	MaxItems        int

	// Location is appended to provider queries, e.g. "Barcelona".
	Location string
}

// DefaultAggregatorConfig returns the production budgets.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		PrimaryTimeout:   1800 * time.Millisecond,
		SecondaryTimeout: 1200 * time.Millisecond,
		TotalTimeout:     2400 * time.Millisecond,
		MinPrimaryItems:  5,
		MaxItems:         15,
		Location:         "Barcelona",
	}
}

// Validate checks the budgets.
func (c *AggregatorConfig) Validate() error {
	if c.PrimaryTimeout <= 0 || c.SecondaryTimeout <= 0 {
		return fmt.Errorf("provider timeouts must be positive")
	}
	if c.TotalTimeout < c.PrimaryTimeout {
		return fmt.Errorf("total timeout %v is shorter than primary timeout %v", c.TotalTimeout, c.PrimaryTimeout)
	}
	if c.MaxItems < 1 {
		return fmt.Errorf("max items must be at least 1, got %d", c.MaxItems)
	}
	return nil
}

// Aggregator is the search stage. It fans queries out to the primary
// providers, consults the secondary providers when the primary came back
// thin or failed, and normalizes everything that landed in time.
type Aggregator struct {
	cfg        AggregatorConfig
	primary    []Provider
	secondary  []Provider
	normalizer *Normalizer
	logger     zerolog.Logger
}

// NewAggregator creates the search stage. At least one primary provider
// is required.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAggregator(cfg AggregatorConfig, normalizer *Normalizer, primary, secondary []Provider, logger zerolog.Logger) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}
	if len(primary) == 0 {
		return nil, errors.New("at least one primary search provider is required")
	}
	if normalizer == nil {
		normalizer = NewNormalizer(nil, nil, nil, cfg.Location)
	}
	return &Aggregator{
		cfg:        cfg,
		primary:    primary,
		secondary:  secondary,
		normalizer: normalizer,
		logger:     logger.With().Str("component", "search").Logger(),
	}, nil
}

// Name implements recommend.Stage.
func (a *Aggregator) Name() string { return StageName }

// callResult is one provider answer for one query.
type callResult struct {
	slot     int
	provider string
	places   []Place
	err      error
}

// Run implements recommend.Stage. Provider failures are recorded on the
// state, never returned.
func (a *Aggregator) Run(ctx context.Context, st *recommend.State) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.TotalTimeout)
	defer cancel()

	mapsQ, webQ := splitQueries(st.Queries)
	if len(mapsQ) == 0 {
		mapsQ = st.Queries
	}

	results, failed := a.fanOut(ctx, a.primary, mapsQ, a.cfg.PrimaryTimeout, st)
	raw := countPlaces(results)

	if len(a.secondary) > 0 && (raw < a.cfg.MinPrimaryItems || failed) {
		if len(webQ) == 0 {
			webQ = st.Queries
		}
		budget := a.cfg.SecondaryTimeout
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); remaining < budget {
				budget = remaining
			}
		}
		if budget > 0 {
			more, secFailed := a.fanOut(ctx, a.secondary, webQ, budget, st)
			results = append(results, more...)
			failed = failed || secFailed
		} else {
			a.logger.Debug().Msg("no budget left for secondary providers")
		}
	}

	items := make([]models.ActivityItem, 0, countPlaces(results))
	for _, r := range results {
		for i := range r.places {
			items = append(items, a.normalizer.Normalize(r.places[i], st.Context))
		}
	}
	items = Dedupe(items)
	if len(items) > a.cfg.MaxItems {
		items = items[:a.cfg.MaxItems]
	}

	contributed := make(map[models.Source]int)
	for i := range items {
		contributed[items[i].Source]++
	}
	for src, n := range contributed {
		metrics.RecordProviderItems(string(src), n)
	}

	st.Items = items
	st.ProviderFailed = st.ProviderFailed || failed

	a.logger.Debug().
		Str("request_id", st.RequestID).
		Int("queries", len(st.Queries)).
		Int("items", len(items)).
		Interface("source_stats", st.SourceStats).
		Bool("provider_failed", failed).
		Msg("search complete")
	return nil
}

// fanOut runs every provider against every query concurrently and waits
// at most budget. Calls still running at the deadline are abandoned;
// their goroutines finish into a buffered channel nobody reads. The
// returned results are in (provider, query) order.
func (a *Aggregator) fanOut(ctx context.Context, providers []Provider, queries []recommend.SearchQuery, budget time.Duration, st *recommend.State) ([]callResult, bool) {
	n := len(providers) * len(queries)
	if n == 0 {
		return nil, false
	}

	callCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	ch := make(chan callResult, n)
	for pi, p := range providers {
		if _, ok := st.SourceStats[p.Name()]; !ok {
			st.SourceStats[p.Name()] = 0
		}
		for qi := range queries {
			slot := pi*len(queries) + qi
			q := Query{SearchQuery: queries[qi], Anchor: st.Context.Coords, Location: a.cfg.Location}
			go func(p Provider, slot int, q Query) {
				places, err := p.Search(callCtx, q)
				ch <- callResult{slot: slot, provider: p.Name(), places: places, err: err}
			}(p, slot, q)
		}
	}

	slots := make([]*callResult, n)
	received := 0
wait:
	for received < n {
		select {
		case r := <-ch:
			slots[r.slot] = &r
			received++
		case <-callCtx.Done():
			break wait
		}
	}

	failed := received < n
	out := make([]callResult, 0, received)
	for _, r := range slots {
		if r == nil {
			continue
		}
		if r.err != nil {
			failed = true
			a.logger.Warn().Err(r.err).
				Str("provider", r.provider).
				Str("code", string(recommend.CodeOf(r.err))).
				Msg("search provider call failed")
			continue
		}
		st.SourceStats[r.provider] += len(r.places)
		out = append(out, *r)
	}
	if received < n {
		a.logger.Warn().Int("pending", n-received).Dur("budget", budget).Msg("search budget expired, dropping stragglers")
	}
	return out, failed
}

func splitQueries(qs []recommend.SearchQuery) (maps, web []recommend.SearchQuery) {
	for _, q := range qs {
		if q.Target == recommend.TargetWeb {
			web = append(web, q)
			continue
		}
		maps = append(maps, q)
	}
	return maps, web
}

func countPlaces(results []callResult) int {
	n := 0
	for _, r := range results {
		n += len(r.places)
	}
	return n
}
