// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

// Package pipeline assembles the recommendation engine from its stages.
//
// Stage order is fixed:
//
//	query -> search -> timefit -> rank -> evaluate* -> reviews* -> fallback
//
// Stages marked * are optional: their failures are logged and the request
// continues with the state they left. Fallback runs last so it can top up
// whatever the earlier stages produced.
package pipeline

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/geo"
	"github.com/tomtom215/sidequest/internal/recommend"
	"github.com/tomtom215/sidequest/internal/recommend/fallback"
	"github.com/tomtom215/sidequest/internal/recommend/judge"
	"github.com/tomtom215/sidequest/internal/recommend/query"
	"github.com/tomtom215/sidequest/internal/recommend/ranker"
	"github.com/tomtom215/sidequest/internal/recommend/reviews"
	"github.com/tomtom215/sidequest/internal/recommend/search"
	"github.com/tomtom215/sidequest/internal/recommend/timefit"
)

// Options holds the per-stage settings.
type Options struct {
	Engine          *recommend.Config
	Search          search.AggregatorConfig
	Ranker          ranker.Config
	EvaluateTimeout time.Duration
	Reviews         reviews.Config

	// ReviewsDisabled skips the enricher entirely.
	ReviewsDisabled bool
}

// DefaultOptions returns production settings.
func DefaultOptions() Options {
	return Options{
		Engine:          recommend.DefaultConfig(),
		Search:          search.DefaultAggregatorConfig(),
		Ranker:          ranker.DefaultConfig(),
		EvaluateTimeout: 6 * time.Second,
		Reviews:         reviews.DefaultConfig(),
	}
}

// Deps are the collaborators behind the stages. Primary and Catalog are
// required; a nil Judge disables the evaluator, a nil Lookup limits the
// enricher to rating summaries and a nil Summarizer uses keywords.
type Deps struct {
	Primary    []search.Provider
	Secondary  []search.Provider
	Judge      judge.Judge
	Summarizer judge.Summarizer
	Lookup     reviews.PlaceLookup
	Catalog    *fallback.Catalog
}

// New builds an engine with every stage registered.
//
//nolint:gocritic // hugeParam: options are read once at startup; logger by value is acceptable for zerolog
func New(opts Options, contexts *recommend.ContextProvider, deps Deps, logger zerolog.Logger) (*recommend.Engine, error) {
	if opts.Engine == nil {
		opts.Engine = recommend.DefaultConfig()
	}
	if deps.Catalog.Len() == 0 {
		return nil, fmt.Errorf("pipeline: %w", recommend.ErrEmptyCatalog)
	}
	// Ranker and engine must agree on N.
	opts.Ranker.TopN = opts.Engine.TopN
	if opts.Ranker.PoolSize < opts.Ranker.TopN {
		opts.Ranker.PoolSize = opts.Ranker.TopN
	}

	engine, err := recommend.NewEngine(opts.Engine, contexts, logger)
	if err != nil {
		return nil, err
	}

	normalizer := search.NewNormalizer(search.NewClassifier(), geo.DefaultGazetteer(), geo.DefaultRegionTable(), opts.Engine.City)
	agg, err := search.NewAggregator(opts.Search, normalizer, deps.Primary, deps.Secondary, logger)
	if err != nil {
		return nil, err
	}
	rank, err := ranker.New(opts.Ranker, logger)
	if err != nil {
		return nil, err
	}

	engine.RegisterStage(query.NewGenerator())
	engine.RegisterStage(agg)
	engine.RegisterStage(timefit.NewClassifier())
	engine.RegisterStage(rank)
	if deps.Judge != nil {
		engine.RegisterOptionalStage(judge.NewEvaluator(deps.Judge, opts.EvaluateTimeout, logger))
	}
	if !opts.ReviewsDisabled {
		engine.RegisterOptionalStage(reviews.NewEnricher(deps.Lookup, deps.Summarizer, opts.Reviews, logger))
	}
	engine.RegisterStage(fallback.NewGenerator(deps.Catalog, opts.Engine.City, logger))

	return engine, nil
}
