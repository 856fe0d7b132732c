// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/api"
	"github.com/tomtom215/sidequest/internal/cache"
	"github.com/tomtom215/sidequest/internal/config"
	"github.com/tomtom215/sidequest/internal/recommend"
	"github.com/tomtom215/sidequest/internal/recommend/fallback"
	"github.com/tomtom215/sidequest/internal/recommend/judge"
	"github.com/tomtom215/sidequest/internal/recommend/pipeline"
	"github.com/tomtom215/sidequest/internal/recommend/reviews"
	"github.com/tomtom215/sidequest/internal/recommend/search"
)

// outboundTimeout caps any single upstream HTTP call. Stage budgets are
// tighter and come from request contexts.
const outboundTimeout = 15 * time.Second

// providerSet is the search side of the engine plus what health reports.
type providerSet struct {
	primary   []search.Provider
	secondary []search.Provider
	breakers  []api.BreakerReporter
	names     []string
}

// buildProviders selects search providers from configuration. Mock mode
// has a single unguarded primary and no secondaries; every real provider
// shares one result cache behind its own limiter and breaker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func buildProviders(cfg *config.Config, client *http.Client, shared *cache.Cache, logger zerolog.Logger) providerSet {
	var set providerSet
	if cfg.UseMockSearch() {
		mock := search.NewMock()
		set.primary = []search.Provider{mock}
		set.names = []string{mock.Name()}
		return set
	}

	opts := search.GuardOptions{
		Cache:          shared,
		RatePerSecond:  cfg.Search.RatePerSecond,
		RateBurst:      cfg.Search.RateBurst,
		BreakerTimeout: cfg.Search.BreakerTimeout,
		CallTimeout:    cfg.Search.TotalTimeout,
	}
	add := func(p search.Provider, primary bool) {
		g := search.Guard(p, opts, logger)
		if primary {
			set.primary = append(set.primary, g)
		} else {
			set.secondary = append(set.secondary, g)
		}
		set.breakers = append(set.breakers, g)
		set.names = append(set.names, g.Name())
	}

	add(search.NewSerpAPI(cfg.Search.SerpAPIBaseURL, cfg.Search.SerpAPIKey, client), true)
	if cfg.Search.BingAPIKey != "" {
		add(search.NewBing(cfg.Search.BingBaseURL, cfg.Search.BingAPIKey, client), false)
	}
	if cfg.Search.DuckDuckGo {
		add(search.NewDuckDuckGo(cfg.Search.DuckDuckGoURL, cfg.Search.UserAgent, client), false)
	}
	return set
}

// pipelineOptions maps configuration onto the stage settings.
func pipelineOptions(cfg *config.Config) pipeline.Options {
	opts := pipeline.DefaultOptions()

	opts.Engine.TopN = cfg.Ranker.TopN
	opts.Engine.City = cfg.Anchor.City

	opts.Search.PrimaryTimeout = cfg.Search.PrimaryTimeout
	opts.Search.SecondaryTimeout = cfg.Search.SecondaryTimeout
	opts.Search.TotalTimeout = cfg.Search.TotalTimeout
	opts.Search.MinPrimaryItems = cfg.Search.MinPrimaryItems
	opts.Search.MaxItems = cfg.Search.MaxItems
	opts.Search.Location = cfg.Anchor.City

	opts.Ranker.TopN = cfg.Ranker.TopN
	opts.Ranker.CategoryCap = cfg.Ranker.CategoryCap
	opts.Ranker.PoolSize = cfg.Ranker.PoolSize

	opts.EvaluateTimeout = cfg.Judge.EvaluateTimeout

	opts.Reviews.ItemTimeout = cfg.Reviews.ItemTimeout
	opts.Reviews.BatchTimeout = cfg.Reviews.BatchTimeout
	opts.Reviews.SummarizeTimeout = cfg.Judge.SummarizeTimeout
	opts.Reviews.Concurrency = cfg.Reviews.Concurrency
	opts.Reviews.ShowSnippets = cfg.Reviews.ShowSnippets
	opts.ReviewsDisabled = !cfg.Reviews.Enabled

	return opts
}

// engineParts is the assembled recommendation engine and its surroundings.
type engineParts struct {
	engine    *recommend.Engine
	cache     *cache.Cache
	providers providerSet
	judge     bool
}

// buildEngine wires providers, the judge, review lookup and the fallback
// catalog into a recommendation engine. The returned cache must be closed
// by the caller.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func buildEngine(cfg *config.Config, logger zerolog.Logger) (*engineParts, error) {
	client := &http.Client{Timeout: outboundTimeout}
	shared := cache.New(cfg.Search.CacheTTL)

	parts := &engineParts{cache: shared}
	parts.providers = buildProviders(cfg, client, shared, logger.With().Str("component", "search").Logger())

	catalog, err := fallback.LoadOrBuiltin(cfg.Catalog.Path)
	if err != nil {
		shared.Close()
		return nil, fmt.Errorf("load fallback catalog: %w", err)
	}

	deps := pipeline.Deps{
		Primary:   parts.providers.primary,
		Secondary: parts.providers.secondary,
		Catalog:   catalog,
	}

	if cfg.JudgeEnabled() {
		jc, err := judge.NewClient(judge.ClientConfig{
			BaseURL:        cfg.Judge.BaseURL,
			APIKey:         cfg.Judge.APIKey,
			Model:          cfg.Judge.Model,
			Temperature:    cfg.Judge.Temperature,
			BreakerTimeout: cfg.Search.BreakerTimeout,
		}, client, logger.With().Str("component", "judge").Logger())
		if err != nil {
			shared.Close()
			return nil, fmt.Errorf("create judge client: %w", err)
		}
		deps.Judge = jc
		deps.Summarizer = jc
		parts.judge = true
	}

	if cfg.Reviews.Enabled && !cfg.UseMockSearch() {
		lookup, err := reviews.NewSerpAPILookup(reviews.SerpAPIConfig{
			BaseURL:        cfg.Search.SerpAPIBaseURL,
			APIKey:         cfg.Search.SerpAPIKey,
			MaxSnippets:    cfg.Reviews.MaxSnippets,
			BreakerTimeout: cfg.Search.BreakerTimeout,
		}, client)
		if err != nil {
			shared.Close()
			return nil, fmt.Errorf("create review lookup: %w", err)
		}
		deps.Lookup = lookup
	}

	engine, err := pipeline.New(pipelineOptions(cfg), recommend.NewContextProvider(cfg.Anchor), deps, logger)
	if err != nil {
		shared.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	parts.engine = engine
	return parts, nil
}
