// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package ranker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
	"github.com/tomtom215/sidequest/internal/recommend/timefit"
)

// StageName is the pipeline name of the ranker.
const StageName = "rank"

// Config controls selection.
type Config struct {
	// TopN is the number of items selected.
	TopN int `json:"top_n"`

	// CategoryCap limits same-category items within the selection.
	CategoryCap int `json:"category_cap"`

	// PoolSize is how many ranked candidates the evaluator may choose from.
	PoolSize int `json:"pool_size"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		TopN:        4,
		CategoryCap: 2,
		PoolSize:    12,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.CategoryCap < 1 {
		return fmt.Errorf("category_cap must be positive, got %d", c.CategoryCap)
	}
	if c.PoolSize < c.TopN {
		return fmt.Errorf("pool_size (%d) must be at least top_n (%d)", c.PoolSize, c.TopN)
	}
	return nil
}

// Ranker is the ranking stage.
type Ranker struct {
	cfg    Config
	logger zerolog.Logger
}

// New creates a ranker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) (*Ranker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ranker config: %w", err)
	}
	return &Ranker{
		cfg:    cfg,
		logger: logger.With().Str("component", "ranker").Logger(),
	}, nil
}

// Name implements recommend.Stage.
func (r *Ranker) Name() string { return StageName }

// Run scores st.Items, applies the strict filter and fills Candidates,
// Pool and Results. The selection size is st.TopN when set.
func (r *Ranker) Run(_ context.Context, st *recommend.State) error {
	n := st.TopN
	if n <= 0 {
		n = r.cfg.TopN
	}

	candidates := make([]models.ActivityItem, 0, len(st.Items))
	excluded := 0
	for i := range st.Items {
		it := &st.Items[i]
		it.TotalScore = Score(it, &st.Prefs, st.Context.Weather)
		if timefit.Exceeds(it, st.Prefs.TimeBucket) {
			excluded++
			continue
		}
		c := it.Clone()
		c.ReasonText = Reason(&c, &st.Prefs)
		candidates = append(candidates, c)
	}
	Sort(candidates)

	pool := r.cfg.PoolSize
	if pool < n {
		pool = n
	}
	if pool > len(candidates) {
		pool = len(candidates)
	}

	st.Candidates = candidates
	st.Pool = models.CloneItems(candidates[:pool])
	st.Results = Select(candidates, n, r.cfg.CategoryCap)

	r.logger.Debug().
		Str("request_id", st.RequestID).
		Int("items", len(st.Items)).
		Int("excluded", excluded).
		Int("candidates", len(candidates)).
		Int("selected", len(st.Results)).
		Msg("ranked candidates")
	return nil
}
