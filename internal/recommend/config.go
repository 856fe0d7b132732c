// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package recommend

import (
	"fmt"
	"time"
)

// Config contains the engine-level settings. Stage-specific settings
// live with each stage.
type Config struct {
	// TopN is the maximum number of items returned.
	TopN int `json:"top_n"`

	// City is appended to text map searches for items without coordinates.
	City string `json:"city"`

	// StageTimeout bounds any single stage. Stages with tighter internal
	// budgets finish well before it.
	StageTimeout time.Duration `json:"stage_timeout"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		TopN:         4,
		City:         "Barcelona",
		StageTimeout: 8 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.TopN < 1 || c.TopN > 10 {
		return fmt.Errorf("top_n must be between 1 and 10, got %d", c.TopN)
	}
	if c.StageTimeout <= 0 {
		return fmt.Errorf("stage_timeout must be positive")
	}
	return nil
}
