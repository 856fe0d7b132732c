// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package config

import (
	"fmt"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateAnchor(); err != nil {
		return err
	}

	if err := c.validateSearch(); err != nil {
		return err
	}

	if err := c.validateRanker(); err != nil {
		return err
	}

	if err := c.validateJudge(); err != nil {
		return err
	}

	if err := c.validateReviews(); err != nil {
		return err
	}

	if err := c.validateSession(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read and write timeouts must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// validLanguages defines the supported query languages
var validLanguages = map[string]bool{
	"es": true,
	"ca": true,
	"en": true,
}

func (c *Config) validateAnchor() error {
	if c.Anchor.Label == "" {
		return fmt.Errorf("APP_LOCATION must not be empty")
	}
	if c.Anchor.Lat < -90 || c.Anchor.Lat > 90 {
		return fmt.Errorf("APP_LAT must be between -90 and 90")
	}
	if c.Anchor.Lng < -180 || c.Anchor.Lng > 180 {
		return fmt.Errorf("APP_LNG must be between -180 and 180")
	}
	if !validLanguages[c.Anchor.Language] {
		return fmt.Errorf("APP_LANGUAGE must be one of: es, ca, en")
	}
	return nil
}

func (c *Config) validateSearch() error {
	s := &c.Search
	if s.PrimaryTimeout <= 0 || s.SecondaryTimeout <= 0 || s.TotalTimeout <= 0 {
		return fmt.Errorf("search timeouts must be positive")
	}
	if s.TotalTimeout < s.PrimaryTimeout {
		return fmt.Errorf("SEARCH_TOTAL_TIMEOUT (%s) must be >= SEARCH_PRIMARY_TIMEOUT (%s)", s.TotalTimeout, s.PrimaryTimeout)
	}
	if s.MaxItems < 1 {
		return fmt.Errorf("SEARCH_MAX_ITEMS must be at least 1")
	}
	if s.RatePerSecond <= 0 || s.RateBurst < 1 {
		return fmt.Errorf("SEARCH_RATE_PER_SECOND must be positive and SEARCH_RATE_BURST at least 1")
	}
	if s.BreakerTimeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	if s.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if !s.Mock && s.SerpAPIKey != "" {
		if err := validateHTTPURL(s.SerpAPIBaseURL, "SERPAPI_BASE_URL"); err != nil {
			return err
		}
	}
	if s.BingAPIKey != "" {
		if err := validateHTTPURL(s.BingBaseURL, "BING_BASE_URL"); err != nil {
			return err
		}
	}
	if s.DuckDuckGo {
		if err := validateHTTPURL(s.DuckDuckGoURL, "DUCKDUCKGO_URL"); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateRanker() error {
	if c.Ranker.TopN < 1 || c.Ranker.TopN > 10 {
		return fmt.Errorf("RANKER_TOP_N must be between 1 and 10")
	}
	if c.Ranker.CategoryCap < 1 {
		return fmt.Errorf("RANKER_CATEGORY_CAP must be at least 1")
	}
	if c.Ranker.PoolSize < c.Ranker.TopN {
		return fmt.Errorf("RANKER_POOL_SIZE must be >= RANKER_TOP_N")
	}
	return nil
}

func (c *Config) validateJudge() error {
	if c.Judge.APIKey == "" {
		return nil
	}
	if err := validateHTTPURL(c.Judge.BaseURL, "OPENAI_BASE_URL"); err != nil {
		return err
	}
	if c.Judge.Model == "" {
		return fmt.Errorf("OPENAI_MODEL is required when OPENAI_API_KEY is set")
	}
	if c.Judge.Temperature < 0 || c.Judge.Temperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2")
	}
	if c.Judge.EvaluateTimeout <= 0 || c.Judge.SummarizeTimeout <= 0 {
		return fmt.Errorf("judge timeouts must be positive")
	}
	return nil
}

func (c *Config) validateReviews() error {
	if !c.Reviews.Enabled {
		return nil
	}
	if c.Reviews.ItemTimeout <= 0 || c.Reviews.BatchTimeout <= 0 {
		return fmt.Errorf("review timeouts must be positive")
	}
	if c.Reviews.Concurrency < 1 {
		return fmt.Errorf("REVIEWS_CONCURRENCY must be at least 1")
	}
	if c.Reviews.ShowSnippets > c.Reviews.MaxSnippets {
		return fmt.Errorf("reviews.show_snippets must be <= reviews.max_snippets")
	}
	return nil
}

func (c *Config) validateSession() error {
	switch c.Session.Store {
	case "memory":
	case "badger":
		if c.Session.Path == "" {
			return fmt.Errorf("SESSION_STORE_PATH is required when SESSION_STORE=badger")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be one of: memory, badger")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC must not be empty")
	}
	if c.Events.PublishTimeout <= 0 {
		return fmt.Errorf("EVENTS_PUBLISH_TIMEOUT must be positive")
	}
	if c.Events.NATSURL != "" {
		if err := validateNATSURL(c.Events.NATSURL); err != nil {
			return fmt.Errorf("EVENTS_NATS_URL is invalid: %w", err)
		}
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
