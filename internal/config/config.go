// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package config

import (
	"time"
)

// Config holds all application configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables. See LoadWithKoanf.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	Anchor   AnchorConfig   `koanf:"anchor"`
	Search   SearchConfig   `koanf:"search"`
	Ranker   RankerConfig   `koanf:"ranker"`
	Judge    JudgeConfig    `koanf:"judge"`
	Reviews  ReviewsConfig  `koanf:"reviews"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Session  SessionConfig  `koanf:"session"`
	Events   EventsConfig   `koanf:"events"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RequestTimeout bounds a whole recommendation request end to end.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json, console
	Caller bool   `koanf:"caller"`
}

// AnchorConfig is the default geographic anchor and weather used when a
// request does not override them.
type AnchorConfig struct {
	Label            string  `koanf:"label"`
	Lat              float64 `koanf:"lat"`
	Lng              float64 `koanf:"lng"`
	WeatherCondition string  `koanf:"weather_condition"`
	TempC            float64 `koanf:"temp_c"`
	Language         string  `koanf:"language"` // es, ca, en
	City             string  `koanf:"city"`     // appended to text map searches
}

// SearchConfig configures providers and the aggregator budgets.
type SearchConfig struct {
	// Mock forces the deterministic mock provider. It is also used when no
	// primary key is configured.
	Mock bool `koanf:"mock"`

	SerpAPIKey     string `koanf:"serpapi_key"`
	SerpAPIBaseURL string `koanf:"serpapi_base_url"`
	BingAPIKey     string `koanf:"bing_api_key"`
	BingBaseURL    string `koanf:"bing_base_url"`
	DuckDuckGo     bool   `koanf:"duckduckgo"`
	DuckDuckGoURL  string `koanf:"duckduckgo_url"`
	UserAgent      string `koanf:"user_agent"`

	PrimaryTimeout   time.Duration `koanf:"primary_timeout"`
	SecondaryTimeout time.Duration `koanf:"secondary_timeout"`
	TotalTimeout     time.Duration `koanf:"total_timeout"`
	MinPrimaryItems  int           `koanf:"min_primary_items"`
	MaxItems         int           `koanf:"max_items"`

	CacheTTL       time.Duration `koanf:"cache_ttl"`
	RatePerSecond  float64       `koanf:"rate_per_second"`
	RateBurst      int           `koanf:"rate_burst"`
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// RankerConfig configures selection.
type RankerConfig struct {
	TopN        int `koanf:"top_n"`
	CategoryCap int `koanf:"category_cap"`
	PoolSize    int `koanf:"pool_size"`
}

// JudgeConfig configures the OpenAI-compatible judge.
type JudgeConfig struct {
	APIKey           string        `koanf:"api_key"`
	BaseURL          string        `koanf:"base_url"`
	Model            string        `koanf:"model"`
	Temperature      float64       `koanf:"temperature"`
	EvaluateTimeout  time.Duration `koanf:"evaluate_timeout"`
	SummarizeTimeout time.Duration `koanf:"summarize_timeout"`
}

// ReviewsConfig configures the review enricher.
type ReviewsConfig struct {
	Enabled      bool          `koanf:"enabled"`
	ItemTimeout  time.Duration `koanf:"item_timeout"`
	BatchTimeout time.Duration `koanf:"batch_timeout"`
	Concurrency  int           `koanf:"concurrency"`
	MaxSnippets  int           `koanf:"max_snippets"`
	ShowSnippets int           `koanf:"show_snippets"`
}

// CatalogConfig locates the curated fallback catalog. An empty path uses the
// built-in catalog.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// SessionConfig configures question-session storage.
type SessionConfig struct {
	Store string        `koanf:"store"` // memory, badger
	Path  string        `koanf:"path"`
	TTL   time.Duration `koanf:"ttl"`
}

// EventsConfig configures the recommendation event bus.
type EventsConfig struct {
	Enabled        bool          `koanf:"enabled"`
	NATSURL        string        `koanf:"nats_url"`
	Topic          string        `koanf:"topic"`
	PublishTimeout time.Duration `koanf:"publish_timeout"`
}

// Addr returns host:port for the HTTP listener.
func (s *ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}

// JudgeEnabled reports whether an API key is configured for the judge.
func (c *Config) JudgeEnabled() bool {
	return c.Judge.APIKey != ""
}

// UseMockSearch reports whether the mock provider replaces the live primary.
func (c *Config) UseMockSearch() bool {
	return c.Search.Mock || c.Search.SerpAPIKey == ""
}
