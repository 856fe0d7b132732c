// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sidequest/config.yaml",
	"/etc/sidequest/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  20 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:     30,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		// Centre de Convencions Internacional de Barcelona
		Anchor: AnchorConfig{
			Label:            "Centre de Convencions Internacional de Barcelona (CCIB)",
			Lat:              41.4095,
			Lng:              2.2184,
			WeatherCondition: "sunny",
			TempC:            24,
			Language:         "es",
			City:             "Barcelona",
		},
		Search: SearchConfig{
			Mock:             false,
			SerpAPIBaseURL:   "https://serpapi.com",
			BingBaseURL:      "https://api.bing.microsoft.com",
			DuckDuckGo:       true,
			DuckDuckGoURL:    "https://html.duckduckgo.com",
			UserAgent:        "Mozilla/5.0 (compatible; Sidequest/1.0)",
			PrimaryTimeout:   1800 * time.Millisecond,
			SecondaryTimeout: 1200 * time.Millisecond,
			TotalTimeout:     2400 * time.Millisecond,
			MinPrimaryItems:  5,
			MaxItems:         15,
			CacheTTL:         10 * time.Minute,
			RatePerSecond:    5,
			RateBurst:        10,
			BreakerTimeout:   30 * time.Second,
		},
		Ranker: RankerConfig{
			TopN:        4,
			CategoryCap: 2,
			PoolSize:    12,
		},
		Judge: JudgeConfig{
			BaseURL:          "https://api.openai.com",
			Model:            "gpt-4o-mini",
			Temperature:      0.3,
			EvaluateTimeout:  6 * time.Second,
			SummarizeTimeout: 4 * time.Second,
		},
		Reviews: ReviewsConfig{
			Enabled:      true,
			ItemTimeout:  3 * time.Second,
			BatchTimeout: 5 * time.Second,
			Concurrency:  4,
			MaxSnippets:  5,
			ShowSnippets: 3,
		},
		Catalog: CatalogConfig{
			Path: "",
		},
		Session: SessionConfig{
			Store: "memory",
			Path:  "/data/sessions",
			TTL:   30 * time.Minute,
		},
		Events: EventsConfig{
			Enabled:        true,
			NATSURL:        "",
			Topic:          "sidequest.recommendations.served",
			PublishTimeout: 2 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// SERPAPI_KEY -> search.serpapi_key, APP_LAT -> anchor.lat
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML values are already slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.write_timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"request_timeout":  "server.request_timeout",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Anchor context
	"app_location":          "anchor.label",
	"app_lat":               "anchor.lat",
	"app_lng":               "anchor.lng",
	"app_weather_condition": "anchor.weather_condition",
	"app_temp":              "anchor.temp_c",
	"app_language":          "anchor.language",
	"app_city":              "anchor.city",

	// Search providers
	"search_mock":              "search.mock",
	"serpapi_key":              "search.serpapi_key",
	"serpapi_base_url":         "search.serpapi_base_url",
	"bing_api_key":             "search.bing_api_key",
	"bing_base_url":            "search.bing_base_url",
	"duckduckgo_enabled":       "search.duckduckgo",
	"duckduckgo_url":           "search.duckduckgo_url",
	"search_primary_timeout":   "search.primary_timeout",
	"search_secondary_timeout": "search.secondary_timeout",
	"search_total_timeout":     "search.total_timeout",
	"search_max_items":         "search.max_items",
	"cache_ttl":                "search.cache_ttl",
	"search_rate_per_second":   "search.rate_per_second",
	"search_rate_burst":        "search.rate_burst",
	"breaker_timeout":          "search.breaker_timeout",

	// Ranker
	"ranker_top_n":        "ranker.top_n",
	"ranker_category_cap": "ranker.category_cap",
	"ranker_pool_size":    "ranker.pool_size",

	// Judge
	"openai_api_key":          "judge.api_key",
	"openai_base_url":         "judge.base_url",
	"openai_model":            "judge.model",
	"openai_temperature":      "judge.temperature",
	"judge_evaluate_timeout":  "judge.evaluate_timeout",
	"judge_summarize_timeout": "judge.summarize_timeout",

	// Reviews
	"reviews_enabled":       "reviews.enabled",
	"reviews_item_timeout":  "reviews.item_timeout",
	"reviews_batch_timeout": "reviews.batch_timeout",
	"reviews_concurrency":   "reviews.concurrency",

	// Catalog
	"catalog_path": "catalog.path",

	// Question sessions
	"session_store":      "session.store",
	"session_store_path": "session.path",
	"session_ttl":        "session.ttl",

	// Events
	"events_enabled":         "events.enabled",
	"events_nats_url":        "events.nats_url",
	"events_topic":           "events.topic",
	"events_publish_timeout": "events.publish_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - SERPAPI_KEY -> search.serpapi_key
//   - APP_LAT -> anchor.lat
//   - HTTP_PORT -> server.port
//
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never pollute the configuration.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	return ""
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
