// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Anchor.Lat != 41.4095 || cfg.Anchor.Lng != 2.2184 {
		t.Errorf("Anchor = %v,%v, want CCIB", cfg.Anchor.Lat, cfg.Anchor.Lng)
	}
	if cfg.Anchor.Language != "es" {
		t.Errorf("Anchor.Language = %q, want es", cfg.Anchor.Language)
	}
	if cfg.Search.PrimaryTimeout != 1800*time.Millisecond {
		t.Errorf("Search.PrimaryTimeout = %v", cfg.Search.PrimaryTimeout)
	}
	if cfg.Search.TotalTimeout != 2400*time.Millisecond {
		t.Errorf("Search.TotalTimeout = %v", cfg.Search.TotalTimeout)
	}
	if cfg.Ranker.TopN != 4 || cfg.Ranker.CategoryCap != 2 {
		t.Errorf("Ranker = %+v", cfg.Ranker)
	}
	if cfg.Judge.Model != "gpt-4o-mini" || cfg.Judge.Temperature != 0.3 {
		t.Errorf("Judge = %+v", cfg.Judge)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("Session.TTL = %v", cfg.Session.TTL)
	}
	if cfg.Security.RateLimitReqs != 30 {
		t.Errorf("Security.RateLimitReqs = %d, want 30", cfg.Security.RateLimitReqs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"APP_LOCATION", "anchor.label"},
		{"APP_LAT", "anchor.lat"},
		{"APP_LNG", "anchor.lng"},
		{"APP_WEATHER_CONDITION", "anchor.weather_condition"},
		{"APP_TEMP", "anchor.temp_c"},
		{"APP_LANGUAGE", "anchor.language"},
		{"SERPAPI_KEY", "search.serpapi_key"},
		{"BING_API_KEY", "search.bing_api_key"},
		{"SEARCH_MOCK", "search.mock"},
		{"CACHE_TTL", "search.cache_ttl"},
		{"OPENAI_API_KEY", "judge.api_key"},
		{"OPENAI_MODEL", "judge.model"},
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"SESSION_STORE", "session.store"},
		{"SESSION_STORE_PATH", "session.path"},
		{"EVENTS_NATS_URL", "events.nats_url"},
		{"CATALOG_PATH", "catalog.path"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("APP_LOCATION", "Plaça de Catalunya")
	t.Setenv("APP_LAT", "41.3874")
	t.Setenv("APP_LNG", "2.1686")
	t.Setenv("APP_WEATHER_CONDITION", "rain")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SEARCH_MOCK", "true")
	t.Setenv("CACHE_TTL", "90s")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Anchor.Label != "Plaça de Catalunya" || cfg.Anchor.Lat != 41.3874 || cfg.Anchor.Lng != 2.1686 {
		t.Errorf("Anchor = %+v", cfg.Anchor)
	}
	if cfg.Anchor.WeatherCondition != "rain" {
		t.Errorf("WeatherCondition = %q", cfg.Anchor.WeatherCondition)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if !cfg.UseMockSearch() {
		t.Error("SEARCH_MOCK=true should select the mock provider")
	}
	if cfg.Search.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %v", cfg.Search.CacheTTL)
	}
}

func TestLoadWithKoanf_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sidequest.yaml")
	yaml := strings.Join([]string{
		"server:",
		"  port: 7070",
		"ranker:",
		"  top_n: 3",
		"session:",
		"  store: badger",
		"  path: " + filepath.Join(dir, "sessions"),
		"security:",
		"  cors_origins:",
		"    - https://x.example",
	}, "\n")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	// env beats file
	t.Setenv("RANKER_TOP_N", "2")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070 from file", cfg.Server.Port)
	}
	if cfg.Ranker.TopN != 2 {
		t.Errorf("Ranker.TopN = %d, want 2 from env", cfg.Ranker.TopN)
	}
	if cfg.Session.Store != "badger" {
		t.Errorf("Session.Store = %q", cfg.Session.Store)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "https://x.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanf_InvalidEnv(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("APP_LAT", "123")

	if _, err := LoadWithKoanf(); err == nil || !strings.Contains(err.Error(), "APP_LAT") {
		t.Errorf("expected APP_LAT validation error, got %v", err)
	}
}
