// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

/*
Package config provides centralized configuration management for Sidequest.

# Configuration Sources

LoadWithKoanf layers three sources, later ones winning:
  - Built-in defaults (defaultConfig)
  - An optional YAML file: $CONFIG_PATH, ./config.yaml, /etc/sidequest/config.yaml
  - Environment variables, mapped explicitly by envTransformFunc

A .env file in the working directory is loaded into the process environment
by cmd/server before LoadWithKoanf runs.

# Configuration Structure

  - ServerConfig: HTTP listener and timeouts
  - SecurityConfig: CORS origins and per-IP rate limiting
  - LoggingConfig: zerolog level and format
  - AnchorConfig: default location, weather and query language
  - SearchConfig: provider keys, budgets, cache, throttle and breaker settings
  - RankerConfig: result size, category cap, evaluator pool size
  - JudgeConfig: OpenAI-compatible judge endpoint and timeouts
  - ReviewsConfig: review enricher timeouts and concurrency
  - CatalogConfig: fallback catalog file
  - SessionConfig: question-session store
  - EventsConfig: recommendation event bus

# Environment Variables

Selected variables (see envMappings for the full table):

  - HTTP_PORT, HTTP_HOST
  - LOG_LEVEL, LOG_FORMAT
  - APP_LOCATION, APP_LAT, APP_LNG, APP_WEATHER_CONDITION, APP_TEMP, APP_LANGUAGE
  - SERPAPI_KEY, BING_API_KEY, SEARCH_MOCK, CACHE_TTL
  - OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, CORS_ORIGINS (comma-separated)
  - SESSION_STORE (memory|badger), SESSION_STORE_PATH
  - EVENTS_NATS_URL, CATALOG_PATH

# Validation

Validate runs after loading and reports the first problem, naming the
environment variable that controls the offending value.
*/
package config
