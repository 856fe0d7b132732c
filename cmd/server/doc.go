// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

/*
Package main is the entry point for the Sidequest server application.

Sidequest recommends a handful of nearby activities for a traveller's next
few hours. A request carries a context (place, time, weather) and optional
preferences; the server searches place providers, fits candidates to the
time window, ranks them, optionally asks a language model to pick the best
set, summarizes reviews and tops up from a curated fallback catalog.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("sidequest")
	├── DataSupervisor ("data-layer")
	│   └── Badger value log GC (SESSION_STORE=badger only)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Event router (EVENTS_ENABLED=true only)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Environment: optional .env file (godotenv)
 2. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 3. Logging: zerolog with JSON or console output
 4. Recommendation engine: search providers, judge, review lookup, fallback catalog
 5. Question sessions: in-memory or BadgerDB store
 6. Event bus: Watermill over gochannel or NATS JetStream
 7. Supervisor tree: data, messaging and API layers
 8. HTTP Server: Chi router with CORS, rate limiting and Prometheus metrics

# Configuration

Configuration is layered (highest priority wins):
  - Environment variables, including those read from .env
  - Config file (config.yaml, or CONFIG_PATH)
  - Built-in defaults

Without SERPAPI_KEY, or with SEARCH_MOCK=true, the server uses the built-in
mock provider and no secondary providers. Secondary providers are enabled
with BING_API_KEY and DUCKDUCKGO_ENABLED=true. OPENAI_API_KEY enables the
judge; without it the ranker's selection is returned and reviews are
summarized with keywords.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops
accepting connections and drains in-flight requests within
SHUTDOWN_TIMEOUT, the event router closes, and the session store and
event bus are closed last.

# Example Usage

Local development with mock search:

	export SEARCH_MOCK=true
	export LOG_FORMAT=console
	./sidequest

Production with real providers and persistent sessions:

	export SERPAPI_KEY=your-serpapi-key
	export OPENAI_API_KEY=your-openai-key
	export DUCKDUCKGO_ENABLED=true
	export SESSION_STORE=badger
	export SESSION_STORE_PATH=/data/sessions
	export EVENTS_ENABLED=true
	export EVENTS_NATS_URL=nats://nats:4222
	./sidequest
*/
package main
