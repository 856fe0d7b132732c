// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

/*
Package metrics provides Prometheus metrics collection and export for observability.

# Overview

The package provides metrics for:
  - Recommendation pipeline stage latency and outcomes
  - Search provider calls, latency and contributed items
  - Circuit breaker state transitions
  - Query cache hit/miss rates
  - Judge evaluation and review enrichment outcomes
  - Fallback catalog top-ups
  - HTTP request latency and throughput
  - Served items by category and source

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8000/metrics

# Usage

Collectors are registered with the default registry via promauto. Callers
use the Record* helpers rather than touching collectors directly:

	start := time.Now()
	items, err := provider.Search(ctx, q)
	metrics.RecordProviderCall("serpapi", outcome(err), time.Since(start))
*/
package metrics
