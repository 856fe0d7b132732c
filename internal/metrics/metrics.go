// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the recommendation service:
// - pipeline stage latency
// - search provider calls, latency and normalized item counts
// - circuit breakers
// - query cache efficiency
// - judge and review enrichment outcomes
// - HTTP endpoint latency and throughput
// - served recommendations

var (
	// Pipeline Metrics
	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sidequest_pipeline_stage_duration_seconds",
			Help:    "Duration of each recommendation pipeline stage in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
		[]string{"stage"},
	)

	PipelineRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_pipeline_requests_total",
			Help: "Total number of recommendation pipeline runs",
		},
		[]string{"outcome"}, // "ok", "invalid_input", "internal_error"
	)

	FallbackTopUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sidequest_fallback_topups_total",
			Help: "Total number of responses topped up from the curated catalog",
		},
	)

	FallbackItems = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sidequest_fallback_items_total",
			Help: "Total number of curated catalog items served",
		},
	)

	// Search Provider Metrics
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_provider_requests_total",
			Help: "Total number of search provider calls",
		},
		[]string{"provider", "outcome"}, // outcome: "ok", "error", "timeout", "throttled", "rejected", "cached"
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sidequest_provider_latency_seconds",
			Help:    "Latency of search provider calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 1.5, 2, 3, 5},
		},
		[]string{"provider"},
	)

	ProviderItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_provider_items_total",
			Help: "Total number of normalized items contributed per provider",
		},
		[]string{"provider"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_cache_hits_total",
			Help: "Total number of query cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_cache_misses_total",
			Help: "Total number of query cache misses",
		},
		[]string{"cache"},
	)

	// Judge Metrics
	JudgeOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_judge_outcomes_total",
			Help: "Outcomes of judge calls",
		},
		[]string{"operation", "outcome"}, // operation: "evaluate", "summarize"; outcome: "applied", "malformed", "error", "timeout", "disabled"
	)

	JudgeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sidequest_judge_latency_seconds",
			Help:    "Latency of judge calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 3, 4, 6, 8},
		},
		[]string{"operation"},
	)

	// Review Enrichment Metrics
	ReviewFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_review_fetches_total",
			Help: "Outcomes of per-item review enrichment",
		},
		[]string{"outcome"}, // "ok", "empty", "error", "deadline"
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Served Recommendations
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_recommendations_served_total",
			Help: "Total number of items served, by category and source",
		},
		[]string{"category", "source"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_events_published_total",
			Help: "Outcomes of recommendation event publishing",
		},
		[]string{"outcome"}, // "ok", "error", "rejected"
	)

	// Question Sessions
	QuestionSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_question_sessions_total",
			Help: "Question session transitions",
		},
		[]string{"transition"}, // "start", "answer", "back", "complete", "recommend"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordStage records how long a pipeline stage took.
func RecordStage(stage string, duration time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordProviderCall records one search provider call.
func RecordProviderCall(provider, outcome string, duration time.Duration) {
	ProviderRequests.WithLabelValues(provider, outcome).Inc()
	if outcome != "cached" && outcome != "throttled" && outcome != "rejected" {
		ProviderLatency.WithLabelValues(provider).Observe(duration.Seconds())
	}
}

// RecordProviderItems adds normalized items attributed to provider.
func RecordProviderItems(provider string, n int) {
	if n > 0 {
		ProviderItems.WithLabelValues(provider).Add(float64(n))
	}
}

// RecordCacheLookup records a hit or miss on the named cache.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordJudge records a judge call outcome.
func RecordJudge(operation, outcome string, duration time.Duration) {
	JudgeOutcomes.WithLabelValues(operation, outcome).Inc()
	if duration > 0 {
		JudgeLatency.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// RecordReviewFetch records a per-item review enrichment outcome.
func RecordReviewFetch(outcome string) {
	ReviewFetches.WithLabelValues(outcome).Inc()
}

// RecordFallback records a catalog top-up that added n items.
func RecordFallback(n int) {
	if n <= 0 {
		return
	}
	FallbackTopUps.Inc()
	FallbackItems.Add(float64(n))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordServed records one served item.
func RecordServed(category, source string) {
	RecommendationsServed.WithLabelValues(category, source).Inc()
}

// BreakerStateValue maps a breaker state name to the gauge encoding.
func BreakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
