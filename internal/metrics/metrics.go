// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package metrics defines the Prometheus instrumentation for CineMatch.
//
// Every external dependency on the recommendation path is instrumented:
// the HTTP API, language model calls, TMDb requests, vector search, the
// reranker fallback tiers and the conversation sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Language Model Metrics
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of language model calls",
		},
		[]string{"model", "mode", "result"}, // mode: text, tool, structured, embedding
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Language model call duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"model", "mode"},
	)

	LLMParseErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_parse_errors_total",
			Help: "Total number of model replies that did not match the requested structure",
		},
		[]string{"target"},
	)

	// TMDb Metrics
	TMDbRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_requests_total",
			Help: "Total number of TMDb API requests",
		},
		[]string{"endpoint", "status_code"},
	)

	TMDbRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tmdb_request_duration_seconds",
			Help:    "TMDb API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	TMDbCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tmdb_cache_hits_total",
			Help: "Total number of TMDb title searches served from cache",
		},
	)

	TMDbCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tmdb_cache_misses_total",
			Help: "Total number of TMDb title searches sent upstream",
		},
	)

	// Retrieval Metrics
	RetrievalSearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retrieval_search_duration_seconds",
			Help:    "Similarity search duration in seconds, embedding included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	RetrievalPassages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retrieval_passages",
			Help:    "Number of distinct passages in the merged retrieval context",
			Buckets: []float64{0, 1, 3, 5, 7, 9},
		},
	)

	// Recommendation Metrics
	RerankTierTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rerank_tier_total",
			Help: "Total number of reranks resolved by each fallback tier",
		},
		[]string{"tier"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_generations_total",
			Help: "Total number of recommendation generations",
		},
		[]string{"result"}, // success, error, empty
	)

	// Lookup Metrics
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookups_total",
			Help: "Total number of trailer and streaming lookups",
		},
		[]string{"kind", "result"}, // result: found, not_found
	)

	// Session Metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Current number of stored conversation sessions",
		},
	)

	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Total number of conversation state transitions",
		},
		[]string{"from", "to"},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_expired_total",
			Help: "Total number of idle sessions removed by cleanup",
		},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_events_published_total",
			Help: "Total number of session activity events published",
		},
		[]string{"type", "result"}, // result: success, error
	)

	EventsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_events_recorded_total",
			Help: "Total number of session activity events retained by the recorder",
		},
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
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordLLMRequest records one language model call.
func RecordLLMRequest(model, mode string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	LLMRequestsTotal.WithLabelValues(model, mode, result).Inc()
	LLMRequestDuration.WithLabelValues(model, mode).Observe(duration.Seconds())
}

// RecordTMDbRequest records one TMDb HTTP round trip.
func RecordTMDbRequest(endpoint, statusCode string, duration time.Duration) {
	TMDbRequestsTotal.WithLabelValues(endpoint, statusCode).Inc()
	TMDbRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordLookup records the outcome of a trailer or streaming lookup.
func RecordLookup(kind string, found bool) {
	result := "not_found"
	if found {
		result = "found"
	}
	LookupsTotal.WithLabelValues(kind, result).Inc()
}
