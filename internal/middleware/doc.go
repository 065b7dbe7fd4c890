// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package middleware provides the HTTP instrumentation shared by all routes.

Key Components:

  - RequestID: X-Request-ID propagation with logging context
  - PrometheusMetrics: request counters and latency histograms labelled by
    chi route pattern, so session IDs never become label values
  - LatencyTracker: rolling per-route latency percentiles reported by the
    health endpoint, with slow-request logging

Middleware Stack:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(tracker.Middleware)

Model-backed routes routinely take several seconds, so the slow-request
threshold is configured per tracker rather than fixed.
*/
package middleware
