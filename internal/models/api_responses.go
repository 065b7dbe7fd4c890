// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package models

import "time"

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status is "success" (see Data) or "error" (see Error).
//
//	{
//	  "status": "success",
//	  "data": {"message": "What genres do you typically enjoy? ..."},
//	  "metadata": {"timestamp": "2026-01-02T12:00:00Z", "query_time_ms": 812}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is the structured error body.
//
// Common codes:
//   - VALIDATION_ERROR: rejected input (disallowed characters, too long)
//   - NOT_FOUND: unknown session
//   - INVALID_STATE: action not allowed in the current conversation phase
//   - NO_MORE_RECOMMENDATIONS: "suggest another" on the last recommendation
//   - INTERNAL_ERROR: session store failure
//   - RATE_LIMIT_EXCEEDED: too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	Status          string            `json:"status"` // healthy, degraded
	Version         string            `json:"version"`
	StoreConnected  bool              `json:"store_connected"`
	ActiveSessions  int               `json:"active_sessions"`
	CircuitBreakers map[string]string `json:"circuit_breakers,omitempty"`
	Uptime          float64           `json:"uptime"`
}
