// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cinematch/internal/middleware"
	"github.com/tomtom215/cinematch/internal/models"
)

// Health handles health check requests
//
// The service is degraded when the session store cannot be read or any
// registered circuit breaker is open. Health still answers 200 so that
// dashboards can show the details; use /health/ready for gating traffic.
//
// @Summary Get system health status
// @Description Returns session store connectivity, circuit breaker states and uptime
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Health status retrieved successfully"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	count, err := h.service.Count(r.Context())
	storeConnected := err == nil

	status := "healthy"
	if !storeConnected {
		status = "degraded"
	}

	breakers := make(map[string]string)
	for name, state := range h.breakerStates() {
		breakers[name] = state.String()
		if state == gobreaker.StateOpen {
			status = "degraded"
		}
	}

	respondSuccess(w, http.StatusOK, models.HealthStatus{
		Status:          status,
		Version:         Version,
		StoreConnected:  storeConnected,
		ActiveSessions:  count,
		CircuitBreakers: breakers,
		Uptime:          time.Since(h.startTime).Seconds(),
	}, start)
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
//
// @Summary Kubernetes liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse "Service is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only if the session store answers
//
// @Summary Kubernetes readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse "Service is ready"
// @Failure 503 {object} models.APIResponse "Service is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if _, err := h.service.Count(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status: "success",
			Data:   map[string]interface{}{"status": "not_ready", "store_connected": false},
			Metadata: models.Metadata{
				Timestamp: time.Now(),
			},
		})
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status":          "ready",
		"store_connected": true,
	}, start)
}

// HealthLatency reports per-route latency percentiles
//
// @Summary Per-route latency statistics
// @Description Returns request counts, error counts and p50/p95/p99 latencies over the recent request window
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]middleware.RouteStats} "Latency statistics"
// @Router /health/latency [get]
func (h *Handler) HealthLatency(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats := []middleware.RouteStats{}
	if h.tracker != nil {
		stats = h.tracker.Stats()
	}
	respondSuccess(w, http.StatusOK, stats, start)
}
