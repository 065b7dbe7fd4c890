// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/middleware"
	"github.com/tomtom215/cinematch/internal/session"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Breaker is implemented by clients guarded by a circuit breaker,
// such as tmdb.CircuitBreakerClient.
type Breaker interface {
	State() gobreaker.State
}

// EventQuerier is implemented by events.MemoryStore.
type EventQuerier interface {
	Query(filter events.QueryFilter) []events.Event
	CountByType() map[events.Type]int
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response, decoding and validation helpers
//   - handlers_health.go: health and monitoring endpoints
//   - handlers_sessions.go: conversation endpoints
//   - handlers_countries.go: country registry endpoints
//   - handlers_events.go: session activity history
type Handler struct {
	service   *session.Service
	tracker   *middleware.LatencyTracker
	startTime time.Time

	mu       sync.RWMutex
	breakers map[string]Breaker
	events   EventQuerier
}

// NewHandler creates a new API handler.
//
// tracker may be nil, in which case per-route latency stats are not
// collected or reported.
//
// Example:
//
//	handler := api.NewHandler(service, middleware.NewLatencyTracker(1000, 5*time.Second))
//	handler.RegisterBreaker("tmdb", tmdbClient)
//	router := api.NewRouter(handler, api.NewChiMiddleware(nil))
//	http.ListenAndServe(":8080", router.Setup())
func NewHandler(service *session.Service, tracker *middleware.LatencyTracker) *Handler {
	return &Handler{
		service:   service,
		tracker:   tracker,
		startTime: time.Now(),
		breakers:  make(map[string]Breaker),
	}
}

// RegisterBreaker adds a circuit breaker to the health report.
//
// Thread Safety: Safe for concurrent access but should be called during startup.
func (h *Handler) RegisterBreaker(name string, b Breaker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.breakers[name] = b
}

// SetEventStore enables the activity history endpoints. Without it they
// return empty results.
func (h *Handler) SetEventStore(q EventQuerier) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = q
}

func (h *Handler) eventStore() EventQuerier {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.events
}

// breakerStates snapshots the registered breakers by name.
func (h *Handler) breakerStates() map[string]gobreaker.State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	states := make(map[string]gobreaker.State, len(h.breakers))
	for name, b := range h.breakers {
		states[name] = b.State()
	}
	return states
}
