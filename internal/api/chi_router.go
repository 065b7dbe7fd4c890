// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cinematch/internal/middleware"
)

// Router wires handlers and middleware into a Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware

	// requestTimeout bounds each API request; zero disables it.
	// Generation can take several model round trips, so this must be generous.
	requestTimeout time.Duration
}

// NewRouter creates a router. A nil chiMW uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, chiMW *ChiMiddleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMW,
	}
}

// WithRequestTimeout sets the per-request timeout of /api/v1 routes.
func (router *Router) WithRequestTimeout(d time.Duration) *Router {
	router.requestTimeout = d
	return router
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)        // X-Request-ID header and logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(chimiddleware.Compress(5))   // gzip/deflate for clients that accept it

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/latency", router.handler.HealthLatency)
	})

	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Conversation API
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		if router.handler.tracker != nil {
			r.Use(router.handler.tracker.Middleware)
		}
		if router.requestTimeout > 0 {
			r.Use(chimiddleware.Timeout(router.requestTimeout))
		}

		r.Get("/countries", router.handler.Countries)
		r.Get("/countries/resolve", router.handler.ResolveCountry)
		r.Get("/events/stats", router.handler.EventStats)

		r.Post("/sessions", router.handler.CreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", router.handler.GetSession)
			r.Delete("/", router.handler.DeleteSession)
			r.Get("/events", router.handler.SessionEvents)

			r.Post("/restart", router.handler.Restart)
			r.Post("/next", router.handler.NextRecommendation)
			r.Post("/trailer", router.handler.Trailer)
			r.Post("/providers", router.handler.Providers)
			r.Post("/lookups", router.handler.Lookups)

			// Routes that call the chat model get a tighter limit.
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitModel())
				r.Post("/answers", router.handler.SubmitAnswer)
				r.Post("/generate", router.handler.Generate)
				r.Post("/chat/start", router.handler.StartChat)
				r.Post("/chat", router.handler.Chat)
			})
		})
	})

	return r
}
