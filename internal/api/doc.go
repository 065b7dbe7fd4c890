// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package api provides the HTTP REST API layer for CineMatch.

Every conversation action is a POST against a session resource. The handlers
are thin: they decode and validate the request, call session.Service and
wrap the result in the models.APIResponse envelope.

Routes:

	POST   /api/v1/sessions                      create, returns welcome + first question
	GET    /api/v1/sessions/{id}                 state and transcript
	GET    /api/v1/sessions/{id}/events          activity history, newest first
	DELETE /api/v1/sessions/{id}                 delete
	POST   /api/v1/sessions/{id}/answers         {text}: answer the current question
	POST   /api/v1/sessions/{id}/generate        retry a failed generation
	POST   /api/v1/sessions/{id}/next            suggest another
	POST   /api/v1/sessions/{id}/trailer         trailer of the current recommendation
	POST   /api/v1/sessions/{id}/providers       {country}: streaming platforms
	POST   /api/v1/sessions/{id}/lookups         {country}: trailer and platforms at once
	POST   /api/v1/sessions/{id}/chat/start      enter free chat
	POST   /api/v1/sessions/{id}/chat            {message}: continue free chat
	POST   /api/v1/sessions/{id}/restart         back to the first question
	GET    /api/v1/countries                     all country names
	GET    /api/v1/countries/resolve?name=       resolve a name or ISO code
	GET    /api/v1/events/stats                  retained events by type
	GET    /health, /health/live, /health/ready, /health/latency
	GET    /metrics                              Prometheus exposition

Error mapping:

  - session.ErrSessionNotFound: 404 NOT_FOUND
  - session.ErrInvalidTransition: 409 INVALID_STATE
  - session.ErrNoMoreRecommendations: 409 NO_MORE_RECOMMENDATIONS
  - validation.ErrInvalidCharacters, validation.ErrInputTooLong and
    request validation failures: 400 VALIDATION_ERROR
  - anything else: 500 INTERNAL_ERROR

A lookup that finds nothing is not an error; the result carries found=false
and the not-found message.

Middleware order: request ID, real IP, panic recovery, CORS and compression
globally; per-IP rate limiting (go-chi/httprate), security headers,
Prometheus metrics and latency tracking on /api/v1.
*/
package api
