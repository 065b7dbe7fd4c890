// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/cinematch/internal/session"
	"github.com/tomtom215/cinematch/internal/validation"
)

// Error codes used in models.APIError.
const (
	ErrCodeValidation   = validation.ErrorCodeValidation
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInvalidState = "INVALID_STATE"
	ErrCodeNoMore       = "NO_MORE_RECOMMENDATIONS"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
)

// ErrEmptyBody is returned when a JSON body is required but missing.
var ErrEmptyBody = errors.New("request body is empty")

// classifyError maps service errors to an HTTP status, error code and the
// message shown to the client.
func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, validation.ErrInvalidCharacters), errors.Is(err, validation.ErrInputTooLong):
		return http.StatusBadRequest, ErrCodeValidation, err.Error()
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "Session not found"
	case errors.Is(err, session.ErrNoMoreRecommendations):
		return http.StatusConflict, ErrCodeNoMore, "There are no more recommendations to show"
	case errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict, ErrCodeInvalidState, err.Error()
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "Internal server error"
	}
}
