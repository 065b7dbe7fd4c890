// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/models"
)

const defaultEventLimit = 100

type eventsRequest struct {
	Type  string `json:"type" validate:"omitempty,max=64"`
	Limit int    `json:"limit" validate:"min=1,max=1000"`
}

// EventsResponse is the activity history of one session.
type EventsResponse struct {
	SessionID string         `json:"session_id"`
	Events    []events.Event `json:"events"`
}

// SessionEvents returns the recorded activity of a session. History
// outlives the session, so deleted and expired sessions still answer.
//
// @Summary Session activity history
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param type query string false "Only events of this type"
// @Param limit query int false "Maximum events (default 100, max 1000)"
// @Success 200 {object} models.APIResponse{data=EventsResponse}
// @Failure 400 {object} models.APIResponse "Invalid ID, type or limit"
// @Router /api/v1/sessions/{id}/events [get]
func (h *Handler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	req := eventsRequest{Type: r.URL.Query().Get("type"), Limit: defaultEventLimit}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondValidation(w, &models.APIError{
				Code:    ErrCodeValidation,
				Message: "limit must be an integer",
			})
			return
		}
		req.Limit = n
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	filter := events.QueryFilter{SessionID: id, Limit: req.Limit}
	if req.Type != "" {
		typ := events.Type(req.Type)
		if !typ.Valid() {
			respondValidation(w, &models.APIError{
				Code:    ErrCodeValidation,
				Message: "unknown event type: " + sanitizeLogValue(req.Type),
			})
			return
		}
		filter.Types = []events.Type{typ}
	}

	resp := EventsResponse{SessionID: id, Events: []events.Event{}}
	if store := h.eventStore(); store != nil {
		resp.Events = store.Query(filter)
	}
	respondSuccess(w, http.StatusOK, resp, start)
}

// EventStats counts the retained activity events by type
//
// @Summary Activity event counts
// @Tags Events
// @Produce json
// @Success 200 {object} models.APIResponse{data=map[string]int}
// @Router /api/v1/events/stats [get]
func (h *Handler) EventStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	counts := make(map[string]int)
	if store := h.eventStore(); store != nil {
		for typ, n := range store.CountByType() {
			counts[string(typ)] = n
		}
	}
	respondSuccess(w, http.StatusOK, counts, start)
}
