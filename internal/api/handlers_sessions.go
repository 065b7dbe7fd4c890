// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/cinematch/internal/conversation"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/session"
)

// Request bodies. Answer and chat text is length-checked again by
// validation.CleanInputText after cleaning.
type (
	answerRequest struct {
		Text string `json:"text" validate:"required,max=1000"`
	}
	chatRequest struct {
		Message string `json:"message" validate:"required,max=1000"`
	}
	// An unknown country is not a request error: the lookup answers with
	// its not-found message.
	countryRequest struct {
		Country string `json:"country" validate:"required,max=100"`
	}
)

// SessionResponse is returned by every action that advances a conversation.
// Message is the assistant text to show for this step.
type SessionResponse struct {
	Session session.State `json:"session"`
	Message string        `json:"message"`
	Warning string        `json:"warning,omitempty"`
	Done    bool          `json:"done,omitempty"`
}

// ChatResponse is returned by the free-chat endpoint.
type ChatResponse struct {
	Session session.State      `json:"session"`
	Reply   conversation.Reply `json:"reply"`
}

// LookupsResponse carries both results of the combined lookup.
type LookupsResponse struct {
	Trailer   session.LookupResult `json:"trailer"`
	Providers session.LookupResult `json:"providers"`
}

// CreateSession starts a conversation
//
// @Summary Create a session
// @Description Starts a new conversation and returns the welcome message with the first question
// @Tags Sessions
// @Produce json
// @Success 201 {object} models.APIResponse{data=SessionResponse}
// @Router /api/v1/sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	st, welcome, err := h.service.Create(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, SessionResponse{Session: st, Message: welcome}, start)
}

// GetSession returns the state and transcript of a session
//
// @Summary Get a session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.APIResponse{data=session.State}
// @Failure 404 {object} models.APIResponse "Session not found"
// @Router /api/v1/sessions/{id} [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	st, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, st, start)
}

// DeleteSession removes a session
//
// @Summary Delete a session
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204 "Session deleted"
// @Failure 404 {object} models.APIResponse "Session not found"
// @Router /api/v1/sessions/{id} [delete]
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitAnswer answers the current preference question
//
// The third answer triggers recommendation generation; the response then
// carries the first recommendation, or an apology when generation failed
// (retry with /generate).
//
// @Summary Answer the current question
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body answerRequest true "Answer"
// @Success 200 {object} models.APIResponse{data=SessionResponse}
// @Failure 400 {object} models.APIResponse "Invalid input"
// @Failure 409 {object} models.APIResponse "Not collecting preferences"
// @Router /api/v1/sessions/{id}/answers [post]
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), id, req.Text)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if result.Warning != "" {
		logging.Ctx(r.Context()).Debug().Str("session_id", id).Msg("Answer flagged as low confidence")
	}
	respondSuccess(w, http.StatusOK, SessionResponse{
		Session: result.State,
		Message: result.Message,
		Warning: result.Warning,
		Done:    result.Done,
	}, start)
}

// Generate retries recommendation generation
//
// @Summary Retry recommendation generation
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.APIResponse{data=SessionResponse}
// @Failure 409 {object} models.APIResponse "Not generating"
// @Router /api/v1/sessions/{id}/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.service.Generate)
}

// NextRecommendation presents the next recommendation ("suggest another")
//
// @Summary Suggest another movie
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.APIResponse{data=SessionResponse}
// @Failure 409 {object} models.APIResponse "No more recommendations"
// @Router /api/v1/sessions/{id}/next [post]
func (h *Handler) NextRecommendation(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.service.Next)
}

// StartChat enters free chat about the recommendations
//
// @Summary Start free chat
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.APIResponse{data=SessionResponse}
// @Failure 409 {object} models.APIResponse "No recommendations yet"
// @Router /api/v1/sessions/{id}/chat/start [post]
func (h *Handler) StartChat(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.service.StartChat)
}

// Restart clears the session back to the first question
//
// @Summary Restart the conversation
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.APIResponse{data=SessionResponse}
// @Router /api/v1/sessions/{id}/restart [post]
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.service.Restart)
}

// Chat continues the free chat
//
// @Summary Send a chat message
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body chatRequest true "Message"
// @Success 200 {object} models.APIResponse{data=ChatResponse}
// @Failure 400 {object} models.APIResponse "Invalid input"
// @Failure 409 {object} models.APIResponse "Not in free chat"
// @Router /api/v1/sessions/{id}/chat [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, st, err := h.service.Chat(r.Context(), id, req.Message)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, ChatResponse{Session: st, Reply: reply}, start)
}

// Trailer looks up the trailer of the current recommendation
//
// @Summary Find the trailer
// @Tags Lookups
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.APIResponse{data=session.LookupResult}
// @Failure 409 {object} models.APIResponse "No recommendation on screen"
// @Router /api/v1/sessions/{id}/trailer [post]
func (h *Handler) Trailer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	result, err := h.service.Trailer(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, result, start)
}

// Providers looks up streaming platforms for the current recommendation
//
// @Summary Find streaming providers
// @Tags Lookups
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body countryRequest true "Country name or ISO code"
// @Success 200 {object} models.APIResponse{data=session.LookupResult}
// @Failure 409 {object} models.APIResponse "No recommendation on screen"
// @Router /api/v1/sessions/{id}/providers [post]
func (h *Handler) Providers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req countryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Providers(r.Context(), id, req.Country)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, result, start)
}

// Lookups runs the trailer and provider lookups concurrently
//
// @Summary Find trailer and streaming providers
// @Tags Lookups
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body countryRequest true "Country name or ISO code"
// @Success 200 {object} models.APIResponse{data=LookupsResponse}
// @Router /api/v1/sessions/{id}/lookups [post]
func (h *Handler) Lookups(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req countryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trailer, providers, err := h.service.Lookups(r.Context(), id, req.Country)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, LookupsResponse{Trailer: trailer, Providers: providers}, start)
}

// step runs a bodiless session action that yields a message.
func (h *Handler) step(w http.ResponseWriter, r *http.Request, action func(context.Context, string) (string, session.State, error)) {
	start := time.Now()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	message, st, err := action(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, SessionResponse{Session: st, Message: message}, start)
}
