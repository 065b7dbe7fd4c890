// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Topic is the GoChannel topic carrying session activity.
const Topic = "cinematch.session.events"

// SchemaVersion is bumped on breaking changes to Event.
const SchemaVersion = 1

// Type identifies what happened in a session.
type Type string

const (
	TypeSessionCreated           Type = "session.created"
	TypeSessionRestarted         Type = "session.restarted"
	TypeSessionDeleted           Type = "session.deleted"
	TypeSessionExpired           Type = "session.expired"
	TypeAnswerSubmitted          Type = "answer.submitted"
	TypeRecommendationsGenerated Type = "recommendations.generated"
	TypeGenerationFailed         Type = "generation.failed"
	TypeRecommendationShown      Type = "recommendation.shown"
	TypeTrailerLookup            Type = "lookup.trailer"
	TypeProvidersLookup          Type = "lookup.providers"
	TypeChatStarted              Type = "chat.started"
	TypeChatMessage              Type = "chat.message"
	TypeChatEnded                Type = "chat.ended"
)

// Types lists every event type in lifecycle order.
func Types() []Type {
	return []Type{
		TypeSessionCreated,
		TypeAnswerSubmitted,
		TypeRecommendationsGenerated,
		TypeGenerationFailed,
		TypeRecommendationShown,
		TypeTrailerLookup,
		TypeProvidersLookup,
		TypeChatStarted,
		TypeChatMessage,
		TypeChatEnded,
		TypeSessionRestarted,
		TypeSessionDeleted,
		TypeSessionExpired,
	}
}

// Valid reports whether t is a known event type.
func (t Type) Valid() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

// Event is one entry of a session's activity history. Data holds small
// string attributes such as the recommended title or the lookup country;
// user answers and chat messages are never included.
type Event struct {
	SchemaVersion int               `json:"schema_version"`
	ID            string            `json:"id"`
	Type          Type              `json:"type"`
	SessionID     string            `json:"session_id"`
	Timestamp     time.Time         `json:"timestamp"`
	RequestID     string            `json:"request_id,omitempty"`
	Data          map[string]string `json:"data,omitempty"`
}

// Validate checks the fields every event must carry.
func (e *Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event ID is required")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.SessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

// Marshal validates and encodes an event.
func Marshal(e *Event) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates an event.
func Unmarshal(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	return &e, nil
}
