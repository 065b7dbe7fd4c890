// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// Metadata keys set on every published message.
const (
	MetadataType      = "event_type"
	MetadataSessionID = "session_id"
	MetadataRequestID = "request_id"
)

// Publisher turns session actions into Watermill messages.
type Publisher struct {
	pub message.Publisher
	now func() time.Time
}

// NewPublisher creates a Publisher writing to pub.
func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub, now: time.Now}
}

// Publish records that typ happened in a session. Failures are logged and
// counted; the caller is never interrupted.
func (p *Publisher) Publish(ctx context.Context, typ Type, sessionID string, data map[string]string) {
	event := &Event{
		SchemaVersion: SchemaVersion,
		ID:            uuid.NewString(),
		Type:          typ,
		SessionID:     sessionID,
		Timestamp:     p.now().UTC(),
		RequestID:     logging.RequestIDFromContext(ctx),
		Data:          data,
	}

	payload, err := Marshal(event)
	if err != nil {
		p.failed(ctx, event, err)
		return
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set(MetadataType, string(typ))
	msg.Metadata.Set(MetadataSessionID, sessionID)
	if event.RequestID != "" {
		msg.Metadata.Set(MetadataRequestID, event.RequestID)
	}

	if err := p.pub.Publish(Topic, msg); err != nil {
		p.failed(ctx, event, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(string(typ), "success").Inc()
}

func (p *Publisher) failed(ctx context.Context, event *Event, err error) {
	metrics.EventsPublished.WithLabelValues(string(event.Type), "error").Inc()
	logging.Ctx(ctx).Warn().Err(err).
		Str("event_type", string(event.Type)).
		Str("session_id", event.SessionID).
		Msg("Failed to publish session event")
}
