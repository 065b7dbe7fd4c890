// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// Recorder copies events from the bus into a MemoryStore. It implements
// suture.Service.
type Recorder struct {
	sub   message.Subscriber
	store *MemoryStore
}

// NewRecorder creates a Recorder reading Topic from sub.
func NewRecorder(sub message.Subscriber, store *MemoryStore) *Recorder {
	return &Recorder{sub: sub, store: store}
}

// Serve subscribes to Topic and records events until ctx is canceled.
// Malformed messages are acknowledged and dropped so they are not
// redelivered.
func (r *Recorder) Serve(ctx context.Context) error {
	messages, err := r.sub.Subscribe(ctx, Topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", Topic, err)
	}
	logger := logging.WithComponent("event-recorder")
	logger.Info().Str("topic", Topic).Msg("Event recorder started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("subscription to %s closed", Topic)
			}
			event, err := Unmarshal(msg.Payload)
			if err != nil {
				logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping malformed session event")
				msg.Ack()
				continue
			}
			r.store.Save(*event)
			metrics.EventsRecorded.Inc()
			msg.Ack()
		}
	}
}

// String returns the service name for supervisor logging.
func (r *Recorder) String() string {
	return "event-recorder"
}
