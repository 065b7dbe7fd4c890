// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/cinematch/internal/logging"
)

// NewBus creates the in-process pub/sub shared by the Publisher and the
// Recorder. bufferSize is the per-subscriber output buffer.
func NewBus(bufferSize int64) *gochannel.GoChannel {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: bufferSize},
		watermill.NewSlogLogger(logging.NewSlogLogger("events")),
	)
}
