// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package events publishes and records session activity.
//
// The session service publishes one Event per completed action on an
// in-process Watermill GoChannel. The Recorder subscribes to the same topic
// and retains a bounded history in a MemoryStore, which the API exposes per
// session.
//
// # Flow
//
//	session.Service -> Publisher.Publish -> GoChannel(Topic) -> Recorder.Serve -> MemoryStore
//
// Publishing never fails the action that triggered it. Delivery is
// best-effort: events published while no subscriber is attached are dropped,
// and the store discards the oldest tenth of its events when full.
//
// # Message format
//
// Payloads are Event values encoded with goccy/go-json. Each message also
// carries the event type, session ID and request ID as metadata so
// subscribers can route without decoding.
package events
