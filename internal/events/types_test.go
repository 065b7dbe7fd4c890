// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"strings"
	"testing"
	"time"
)

func validEvent() Event {
	return Event{
		SchemaVersion: SchemaVersion,
		ID:            "evt-1",
		Type:          TypeSessionCreated,
		SessionID:     "sess-1",
		Timestamp:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEvent_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Event)
		wantErr string
	}{
		{name: "valid", mutate: func(*Event) {}},
		{name: "missing id", mutate: func(e *Event) { e.ID = "" }, wantErr: "event ID"},
		{name: "unknown type", mutate: func(e *Event) { e.Type = "movie.watched" }, wantErr: "unknown event type"},
		{name: "missing session", mutate: func(e *Event) { e.SessionID = "" }, wantErr: "session ID"},
		{name: "zero timestamp", mutate: func(e *Event) { e.Timestamp = time.Time{} }, wantErr: "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := validEvent()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	t.Parallel()

	e := validEvent()
	e.Data = map[string]string{"title": "Heat"}
	payload, err := Marshal(&e)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(payload), `"type":"session.created"`) {
		t.Errorf("payload = %s, want type field", payload)
	}

	got, err := Unmarshal(payload)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Data["title"] != "Heat" || !got.Timestamp.Equal(e.Timestamp) {
		t.Errorf("Unmarshal() = %+v", got)
	}

	if _, err := Unmarshal([]byte("not json")); err == nil {
		t.Error("Unmarshal(garbage) error = nil")
	}
	if _, err := Unmarshal([]byte(`{"id":"x","type":"session.created"}`)); err == nil {
		t.Error("Unmarshal(incomplete) error = nil")
	}
	bad := validEvent()
	bad.Type = "nope"
	if _, err := Marshal(&bad); err == nil {
		t.Error("Marshal(invalid) error = nil")
	}
}

func TestTypes_AllValid(t *testing.T) {
	t.Parallel()

	seen := make(map[Type]bool)
	for _, typ := range Types() {
		if !typ.Valid() {
			t.Errorf("%q not valid", typ)
		}
		if seen[typ] {
			t.Errorf("%q listed twice", typ)
		}
		seen[typ] = true
	}
}
