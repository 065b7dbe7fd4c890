// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("bus closed") }
func (failingPublisher) Close() error { return nil }

type chanSubscriber struct {
	ch chan *message.Message
}

func (s *chanSubscriber) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	return s.ch, nil
}
func (s *chanSubscriber) Close() error { return nil }

func TestPublisher_Publish(t *testing.T) {
	t.Parallel()

	bus := NewBus(16)
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := bus.Subscribe(ctx, Topic)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	pub := NewPublisher(bus)
	reqCtx := logging.ContextWithRequestID(context.Background(), "req-42")
	pub.Publish(reqCtx, TypeRecommendationShown, "sess-1", map[string]string{"title": "Heat"})

	select {
	case msg := <-messages:
		msg.Ack()
		if got := msg.Metadata.Get(MetadataType); got != string(TypeRecommendationShown) {
			t.Errorf("metadata type = %q", got)
		}
		if got := msg.Metadata.Get(MetadataRequestID); got != "req-42" {
			t.Errorf("metadata request_id = %q", got)
		}
		event, err := Unmarshal(msg.Payload)
		if err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if event.SessionID != "sess-1" || event.Data["title"] != "Heat" || event.ID != msg.UUID {
			t.Errorf("event = %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
}

func TestPublisher_FailureIsCounted(t *testing.T) {
	t.Parallel()

	counter := metrics.EventsPublished.WithLabelValues(string(TypeSessionDeleted), "error")
	before := testutil.ToFloat64(counter)

	NewPublisher(failingPublisher{}).Publish(context.Background(), TypeSessionDeleted, "sess-1", nil)
	NewPublisher(failingPublisher{}).Publish(context.Background(), Type("bogus"), "sess-1", nil)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("error count delta = %v, want 1", got)
	}
}

func TestRecorder_Serve(t *testing.T) {
	t.Parallel()

	sub := &chanSubscriber{ch: make(chan *message.Message, 2)}
	store := NewMemoryStore(10)
	recorder := NewRecorder(sub, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- recorder.Serve(ctx) }()

	e := validEvent()
	payload, err := Marshal(&e)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	malformed := message.NewMessage("bad", []byte("{"))
	good := message.NewMessage(e.ID, payload)
	sub.ch <- malformed
	sub.ch <- good

	for _, msg := range []*message.Message{malformed, good} {
		select {
		case <-msg.Acked():
		case <-time.After(2 * time.Second):
			t.Fatalf("message %s not acked", msg.UUID)
		}
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if recorder.String() != "event-recorder" {
		t.Errorf("String() = %q", recorder.String())
	}
}

func TestRecorder_ClosedSubscription(t *testing.T) {
	t.Parallel()

	sub := &chanSubscriber{ch: make(chan *message.Message)}
	close(sub.ch)

	err := NewRecorder(sub, NewMemoryStore(1)).Serve(context.Background())
	if err == nil {
		t.Fatal("Serve() error = nil for closed subscription")
	}
}

func TestBus_EndToEnd(t *testing.T) {
	t.Parallel()

	bus := NewBus(0)
	t.Cleanup(func() { _ = bus.Close() })
	store := NewMemoryStore(100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = NewRecorder(bus, store).Serve(ctx) }()

	pub := NewPublisher(bus)
	deadline := time.Now().Add(2 * time.Second)
	for store.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no event recorded")
		}
		// Messages published before the recorder subscribes are dropped.
		pub.Publish(ctx, TypeChatStarted, "sess-e2e", nil)
		time.Sleep(10 * time.Millisecond)
	}

	got := store.Query(QueryFilter{SessionID: "sess-e2e", Limit: 1})
	if len(got) != 1 || got[0].Type != TypeChatStarted {
		t.Errorf("Query() = %+v", got)
	}
}
