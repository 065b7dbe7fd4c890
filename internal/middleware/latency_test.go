// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func TestLatencyTrackerStats(t *testing.T) {
	t.Parallel()

	tracker := NewLatencyTracker(100, 0)
	for i := 1; i <= 10; i++ {
		tracker.Record("/a", time.Duration(i)*time.Millisecond, http.StatusOK)
	}
	tracker.Record("/b", 5*time.Millisecond, http.StatusBadGateway)

	stats := tracker.Stats()
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d", len(stats))
	}

	a := stats[0]
	if a.Route != "/a" || a.RequestCount != 10 || a.ErrorCount != 0 {
		t.Errorf("a = %+v", a)
	}
	if a.P50MS != 5 || a.P95MS != 9 || a.MaxMS != 10 {
		t.Errorf("percentiles = %+v", a)
	}
	if b := stats[1]; b.Route != "/b" || b.ErrorCount != 1 {
		t.Errorf("b = %+v", b)
	}
}

func TestLatencyTrackerWindow(t *testing.T) {
	t.Parallel()

	tracker := NewLatencyTracker(3, 0)
	tracker.Record("/old", time.Millisecond, http.StatusOK)
	for i := 0; i < 3; i++ {
		tracker.Record("/new", time.Millisecond, http.StatusOK)
	}

	stats := tracker.Stats()
	if len(stats) != 1 || stats[0].Route != "/new" || stats[0].RequestCount != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestLatencyTrackerEmpty(t *testing.T) {
	t.Parallel()

	if stats := NewLatencyTracker(0, 0).Stats(); len(stats) != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestLatencyTrackerMiddleware(t *testing.T) {
	t.Parallel()

	tracker := NewLatencyTracker(10, time.Millisecond)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time {
		clock = clock.Add(40 * time.Millisecond)
		return clock
	}

	r := chi.NewRouter()
	r.Use(tracker.Middleware)
	r.Get("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sessions/42", nil))

	stats := tracker.Stats()
	if len(stats) != 1 || stats[0].Route != "/sessions/{id}" || stats[0].MaxMS != 40 {
		t.Errorf("stats = %+v", stats)
	}
}
