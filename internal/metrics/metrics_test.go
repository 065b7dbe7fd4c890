// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordLLMRequest(t *testing.T) {
	before := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("gpt-test", "tool", "error"))

	RecordLLMRequest("gpt-test", "tool", 120*time.Millisecond, errors.New("timeout"))
	RecordLLMRequest("gpt-test", "tool", 80*time.Millisecond, nil)

	after := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("gpt-test", "tool", "error"))
	if after-before != 1 {
		t.Errorf("error counter delta = %v, want 1", after-before)
	}
	if got := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("gpt-test", "tool", "success")); got < 1 {
		t.Errorf("success counter = %v, want >= 1", got)
	}
}

func TestRecordLookup(t *testing.T) {
	before := testutil.ToFloat64(LookupsTotal.WithLabelValues("trailer", "not_found"))
	RecordLookup("trailer", false)
	if got := testutil.ToFloat64(LookupsTotal.WithLabelValues("trailer", "not_found")); got-before != 1 {
		t.Errorf("not_found delta = %v, want 1", got-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got-before != 1 {
		t.Errorf("active requests delta = %v, want 1", got-before)
	}
	TrackActiveRequest(false)
}

func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("POST", "/api/v1/sessions", "201", 10*time.Millisecond)
	RecordTMDbRequest("search_movie", "200", 30*time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint: %v", err)
	}
	for _, p := range problems {
		t.Errorf("lint problem %s: %s", p.Metric, p.Text)
	}
}
