// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/cinematch/internal/logging"
)

// RouteStats aggregates the recent latencies of one route.
type RouteStats struct {
	Route        string `json:"route"`
	RequestCount int    `json:"request_count"`
	ErrorCount   int    `json:"error_count"`
	P50MS        int64  `json:"p50_ms"`
	P95MS        int64  `json:"p95_ms"`
	P99MS        int64  `json:"p99_ms"`
	MaxMS        int64  `json:"max_ms"`
}

type sample struct {
	route      string
	durationMS int64
	failed     bool
}

// LatencyTracker keeps the last N request samples and logs requests slower
// than its threshold.
type LatencyTracker struct {
	mu      sync.RWMutex
	samples []sample
	next    int
	full    bool
	slowMS  int64
	now     func() time.Time
}

// NewLatencyTracker creates a tracker holding up to window samples.
func NewLatencyTracker(window int, slow time.Duration) *LatencyTracker {
	if window <= 0 {
		window = 1000
	}
	return &LatencyTracker{
		samples: make([]sample, window),
		slowMS:  slow.Milliseconds(),
		now:     time.Now,
	}
}

// Record adds one sample, overwriting the oldest once the window is full.
func (t *LatencyTracker) Record(route string, duration time.Duration, statusCode int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples[t.next] = sample{route: route, durationMS: duration.Milliseconds(), failed: statusCode >= 500}
	t.next = (t.next + 1) % len(t.samples)
	if t.next == 0 {
		t.full = true
	}
}

// Stats returns per-route statistics ordered by request count, busiest
// first.
func (t *LatencyTracker) Stats() []RouteStats {
	t.mu.RLock()
	n := t.next
	if t.full {
		n = len(t.samples)
	}
	byRoute := make(map[string][]int64)
	failures := make(map[string]int)
	for _, s := range t.samples[:n] {
		byRoute[s.route] = append(byRoute[s.route], s.durationMS)
		if s.failed {
			failures[s.route]++
		}
	}
	t.mu.RUnlock()

	stats := make([]RouteStats, 0, len(byRoute))
	for route, durations := range byRoute {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		stats = append(stats, RouteStats{
			Route:        route,
			RequestCount: len(durations),
			ErrorCount:   failures[route],
			P50MS:        percentile(durations, 0.50),
			P95MS:        percentile(durations, 0.95),
			P99MS:        percentile(durations, 0.99),
			MaxMS:        durations[len(durations)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Route < stats[j].Route
	})
	return stats
}

// Middleware records every request passing through it.
func (t *LatencyTracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := t.now()
		wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := t.now().Sub(start)
		route := RoutePattern(r)
		t.Record(route, duration, wrapper.statusCode)

		if t.slowMS > 0 && duration.Milliseconds() > t.slowMS {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("route", route).
				Int64("duration_ms", duration.Milliseconds()).
				Msg("Slow request detected")
		}
	})
}

// percentile calculates the percentile value from a sorted slice
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}
