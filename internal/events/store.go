// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"sync"
	"time"
)

// DefaultMaxEvents bounds a MemoryStore created with a non-positive size.
const DefaultMaxEvents = 10000

// QueryFilter selects events from a MemoryStore. Zero values match all.
type QueryFilter struct {
	SessionID string
	Types     []Type
	Since     time.Time
	Limit     int
}

// MemoryStore keeps the most recent events in memory. Data is lost on
// restart.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
	maxLen int
}

// NewMemoryStore creates a store holding at most maxLen events.
func NewMemoryStore(maxLen int) *MemoryStore {
	if maxLen <= 0 {
		maxLen = DefaultMaxEvents
	}
	return &MemoryStore{
		events: make([]Event, 0, maxLen),
		maxLen: maxLen,
	}
}

// Save appends an event, dropping the oldest tenth of the store when full.
func (s *MemoryStore) Save(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) >= s.maxLen {
		removeCount := s.maxLen / 10
		if removeCount < 1 {
			removeCount = 1
		}
		s.events = append(s.events[:0], s.events[removeCount:]...)
	}
	s.events = append(s.events, event)
}

// Query returns matching events, most recent first.
func (s *MemoryStore) Query(filter QueryFilter) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Event, 0)
	for i := len(s.events) - 1; i >= 0; i-- {
		event := s.events[i]
		if !filter.matches(&event) {
			continue
		}
		results = append(results, event)
		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}
	}
	return results
}

// CountByType returns how many retained events there are of each type.
func (s *MemoryStore) CountByType() map[Type]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[Type]int)
	for i := range s.events {
		counts[s.events[i].Type]++
	}
	return counts
}

// Len returns the number of retained events.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (f *QueryFilter) matches(event *Event) bool {
	if f.SessionID != "" && event.SessionID != f.SessionID {
		return false
	}
	if !f.Since.IsZero() && event.Timestamp.Before(f.Since) {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if event.Type == t {
			return true
		}
	}
	return false
}
