// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/cinematch/internal/config"
)

// Store types accepted in SessionConfig.Store.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
)

// Store persists session state.
type Store interface {
	// Get returns ErrSessionNotFound when id is unknown.
	Get(ctx context.Context, id string) (State, error)

	// Save creates or replaces the state stored under st.ID.
	Save(ctx context.Context, st State) error

	// Delete does not fail when id is unknown.
	Delete(ctx context.Context, id string) error

	// DeleteIdle removes sessions whose last activity is before cutoff and
	// returns their IDs.
	DeleteIdle(ctx context.Context, cutoff time.Time) ([]string, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int, error)

	Close() error
}

// NewStore creates the store selected by cfg.
func NewStore(cfg *config.SessionConfig) (Store, error) {
	switch cfg.Store {
	case StoreMemory, "":
		return NewMemoryStore(), nil
	case StoreBadger:
		return OpenBadgerStore(cfg.Path, cfg.TTL)
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}

// MemoryStore keeps sessions in a map. States are copied on the way in and
// out so callers never share slices with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]State)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.sessions[id]
	if !ok {
		return State{}, ErrSessionNotFound
	}
	return st.Clone(), nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[st.ID] = st.Clone()
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// DeleteIdle implements Store.
func (m *MemoryStore) DeleteIdle(_ context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string
	for id, st := range m.sessions {
		if st.LastActivity.Before(cutoff) {
			delete(m.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
