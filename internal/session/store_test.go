// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package session

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/models"
)

func openTestBadger(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"badger": func(t *testing.T) Store { return NewBadgerStore(openTestBadger(t), time.Hour) },
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			store := factory(t)
			ctx := context.Background()

			s := presenting(t)
			s.StartFreeChat([]models.MovieDescription{models.EmptyDescription("Man on Fire")})
			want := s.State()

			if err := store.Save(ctx, want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := store.Get(ctx, want.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}

			if got.Phase != want.Phase || got.CurrentRecommendationIndex != want.CurrentRecommendationIndex {
				t.Errorf("phase/index = %s/%d", got.Phase, got.CurrentRecommendationIndex)
			}
			if len(got.Transcript) != len(want.Transcript) || got.Transcript[0].Role != models.RoleAssistant {
				t.Errorf("transcript = %v", got.Transcript)
			}
			if len(got.Recommendations) != 3 || got.Recommendations[2].Title != "John Q" {
				t.Errorf("recommendations = %v", got.Recommendations)
			}
			if len(got.Descriptions) != 1 || got.Descriptions[0].Title != "Man on Fire" {
				t.Errorf("descriptions = %v", got.Descriptions)
			}
			if !got.LastActivity.Equal(want.LastActivity) {
				t.Errorf("LastActivity = %v", got.LastActivity)
			}
		})
	}
}

func TestStoreNotFoundAndDelete(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			store := factory(t)
			ctx := context.Background()

			if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Get(missing) error = %v", err)
			}
			if err := store.Delete(ctx, "missing"); err != nil {
				t.Errorf("Delete(missing) error = %v", err)
			}

			store.Save(ctx, New("a", testNow).State())
			if n, _ := store.Count(ctx); n != 1 {
				t.Errorf("Count() = %d", n)
			}
			if err := store.Delete(ctx, "a"); err != nil {
				t.Fatal(err)
			}
			if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Get after delete error = %v", err)
			}
		})
	}
}

func TestStoreDeleteIdle(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			store := factory(t)
			ctx := context.Background()

			store.Save(ctx, New("old-1", testNow.Add(-3*time.Hour)).State())
			store.Save(ctx, New("old-2", testNow.Add(-2*time.Hour)).State())
			store.Save(ctx, New("fresh", testNow.Add(-time.Minute)).State())

			removed, err := store.DeleteIdle(ctx, testNow.Add(-time.Hour))
			if err != nil {
				t.Fatal(err)
			}
			sort.Strings(removed)
			if len(removed) != 2 || removed[0] != "old-1" || removed[1] != "old-2" {
				t.Errorf("removed = %v", removed)
			}
			if n, _ := store.Count(ctx); n != 1 {
				t.Errorf("Count() = %d, want 1", n)
			}
			if _, err := store.Get(ctx, "fresh"); err != nil {
				t.Errorf("fresh session lost: %v", err)
			}
		})
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	st := New("a", testNow).State()
	store.Save(ctx, st)
	st.Transcript[0].Content = "mutated"

	got, _ := store.Get(ctx, "a")
	if got.Transcript[0].Content == "mutated" {
		t.Error("Save kept a reference to the caller's slice")
	}
	got.Transcript[0].Content = "mutated"
	again, _ := store.Get(ctx, "a")
	if again.Transcript[0].Content == "mutated" {
		t.Error("Get returned a shared slice")
	}
}

func TestNewStore(t *testing.T) {
	t.Parallel()

	mem, err := NewStore(&config.SessionConfig{Store: StoreMemory})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := mem.(*MemoryStore); !ok {
		t.Errorf("memory store type = %T", mem)
	}

	bs, err := NewStore(&config.SessionConfig{Store: StoreBadger, Path: t.TempDir(), TTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := bs.(*BadgerStore); !ok {
		t.Errorf("badger store type = %T", bs)
	}
	if err := bs.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if _, err := NewStore(&config.SessionConfig{Store: "redis"}); err == nil {
		t.Error("expected error for unknown store")
	}
}
