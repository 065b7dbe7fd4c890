// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const sessionKeyPrefix = "session:"

// BadgerStore persists sessions in BadgerDB as JSON. Entries carry a TTL of
// twice the idle timeout so abandoned sessions disappear even if cleanup
// never runs.
type BadgerStore struct {
	db       *badger.DB
	entryTTL time.Duration
	ownsDB   bool
}

// OpenBadgerStore opens (or creates) a BadgerDB at path.
func OpenBadgerStore(path string, idleTTL time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for sessions: %w", err)
	}
	store := NewBadgerStore(db, idleTTL)
	store.ownsDB = true
	return store, nil
}

// NewBadgerStore wraps an already open database. Close leaves db open.
func NewBadgerStore(db *badger.DB, idleTTL time.Duration) *BadgerStore {
	return &BadgerStore{db: db, entryTTL: 2 * idleTTL}
}

func sessionKey(id string) []byte {
	return []byte(sessionKeyPrefix + id)
}

// Get implements Store.
func (b *BadgerStore) Get(_ context.Context, id string) (State, error) {
	var st State
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &st)
		})
	})
	if err != nil {
		return State{}, err
	}
	return st, nil
}

// Save implements Store.
func (b *BadgerStore) Save(_ context.Context, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(sessionKey(st.ID), data)
		if b.entryTTL > 0 {
			entry = entry.WithTTL(b.entryTTL)
		}
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("set session: %w", err)
		}
		return nil
	})
}

// Delete implements Store.
func (b *BadgerStore) Delete(_ context.Context, id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(sessionKey(id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

// DeleteIdle implements Store.
func (b *BadgerStore) DeleteIdle(ctx context.Context, cutoff time.Time) ([]string, error) {
	var idle []string

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var st State
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &st)
			})
			if err != nil {
				continue
			}
			if st.LastActivity.Before(cutoff) {
				idle = append(idle, st.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	removed := make([]string, 0, len(idle))
	for _, id := range idle {
		if err := b.Delete(ctx, id); err != nil {
			continue
		}
		removed = append(removed, id)
	}
	return removed, nil
}

// Count implements Store.
func (b *BadgerStore) Count(_ context.Context) (int, error) {
	count := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close closes the database when the store opened it.
func (b *BadgerStore) Close() error {
	if b.ownsDB {
		return b.db.Close()
	}
	return nil
}
