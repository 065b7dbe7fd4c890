// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package retrieval turns the three preference answers into a merged block of
// movie passages from the vector-indexed corpus.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/cinematch/internal/llm"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
)

// Separator joins deduplicated passages in the merged context.
const Separator = "\n**\n"

// DefaultTopK is the number of passages fetched per preference.
const DefaultTopK = 3

// ErrMissingPreference is returned when any of the three answers is empty.
var ErrMissingPreference = errors.New("retrieval: preference is empty")

// VectorStore is a similarity-search backend returning passage texts ordered
// by decreasing similarity.
type VectorStore interface {
	Search(ctx context.Context, vector []float32, topK int) ([]string, error)
	Name() string
}

// Retriever embeds each preference and searches the store.
type Retriever struct {
	embedder llm.Embedder
	store    VectorStore
	topK     int
}

// NewRetriever creates a retriever. A non-positive topK uses DefaultTopK.
func NewRetriever(embedder llm.Embedder, store VectorStore, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{embedder: embedder, store: store, topK: topK}
}

// Retrieve runs one search per preference in the order themes, genres,
// actors and returns the deduplicated passages joined by Separator.
func (r *Retriever) Retrieve(ctx context.Context, prefs models.Preferences) (string, error) {
	queries := []struct {
		field string
		text  string
	}{
		{"themes", prefs.Themes},
		{"genres", prefs.Genres},
		{"actors", prefs.Actors},
	}

	for _, q := range queries {
		if strings.TrimSpace(q.text) == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingPreference, q.field)
		}
	}

	var passages []string
	for _, q := range queries {
		found, err := r.search(ctx, q.text)
		if err != nil {
			return "", fmt.Errorf("search %s: %w", q.field, err)
		}
		passages = append(passages, found...)
	}

	merged := Dedupe(passages)
	metrics.RetrievalPassages.Observe(float64(len(merged)))
	logging.Ctx(ctx).Debug().
		Int("retrieved", len(passages)).
		Int("unique", len(merged)).
		Str("backend", r.store.Name()).
		Msg("Retrieved context")

	return Join(merged), nil
}

func (r *Retriever) search(ctx context.Context, text string) ([]string, error) {
	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	found, err := r.store.Search(ctx, vector, r.topK)
	metrics.RetrievalSearchDuration.WithLabelValues(r.store.Name()).Observe(time.Since(start).Seconds())
	return found, err
}

// Dedupe removes exact duplicate passages, keeping first occurrences in order.
func Dedupe(passages []string) []string {
	seen := make(map[string]struct{}, len(passages))
	out := make([]string, 0, len(passages))
	for _, p := range passages {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Join concatenates passages with Separator.
func Join(passages []string) string {
	return strings.Join(passages, Separator)
}
