// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package retrieval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/llm"
	"github.com/tomtom215/cinematch/internal/logging"
)

// CorpusEntry is one line of a JSONL movie corpus. Embedding is optional;
// entries without one are embedded when the corpus is loaded.
type CorpusEntry struct {
	Title     string    `json:"title"`
	Overview  string    `json:"overview"`
	Genres    []string  `json:"genres"`
	Cast      []string  `json:"cast"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Document renders the entry in the passage format stored in the index.
func (e CorpusEntry) Document() string {
	return fmt.Sprintf("Movie title: %s\nOverview: %s\nGenres: %s\nCast: %s",
		e.Title, e.Overview, strings.Join(e.Genres, ", "), strings.Join(e.Cast, ", "))
}

type memoryDoc struct {
	text   string
	vector []float32
}

// MemoryStore is a brute-force cosine similarity index held in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []memoryDoc
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Name identifies the backend in metrics.
func (s *MemoryStore) Name() string { return "memory" }

// Add indexes a passage with its vector.
func (s *MemoryStore) Add(text string, vector []float32) {
	s.mu.Lock()
	s.docs = append(s.docs, memoryDoc{text: text, vector: vector})
	s.mu.Unlock()
}

// Len returns the number of indexed passages.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Search returns the topK passages most similar to vector. Ties keep
// insertion order.
func (s *MemoryStore) Search(_ context.Context, vector []float32, topK int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		text  string
		score float64
	}
	results := make([]scored, len(s.docs))
	for i, d := range s.docs {
		results[i] = scored{text: d.text, score: cosineSimilarity(vector, d.vector)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.text
	}
	return out, nil
}

// LoadCorpus reads JSONL entries from r into the store, embedding entries
// that carry no vector.
func (s *MemoryStore) LoadCorpus(ctx context.Context, r io.Reader, embedder llm.Embedder) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	loaded := 0
	for line := 1; scanner.Scan(); line++ {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var entry CorpusEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return loaded, fmt.Errorf("corpus line %d: %w", line, err)
		}

		doc := entry.Document()
		vector := entry.Embedding
		if len(vector) == 0 {
			var err error
			if vector, err = embedder.Embed(ctx, doc); err != nil {
				return loaded, fmt.Errorf("embed corpus line %d: %w", line, err)
			}
		}
		s.Add(doc, vector)
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return loaded, fmt.Errorf("read corpus: %w", err)
	}
	return loaded, nil
}

// LoadCorpusFile opens path and calls LoadCorpus.
func (s *MemoryStore) LoadCorpusFile(ctx context.Context, path string, embedder llm.Embedder) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	n, err := s.LoadCorpus(ctx, f, embedder)
	if err != nil {
		return err
	}
	logging.Info().Str("path", path).Int("passages", n).Msg("Loaded in-memory corpus")
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
