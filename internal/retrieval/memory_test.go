// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package retrieval

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/tomtom215/cinematch/internal/models"
)

const testCorpus = `{"title":"Man on Fire","overview":"A bodyguard seeks revenge.","genres":["Action","Thriller"],"cast":["Denzel Washington"]}
{"title":"Paddington","overview":"A bear in London.","genres":["Family","Comedy"],"cast":["Ben Whishaw"]}

{"title":"The Equalizer","overview":"A retired agent seeks revenge.","genres":["Thriller"],"cast":["Denzel Washington"],"embedding":[1,1,1,0]}
`

func TestCorpusEntryDocument(t *testing.T) {
	t.Parallel()

	e := CorpusEntry{Title: "Heat", Overview: "Cops and robbers.", Genres: []string{"Crime", "Drama"}, Cast: []string{"Al Pacino", "Robert De Niro"}}
	want := "Movie title: Heat\nOverview: Cops and robbers.\nGenres: Crime, Drama\nCast: Al Pacino, Robert De Niro"
	if got := e.Document(); got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}
}

func TestMemoryStoreLoadAndSearch(t *testing.T) {
	t.Parallel()

	embedder := &keywordEmbedder{axes: []string{"revenge", "thriller", "denzel", "bear"}}
	store := NewMemoryStore()

	n, err := store.LoadCorpus(context.Background(), strings.NewReader(testCorpus), embedder)
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	if n != 3 || store.Len() != 3 {
		t.Fatalf("loaded %d (Len %d), want 3", n, store.Len())
	}
	if len(embedder.calls) != 2 {
		t.Errorf("embedded %d entries, want 2 (one carries its own vector)", len(embedder.calls))
	}

	got, err := store.Search(context.Background(), []float32{0, 0, 0, 1}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || !strings.HasPrefix(got[0], "Movie title: Paddington") {
		t.Errorf("Search(bear) = %v", got)
	}

	got, _ = store.Search(context.Background(), []float32{1, 1, 1, 0}, 2)
	for _, doc := range got {
		if strings.Contains(doc, "Paddington") {
			t.Errorf("unexpected match %q", doc)
		}
	}
}

func TestMemoryStoreLoadCorpusBadLine(t *testing.T) {
	t.Parallel()

	_, err := NewMemoryStore().LoadCorpus(context.Background(), strings.NewReader("{not json}\n"), &keywordEmbedder{})
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
}

func TestRetrieverWithMemoryStore(t *testing.T) {
	t.Parallel()

	embedder := &keywordEmbedder{axes: []string{"revenge", "thriller", "denzel", "bear"}}
	store := NewMemoryStore()
	if _, err := store.LoadCorpus(context.Background(), strings.NewReader(testCorpus), embedder); err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}

	merged, err := NewRetriever(embedder, store, 3).Retrieve(context.Background(), models.Preferences{
		Themes: "revenge", Genres: "thriller", Actors: "denzel washington",
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	passages := strings.Split(merged, Separator)
	if len(passages) != 3 {
		t.Errorf("merged %d unique passages, want 3: %q", len(passages), merged)
	}
}

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2}, b: []float32{1, 2}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := cosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}
