// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/tomtom215/cinematch/internal/llm"
	"github.com/tomtom215/cinematch/internal/llm/llmtest"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/tmdb"
	"github.com/tomtom215/cinematch/internal/tmdb/tmdbtest"
)

func nine() []models.Recommendation {
	recs := make([]models.Recommendation, GeneratedCount)
	for i := range recs {
		recs[i] = models.Recommendation{Title: fmt.Sprintf("M%d", i+1), Reason: fmt.Sprintf("R%d", i+1)}
	}
	return recs
}

func echo(recs []models.Recommendation) *llm.Response {
	args := ratingArgs{}
	for _, r := range recs {
		args.Movies = append(args.Movies, ratingMovie{Title: r.Title, Reason: r.Reason})
	}
	return llmtest.Call("get_movie_ratings", args)
}

func titles(recs []models.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func ptr(f float64) *float64 { return &f }

func TestSortByScore(t *testing.T) {
	t.Parallel()

	movies := []scoredMovie{
		{rec: models.Recommendation{Title: "a"}, score: ptr(8.1)},
		{rec: models.Recommendation{Title: "b"}},
		{rec: models.Recommendation{Title: "c"}, score: ptr(6.5)},
		{rec: models.Recommendation{Title: "d"}, score: ptr(8.1)},
		{rec: models.Recommendation{Title: "e"}},
	}
	sortByScore(movies)

	got := make([]string, len(movies))
	for i, m := range movies {
		got[i] = m.rec.Title
	}
	want := []string{"a", "d", "c", "b", "e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestRerankRated(t *testing.T) {
	t.Parallel()

	recs := nine()
	model := llmtest.Reply(echo(recs), nil)
	api := &tmdbtest.Fake{Movies: map[string]tmdb.Movie{
		"M2": {ID: 2, VoteAverage: 6.0},
		"M5": {ID: 5, VoteAverage: 8.5},
		"M7": {ID: 7, VoteAverage: 7.2},
		"M9": {ID: 9, VoteAverage: 8.5},
	}}

	got := NewReranker(model, api).Rerank(context.Background(), recs)

	if want := []string{"M5", "M9", "M7"}; !reflect.DeepEqual(titles(got), want) {
		t.Errorf("titles = %v, want %v", titles(got), want)
	}
	if got[0].TMDbID != 5 || got[0].Reason != "R5" {
		t.Errorf("first = %+v, want resolved M5 with reason", got[0])
	}

	req := model.Requests()[0]
	if req.ForceTool != "get_movie_ratings" || req.Tier != llm.TierTool {
		t.Errorf("request = %+v", req)
	}
}

func TestRerankUnscoredBackfill(t *testing.T) {
	t.Parallel()

	recs := nine()
	// The model echoes only two titles, one of them twice.
	model := llmtest.Reply(echo([]models.Recommendation{recs[3], recs[3], recs[6]}), nil)
	api := &tmdbtest.Fake{Movies: map[string]tmdb.Movie{"M7": {ID: 7, VoteAverage: 7}}}

	got := NewReranker(model, api).Rerank(context.Background(), recs)
	if want := []string{"M7", "M4", "M1"}; !reflect.DeepEqual(titles(got), want) {
		t.Errorf("titles = %v, want %v", titles(got), want)
	}
}

func TestRerankFallsBackToTruncation(t *testing.T) {
	t.Parallel()

	recs := nine()
	tests := []struct {
		name  string
		model *llmtest.Model
		api   *tmdbtest.Fake
	}{
		{name: "model error", model: llmtest.Reply(nil, errors.New("down")), api: &tmdbtest.Fake{}},
		{name: "no function call", model: llmtest.Reply(llmtest.Text("Here are ratings"), nil), api: &tmdbtest.Fake{}},
		{name: "bad arguments", model: llmtest.Reply(&llm.Response{ToolCalls: []llm.ToolCall{{Name: "get_movie_ratings", Arguments: "{"}}}, nil), api: &tmdbtest.Fake{}},
		{name: "empty movies", model: llmtest.Reply(llmtest.Call("get_movie_ratings", ratingArgs{}), nil), api: &tmdbtest.Fake{}},
		{name: "search failure", model: llmtest.Reply(echo(recs), nil), api: &tmdbtest.Fake{Err: errors.New("tmdb down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NewReranker(tt.model, tt.api).Rerank(context.Background(), recs)
			if want := []string{"M1", "M2", "M3"}; !reflect.DeepEqual(titles(got), want) {
				t.Errorf("titles = %v, want %v", titles(got), want)
			}
		})
	}
}

func TestRerankAlwaysThreeDistinct(t *testing.T) {
	t.Parallel()

	recs := []models.Recommendation{
		{Title: "A"}, {Title: "A"}, {Title: "B"}, {Title: "A"}, {Title: "C"}, {Title: "B"},
	}
	for _, model := range []*llmtest.Model{
		llmtest.Reply(echo(recs), nil),
		llmtest.Reply(nil, errors.New("down")),
	} {
		got := NewReranker(model, &tmdbtest.Fake{}).Rerank(context.Background(), recs)
		if want := []string{"A", "B", "C"}; !reflect.DeepEqual(titles(got), want) {
			t.Errorf("titles = %v, want %v", titles(got), want)
		}
	}
}
