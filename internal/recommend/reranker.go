// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/cinematch/internal/llm"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/tmdb"
)

// PresentedCount is the length of the reranked list.
const PresentedCount = 3

// Tier names, used in outcomes and metrics.
const (
	TierRated     = "rated"
	TierTruncated = "truncated"
)

var (
	errNoAttempts = errors.New("no ranking attempts configured")
	errNoMovies   = errors.New("function call returned no movies")
)

type ratingMovie struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

type ratingArgs struct {
	Movies []ratingMovie `json:"movies" jsonschema:"description=List of movies with titles and reasons"`
}

var ratingsTool = llm.NewTool[ratingArgs]("get_movie_ratings", "Fetch TMDb ratings for movies and return the top 3")

// scoredMovie is a candidate with its TMDb rating. Score is nil when TMDb
// had no match.
type scoredMovie struct {
	rec   models.Recommendation
	score *float64
}

// Reranker narrows generated recommendations to the best rated three.
type Reranker struct {
	model llm.Model
	tmdb  tmdb.API
}

// NewReranker creates a reranker.
func NewReranker(model llm.Model, api tmdb.API) *Reranker {
	return &Reranker{model: model, tmdb: api}
}

// Rerank returns at most PresentedCount distinct recommendations. It never
// fails: if the rated tier cannot complete, the original order is kept.
func (r *Reranker) Rerank(ctx context.Context, recs []models.Recommendation) []models.Recommendation {
	outcome := Chain(
		func(ctx context.Context) Outcome { return r.rated(ctx, recs) },
		func(context.Context) Outcome { return Succeeded(TierTruncated, truncate(recs)) },
	)(ctx)

	metrics.RerankTierTotal.WithLabelValues(outcome.Tier).Inc()
	logging.Ctx(ctx).Info().
		Str("tier", outcome.Tier).
		Int("in", len(recs)).
		Int("out", len(outcome.Recommendations)).
		Msg("Reranked recommendations")
	return outcome.Recommendations
}

// rated is the full pipeline: echo through the model, score on TMDb, sort
// and backfill.
func (r *Reranker) rated(ctx context.Context, recs []models.Recommendation) Outcome {
	args, err := llm.CallFunction[ratingArgs](ctx, r.model, llm.Request{
		Tier: llm.TierTool,
		User: ratingsPrompt(recs),
	}, ratingsTool)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Rating function call failed, falling back")
		return Failure(TierRated, err)
	}
	if len(args.Movies) == 0 {
		return Failure(TierRated, errNoMovies)
	}

	scored := make([]scoredMovie, 0, len(args.Movies))
	for _, m := range args.Movies {
		sm, err := r.score(ctx, m)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("title", m.Title).Msg("TMDb rating lookup failed, falling back")
			return Failure(TierRated, err)
		}
		scored = append(scored, sm)
	}

	return Succeeded(TierRated, backfill(topRated(scored), recs))
}

func (r *Reranker) score(ctx context.Context, m ratingMovie) (scoredMovie, error) {
	sm := scoredMovie{rec: models.Recommendation{Title: m.Title, Reason: m.Reason}}

	movie, err := r.tmdb.FindMovie(ctx, m.Title)
	switch {
	case errors.Is(err, tmdb.ErrNotFound):
		return sm, nil
	case err != nil:
		return sm, fmt.Errorf("rate %q: %w", m.Title, err)
	}

	rating := movie.VoteAverage
	sm.score = &rating
	sm.rec.TMDbID = movie.ID
	return sm, nil
}

func ratingsPrompt(recs []models.Recommendation) string {
	var b strings.Builder
	b.WriteString("Can you provide TMDb ratings for these movies?\n\nHere are movies and reasons:\n")
	for _, rec := range recs {
		fmt.Fprintf(&b, "- %s : %s\n", rec.Title, rec.Reason)
	}
	return b.String()
}

// sortByScore orders movies by descending score with unscored movies last.
// Equal keys keep their input order.
func sortByScore(movies []scoredMovie) {
	sort.SliceStable(movies, func(i, j int) bool {
		a, b := movies[i].score, movies[j].score
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
}

// topRated returns up to PresentedCount distinct titles from movies by score.
func topRated(movies []scoredMovie) []models.Recommendation {
	sorted := make([]scoredMovie, len(movies))
	copy(sorted, movies)
	sortByScore(sorted)

	out := make([]models.Recommendation, 0, PresentedCount)
	seen := make(map[string]struct{}, PresentedCount)
	for _, m := range sorted {
		if len(out) == PresentedCount {
			break
		}
		if _, dup := seen[m.rec.Title]; dup {
			continue
		}
		seen[m.rec.Title] = struct{}{}
		out = append(out, m.rec)
	}
	return out
}

// backfill pads top with titles from original, in order, until it holds
// PresentedCount distinct titles or original is exhausted.
func backfill(top, original []models.Recommendation) []models.Recommendation {
	seen := make(map[string]struct{}, len(top))
	for _, rec := range top {
		seen[rec.Title] = struct{}{}
	}
	for _, rec := range original {
		if len(top) >= PresentedCount {
			break
		}
		if _, dup := seen[rec.Title]; dup {
			continue
		}
		seen[rec.Title] = struct{}{}
		top = append(top, rec)
	}
	return top
}

// truncate returns the first PresentedCount distinct titles of recs.
func truncate(recs []models.Recommendation) []models.Recommendation {
	return backfill(make([]models.Recommendation, 0, PresentedCount), recs)
}
