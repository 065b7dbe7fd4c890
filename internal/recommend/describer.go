// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/tmdb"
)

// DefaultMaxEntries caps cast, crew and reviews per description.
const DefaultMaxEntries = 3

// Describer assembles TMDb background for the conversation model.
type Describer struct {
	tmdb       tmdb.API
	maxEntries int
}

// NewDescriber creates a describer. A non-positive maxEntries uses
// DefaultMaxEntries.
func NewDescriber(api tmdb.API, maxEntries int) *Describer {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Describer{tmdb: api, maxEntries: maxEntries}
}

// Describe returns one description per recommendation, in order. Movies
// that cannot be resolved or fetched get models.EmptyDescription.
func (d *Describer) Describe(ctx context.Context, recs []models.Recommendation) []models.MovieDescription {
	out := make([]models.MovieDescription, 0, len(recs))
	for _, rec := range recs {
		desc, err := d.describe(ctx, rec)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("title", rec.Title).Msg("Using empty movie description")
			desc = models.EmptyDescription(rec.Title)
		}
		out = append(out, desc)
	}
	return out
}

func (d *Describer) describe(ctx context.Context, rec models.Recommendation) (models.MovieDescription, error) {
	id, err := tmdb.ResolveID(ctx, d.tmdb, rec.Title, rec.TMDbID)
	if err != nil {
		return models.MovieDescription{}, err
	}

	details, err := d.tmdb.MovieDetails(ctx, id)
	if err != nil {
		return models.MovieDescription{}, err
	}

	desc := models.EmptyDescription(rec.Title)
	desc.Overview = details.Overview
	desc.ReleaseDate = details.ReleaseDate
	desc.Runtime = details.Runtime
	desc.Rating = details.VoteAverage
	desc.Genres = names(details.Genres)
	desc.ProductionCompanies = names(details.ProductionCompanies)
	desc.ProductionCountries = names(details.ProductionCountries)

	// Credits and reviews are optional extras.
	if credits, err := d.tmdb.MovieCredits(ctx, id); err == nil {
		for _, c := range head(credits.Cast, d.maxEntries) {
			desc.Cast = append(desc.Cast, c.Name)
		}
		for _, c := range head(credits.Crew, d.maxEntries) {
			desc.Crew = append(desc.Crew, models.CrewMember{Name: c.Name, Job: c.Job})
		}
	}
	if reviews, err := d.tmdb.MovieReviews(ctx, id); err == nil {
		for _, r := range head(reviews.Results, d.maxEntries) {
			desc.Reviews = append(desc.Reviews, r.Content)
		}
	}

	return desc, nil
}

func names(entities []tmdb.NamedEntity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Name)
	}
	return out
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
