// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package tmdbtest provides an in-memory tmdb.API for tests.
package tmdbtest

import (
	"context"
	"sync"

	"github.com/tomtom215/cinematch/internal/tmdb"
)

// Fake serves canned TMDb data. Titles missing from Movies yield
// tmdb.ErrNotFound, as do IDs missing from the per-movie maps. Err, when
// set, is returned from every call.
type Fake struct {
	Movies    map[string]tmdb.Movie
	Details   map[int]tmdb.Details
	Credits   map[int]tmdb.Credits
	Reviews   map[int]tmdb.Reviews
	Videos    map[int]tmdb.Videos
	Providers map[int]tmdb.WatchProviders
	Err       error

	mu       sync.Mutex
	searches []string
}

// Searches returns the queries received, in order.
func (f *Fake) Searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.searches))
	copy(out, f.searches)
	return out
}

// SearchMovie implements tmdb.API.
func (f *Fake) SearchMovie(_ context.Context, query string) (*tmdb.SearchResult, error) {
	f.mu.Lock()
	f.searches = append(f.searches, query)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	result := &tmdb.SearchResult{Page: 1}
	if m, ok := f.Movies[query]; ok {
		result.Results = []tmdb.Movie{m}
		result.TotalResults = 1
	}
	return result, nil
}

// FindMovie implements tmdb.API.
func (f *Fake) FindMovie(ctx context.Context, title string) (*tmdb.Movie, error) {
	result, err := f.SearchMovie(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, tmdb.ErrNotFound
	}
	return &result.Results[0], nil
}

// MovieDetails implements tmdb.API.
func (f *Fake) MovieDetails(_ context.Context, id int) (*tmdb.Details, error) {
	return lookup(f.Err, f.Details, id)
}

// MovieCredits implements tmdb.API.
func (f *Fake) MovieCredits(_ context.Context, id int) (*tmdb.Credits, error) {
	return lookup(f.Err, f.Credits, id)
}

// MovieReviews implements tmdb.API.
func (f *Fake) MovieReviews(_ context.Context, id int) (*tmdb.Reviews, error) {
	return lookup(f.Err, f.Reviews, id)
}

// MovieVideos implements tmdb.API.
func (f *Fake) MovieVideos(_ context.Context, id int) (*tmdb.Videos, error) {
	return lookup(f.Err, f.Videos, id)
}

// WatchProviders implements tmdb.API.
func (f *Fake) WatchProviders(_ context.Context, id int) (*tmdb.WatchProviders, error) {
	return lookup(f.Err, f.Providers, id)
}

func lookup[T any](err error, m map[int]T, id int) (*T, error) {
	if err != nil {
		return nil, err
	}
	v, ok := m[id]
	if !ok {
		return nil, tmdb.ErrNotFound
	}
	return &v, nil
}
