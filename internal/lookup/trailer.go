// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/cinematch/internal/llm"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/tmdb"
)

type trailerArgs struct {
	Title string `json:"title"`
}

var trailerTool = llm.NewTool[trailerArgs]("get_movie_trailer", "Fetch a trailer URL for a single movie")

// TrailerFinder finds trailer URLs.
type TrailerFinder struct {
	model llm.Model
	tmdb  tmdb.API
}

// NewTrailerFinder creates a trailer finder.
func NewTrailerFinder(model llm.Model, api tmdb.API) *TrailerFinder {
	return &TrailerFinder{model: model, tmdb: api}
}

// FindTrailer returns a YouTube or Vimeo URL for the recommendation.
func (f *TrailerFinder) FindTrailer(ctx context.Context, rec models.Recommendation) (string, bool) {
	url, err := f.find(ctx, rec)
	found := err == nil && url != ""
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("title", rec.Title).Msg("Trailer lookup failed")
	}
	metrics.RecordLookup("trailer", found)
	return url, found
}

func (f *TrailerFinder) find(ctx context.Context, rec models.Recommendation) (string, error) {
	args, err := llm.CallFunction[trailerArgs](ctx, f.model, llm.Request{
		Tier: llm.TierTool,
		User: fmt.Sprintf("Can you find the trailer for the movie '%s'?", rec.Title),
	}, trailerTool)
	if err != nil {
		return "", err
	}

	id, err := resolveMovie(ctx, f.tmdb, rec, args.Title)
	if err != nil {
		return "", err
	}

	videos, err := f.tmdb.MovieVideos(ctx, id)
	if err != nil {
		return "", err
	}
	return PickTrailer(videos.Results), nil
}

// PickTrailer prefers official trailers, then any trailer, skipping videos
// hosted on sites without a known URL scheme. It returns "" when nothing
// qualifies.
func PickTrailer(videos []tmdb.Video) string {
	isTrailer := func(v tmdb.Video) bool { return strings.EqualFold(v.Type, "trailer") }

	for _, v := range videos {
		if isTrailer(v) && v.Official {
			if url, ok := VideoURL(v); ok {
				return url
			}
		}
	}
	for _, v := range videos {
		if isTrailer(v) {
			if url, ok := VideoURL(v); ok {
				return url
			}
		}
	}
	return ""
}

// VideoURL builds the watch URL for YouTube and Vimeo videos.
func VideoURL(v tmdb.Video) (string, bool) {
	switch strings.ToLower(v.Site) {
	case "youtube":
		return "https://www.youtube.com/watch?v=" + v.Key, true
	case "vimeo":
		return "https://vimeo.com/" + v.Key, true
	default:
		return "", false
	}
}
