// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/cinematch/internal/llm"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/region"
	"github.com/tomtom215/cinematch/internal/tmdb"
)

var errUnknownCountry = errors.New("unknown country")

type providerArgs struct {
	Title   string `json:"title"`
	Country string `json:"country"`
}

var providerTool = llm.NewTool[providerArgs]("get_movie_providers", "Find streaming platforms for a movie in a user's country")

const providerSystemPrompt = "You are a helpful assistant that always calls the 'get_movie_providers' function to find where movies can be streamed."

// ProviderFinder finds where a movie can be streamed, rented or bought.
type ProviderFinder struct {
	model llm.Model
	tmdb  tmdb.API
}

// NewProviderFinder creates a provider finder.
func NewProviderFinder(model llm.Model, api tmdb.API) *ProviderFinder {
	return &ProviderFinder{model: model, tmdb: api}
}

// FindProviders returns a sentence listing providers for rec in country,
// which may be a name or an ISO 3166 code.
func (f *ProviderFinder) FindProviders(ctx context.Context, rec models.Recommendation, country string) (string, bool) {
	country = strings.TrimSpace(country)

	providers, err := f.find(ctx, rec, country)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("title", rec.Title).Str("country", country).Msg("Provider lookup failed")
	}

	sentence, found := FormatProvidersList(providers, rec.Title, country)
	metrics.RecordLookup("providers", found)
	return sentence, found
}

func (f *ProviderFinder) find(ctx context.Context, rec models.Recommendation, country string) ([]string, error) {
	resolved, ok := region.Lookup(country)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownCountry, country)
	}

	args, err := llm.CallFunction[providerArgs](ctx, f.model, llm.Request{
		Tier:   llm.TierTool,
		System: providerSystemPrompt,
		User:   fmt.Sprintf("Where can I watch '%s' if I live in %s?", rec.Title, country),
	}, providerTool)
	if err != nil {
		return nil, err
	}

	// The model may restate the country; fall back to the user's answer when
	// its version does not resolve.
	if normalized, ok := region.Lookup(args.Country); ok {
		resolved = normalized
	}

	id, err := resolveMovie(ctx, f.tmdb, rec, args.Title)
	if err != nil {
		return nil, err
	}

	providers, err := f.tmdb.WatchProviders(ctx, id)
	if err != nil {
		return nil, err
	}
	return ProviderNames(providers.Results[resolved.Alpha2]), nil
}

// ProviderNames merges flatrate, rent and buy offers, reporting each provider
// once in first-seen order.
func ProviderNames(rp tmdb.RegionProviders) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, group := range [][]tmdb.Provider{rp.Flatrate, rp.Rent, rp.Buy} {
		for _, p := range group {
			if _, dup := seen[p.ProviderName]; dup {
				continue
			}
			seen[p.ProviderName] = struct{}{}
			names = append(names, p.ProviderName)
		}
	}
	return names
}
