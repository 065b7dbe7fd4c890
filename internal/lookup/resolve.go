// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package lookup

import (
	"context"
	"strings"

	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/tmdb"
)

// resolveMovie returns the TMDb ID for the title the model asked about. The
// recommendation's recorded ID is used only when the model kept its title.
func resolveMovie(ctx context.Context, api tmdb.API, rec models.Recommendation, requested string) (int, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		requested = rec.Title
	}

	knownID := 0
	if strings.EqualFold(requested, rec.Title) {
		knownID = rec.TMDbID
	}
	return tmdb.ResolveID(ctx, api, requested, knownID)
}
