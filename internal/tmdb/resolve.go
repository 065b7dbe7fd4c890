// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package tmdb

import "context"

// ResolveID returns knownID when it is set, otherwise the ID of the first
// search result for title. Recording the ID after the first search keeps
// later lookups on the same film when a title is ambiguous.
func ResolveID(ctx context.Context, api API, title string, knownID int) (int, error) {
	if knownID > 0 {
		return knownID, nil
	}
	movie, err := api.FindMovie(ctx, title)
	if err != nil {
		return 0, err
	}
	return movie.ID, nil
}
