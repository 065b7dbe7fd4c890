// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package lookup answers "show me the trailer" and "where can I stream it"
// for the recommendation currently on screen.
//
// Both finders first let the tool model normalize the request through a
// forced function call, then resolve the title on TMDb. When the normalized
// title matches the recommendation, the TMDb ID recorded during reranking
// is reused so the lookup targets the film that was scored.
//
// Finders never return errors. Every failure, from a model timeout to a
// movie without trailers, is reported as ok=false and the caller renders
// TrailerNotFound or ProvidersNotFound.
package lookup
