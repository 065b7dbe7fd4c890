// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package recommend turns retrieved context into the short list of movies
// presented to the user.
//
// # Pipeline
//
//	Generator.Generate   preferences + context  -> exactly 9 recommendations
//	Reranker.Rerank      9 recommendations      -> 3, ordered by TMDb rating
//	Describer.Describe   current list           -> TMDb background per movie
//
// # Reranking tiers
//
// Rerank is a Chain of attempts. Each attempt returns an Outcome; the chain
// moves to the next attempt only when an outcome failed:
//
//  1. rated: a forced get_movie_ratings call echoes the list, each title is
//     scored by the vote_average of its first TMDb search hit, the list is
//     stably sorted with unscored titles last and backfilled from the
//     original order up to three distinct titles.
//  2. truncated: the first three distinct titles of the original list.
//
// Rerank therefore always returns three distinct titles when at least three
// distinct titles were generated.
//
// # Errors
//
// Generate returns *llm.ParseError when the model output is malformed or
// does not hold exactly nine items. Describe never fails; movies TMDb cannot
// resolve get models.EmptyDescription.
package recommend
