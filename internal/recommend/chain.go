// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"

	"github.com/tomtom215/cinematch/internal/models"
)

// Outcome is the result of one ranking attempt.
type Outcome struct {
	Tier            string
	Recommendations []models.Recommendation
	Err             error
}

// Failed reports whether the next attempt in a chain should run.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Succeeded builds a successful outcome.
func Succeeded(tier string, recs []models.Recommendation) Outcome {
	return Outcome{Tier: tier, Recommendations: recs}
}

// Failure builds a failed outcome.
func Failure(tier string, err error) Outcome {
	return Outcome{Tier: tier, Err: err}
}

// Attempt produces an Outcome.
type Attempt func(ctx context.Context) Outcome

// Chain runs attempts in order and returns the first successful outcome, or
// the last failure when none succeeds.
func Chain(attempts ...Attempt) Attempt {
	return func(ctx context.Context) Outcome {
		last := Failure("none", errNoAttempts)
		for _, attempt := range attempts {
			last = attempt(ctx)
			if !last.Failed() {
				return last
			}
		}
		return last
	}
}
