// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// BreakerName labels circuit breaker metrics for TMDb.
const BreakerName = "tmdb-api"

// CircuitBreakerClient wraps an API with a circuit breaker. ErrNotFound is a
// normal answer and does not count as a failure.
type CircuitBreakerClient struct {
	api  API
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// NewCircuitBreakerClient wraps api. The breaker opens when at least 60% of
// ten or more requests in a one-minute window fail, and probes again after
// thirty seconds.
func NewCircuitBreakerClient(api API) *CircuitBreakerClient {
	return newCircuitBreakerClient(api, gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},
	})
}

func newCircuitBreakerClient(api API, settings gobreaker.Settings) *CircuitBreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(settings.Name).Set(0)

	settings.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
	}
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		fromStr, toStr := stateToString(from), stateToString(to)
		logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
		metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
	}

	return &CircuitBreakerClient{
		api:  api,
		cb:   gobreaker.NewCircuitBreaker[interface{}](settings),
		name: settings.Name,
	}
}

// State returns the breaker state.
func (cbc *CircuitBreakerClient) State() gobreaker.State {
	return cbc.cb.State()
}

func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
		logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
	case errors.Is(err, ErrNotFound):
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
	}
	return result, err
}

func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// SearchMovie runs a search with circuit breaker protection.
func (cbc *CircuitBreakerClient) SearchMovie(ctx context.Context, query string) (*SearchResult, error) {
	return castResult[SearchResult](cbc.execute(func() (interface{}, error) {
		return cbc.api.SearchMovie(ctx, query)
	}))
}

// FindMovie returns the first search result with circuit breaker protection.
func (cbc *CircuitBreakerClient) FindMovie(ctx context.Context, title string) (*Movie, error) {
	return castResult[Movie](cbc.execute(func() (interface{}, error) {
		return cbc.api.FindMovie(ctx, title)
	}))
}

// MovieDetails fetches details with circuit breaker protection.
func (cbc *CircuitBreakerClient) MovieDetails(ctx context.Context, id int) (*Details, error) {
	return castResult[Details](cbc.execute(func() (interface{}, error) {
		return cbc.api.MovieDetails(ctx, id)
	}))
}

// MovieCredits fetches credits with circuit breaker protection.
func (cbc *CircuitBreakerClient) MovieCredits(ctx context.Context, id int) (*Credits, error) {
	return castResult[Credits](cbc.execute(func() (interface{}, error) {
		return cbc.api.MovieCredits(ctx, id)
	}))
}

// MovieReviews fetches reviews with circuit breaker protection.
func (cbc *CircuitBreakerClient) MovieReviews(ctx context.Context, id int) (*Reviews, error) {
	return castResult[Reviews](cbc.execute(func() (interface{}, error) {
		return cbc.api.MovieReviews(ctx, id)
	}))
}

// MovieVideos fetches videos with circuit breaker protection.
func (cbc *CircuitBreakerClient) MovieVideos(ctx context.Context, id int) (*Videos, error) {
	return castResult[Videos](cbc.execute(func() (interface{}, error) {
		return cbc.api.MovieVideos(ctx, id)
	}))
}

// WatchProviders fetches watch providers with circuit breaker protection.
func (cbc *CircuitBreakerClient) WatchProviders(ctx context.Context, id int) (*WatchProviders, error) {
	return castResult[WatchProviders](cbc.execute(func() (interface{}, error) {
		return cbc.api.WatchProviders(ctx, id)
	}))
}
