// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package tmdb is a client for the subset of The Movie Database v3 API used
// to score, describe and look up recommended movies.
//
// Client handles transport concerns: API key authentication, a token-bucket
// rate limit, exponential backoff on HTTP 429 and 5xx and a short-lived cache
// for searches. CircuitBreakerClient wraps it so a TMDb outage fails fast instead
// of stalling every session.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// ErrNotFound is returned when a search has no results or TMDb answers 404.
var ErrNotFound = errors.New("tmdb: not found")

const maxErrorBodySize = 64 * 1024

// API is the set of TMDb operations used by the recommendation pipeline.
type API interface {
	SearchMovie(ctx context.Context, query string) (*SearchResult, error)
	FindMovie(ctx context.Context, title string) (*Movie, error)
	MovieDetails(ctx context.Context, id int) (*Details, error)
	MovieCredits(ctx context.Context, id int) (*Credits, error)
	MovieReviews(ctx context.Context, id int) (*Reviews, error)
	MovieVideos(ctx context.Context, id int) (*Videos, error)
	WatchProviders(ctx context.Context, id int) (*WatchProviders, error)
}

// Client talks to the TMDb REST API.
type Client struct {
	baseURL        string
	apiKey         string
	language       string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
	searches       *cache.Cache[*SearchResult]
}

// NewClient creates a client from the tmdb configuration section.
func NewClient(cfg *config.TMDbConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		language:       cfg.Language,
		client:         &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(limit, burst),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: time.Second,
		searches:       cache.New[*SearchResult](ttl),
	}
}

// Close releases the search cache.
func (c *Client) Close() {
	c.searches.Close()
}

// SearchMovie runs /search/movie. Results are cached by query.
func (c *Client) SearchMovie(ctx context.Context, query string) (*SearchResult, error) {
	key := cache.GenerateKey("search", strings.ToLower(strings.TrimSpace(query)))
	if cached, ok := c.searches.Get(key); ok {
		metrics.TMDbCacheHits.Inc()
		return cached, nil
	}
	metrics.TMDbCacheMisses.Inc()

	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")

	var result SearchResult
	if err := c.get(ctx, "search", "/search/movie", params, &result); err != nil {
		return nil, err
	}
	c.searches.Set(key, &result)
	return &result, nil
}

// FindMovie returns the first search result for title, or ErrNotFound.
func (c *Client) FindMovie(ctx context.Context, title string) (*Movie, error) {
	return firstResult(c.SearchMovie(ctx, title))
}

// MovieDetails runs /movie/{id}.
func (c *Client) MovieDetails(ctx context.Context, id int) (*Details, error) {
	var result Details
	if err := c.get(ctx, "details", fmt.Sprintf("/movie/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MovieCredits runs /movie/{id}/credits.
func (c *Client) MovieCredits(ctx context.Context, id int) (*Credits, error) {
	var result Credits
	if err := c.get(ctx, "credits", fmt.Sprintf("/movie/%d/credits", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MovieReviews runs /movie/{id}/reviews.
func (c *Client) MovieReviews(ctx context.Context, id int) (*Reviews, error) {
	var result Reviews
	if err := c.get(ctx, "reviews", fmt.Sprintf("/movie/%d/reviews", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MovieVideos runs /movie/{id}/videos.
func (c *Client) MovieVideos(ctx context.Context, id int) (*Videos, error) {
	var result Videos
	if err := c.get(ctx, "videos", fmt.Sprintf("/movie/%d/videos", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WatchProviders runs /movie/{id}/watch/providers.
func (c *Client) WatchProviders(ctx context.Context, id int) (*WatchProviders, error) {
	var result WatchProviders
	if err := c.get(ctx, "watch_providers", fmt.Sprintf("/movie/%d/watch/providers", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func firstResult(result *SearchResult, err error) (*Movie, error) {
	if err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, ErrNotFound
	}
	movie := result.Results[0]
	return &movie, nil
}

// get performs a GET against path and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	reqURL := c.baseURL + path + "?" + params.Encode()

	start := time.Now()
	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		metrics.RecordTMDbRequest(endpoint, "error", time.Since(start))
		return fmt.Errorf("tmdb %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.RecordTMDbRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body := readBodyForError(resp.Body)
		return fmt.Errorf("tmdb %s failed with status %d: %s", endpoint, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb %s response: %w", endpoint, err)
	}
	return nil
}

// doRequestWithRateLimit waits for the client-side limiter and retries
// HTTP 429 and 5xx responses with exponential backoff, honoring Retry-After.
// A 5xx that outlasts the retries is returned for the caller to report.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", redactTransportError(err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", redactTransportError(err))
		}
		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if attempt >= c.maxRetries {
			if resp.StatusCode != http.StatusTooManyRequests {
				return resp, nil
			}
			_ = resp.Body.Close()
			return nil, fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
		}
		_ = resp.Body.Close()

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil {
				delay = time.Duration(seconds) * time.Second
			}
		}
		logging.Ctx(ctx).Debug().
			Int("attempt", attempt+1).
			Int("status", resp.StatusCode).
			Dur("delay", delay).
			Msg("TMDb request failed, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// redactTransportError drops the request URL, which carries the API key,
// from errors returned by http.Client.Do.
func redactTransportError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	target := "request"
	if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
		u.RawQuery = ""
		target = u.String()
	}
	return fmt.Errorf("%s %s: %w", urlErr.Op, target, urlErr.Err)
}

func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
