// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package tmdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/cinematch/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(&config.TMDbConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/",
		Language:   "en-US",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		CacheTTL:   time.Minute,
	})
	c.retryBaseDelay = time.Millisecond
	t.Cleanup(c.Close)
	return c
}

func TestSearchMovie(t *testing.T) {
	t.Parallel()

	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/search/movie" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_key") != "test-key" || q.Get("query") != "Man on Fire" || q.Get("language") != "en-US" {
			t.Errorf("unexpected query %v", q)
		}
		_, _ = io.WriteString(w, `{"page":1,"results":[{"id":9509,"title":"Man on Fire","vote_average":7.7}],"total_results":1}`)
	})

	got, err := c.SearchMovie(context.Background(), "Man on Fire")
	if err != nil {
		t.Fatalf("SearchMovie: %v", err)
	}
	if len(got.Results) != 1 || got.Results[0].ID != 9509 || got.Results[0].VoteAverage != 7.7 {
		t.Errorf("unexpected result %+v", got)
	}

	if _, err := c.SearchMovie(context.Background(), "  man on fire "); err != nil {
		t.Fatalf("cached SearchMovie: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("server calls = %d, want 1 (second search should hit cache)", n)
	}
}

func TestFindMovieNotFound(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"page":1,"results":[],"total_results":0}`)
	})

	if _, err := c.FindMovie(context.Background(), "Nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMovieEndpoints(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/42":
			_, _ = io.WriteString(w, `{"id":42,"title":"Heat","runtime":170,"genres":[{"id":1,"name":"Crime"}],"vote_average":7.9}`)
		case "/movie/42/credits":
			_, _ = io.WriteString(w, `{"id":42,"cast":[{"name":"Al Pacino","character":"Vincent Hanna"}],"crew":[{"name":"Michael Mann","job":"Director"}]}`)
		case "/movie/42/reviews":
			_, _ = io.WriteString(w, `{"id":42,"results":[{"author":"a","content":"Great."}]}`)
		case "/movie/42/videos":
			_, _ = io.WriteString(w, `{"id":42,"results":[{"key":"abc","site":"YouTube","type":"Trailer","official":true}]}`)
		case "/movie/42/watch/providers":
			_, _ = io.WriteString(w, `{"id":42,"results":{"US":{"flatrate":[{"provider_name":"Netflix"}]}}}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	details, err := c.MovieDetails(ctx, 42)
	if err != nil || details.Runtime != 170 || details.Genres[0].Name != "Crime" {
		t.Errorf("MovieDetails = %+v, %v", details, err)
	}
	credits, err := c.MovieCredits(ctx, 42)
	if err != nil || credits.Crew[0].Job != "Director" {
		t.Errorf("MovieCredits = %+v, %v", credits, err)
	}
	reviews, err := c.MovieReviews(ctx, 42)
	if err != nil || reviews.Results[0].Content != "Great." {
		t.Errorf("MovieReviews = %+v, %v", reviews, err)
	}
	videos, err := c.MovieVideos(ctx, 42)
	if err != nil || !videos.Results[0].Official {
		t.Errorf("MovieVideos = %+v, %v", videos, err)
	}
	providers, err := c.WatchProviders(ctx, 42)
	if err != nil || providers.Results["US"].Flatrate[0].ProviderName != "Netflix" {
		t.Errorf("WatchProviders = %+v, %v", providers, err)
	}

	if _, err := c.MovieDetails(ctx, 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("404 err = %v, want ErrNotFound", err)
	}
}

func TestRateLimitRetry(t *testing.T) {
	t.Parallel()

	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{"id":1,"title":"Ronin"}`)
	})

	got, err := c.MovieDetails(context.Background(), 1)
	if err != nil {
		t.Fatalf("MovieDetails: %v", err)
	}
	if got.Title != "Ronin" {
		t.Errorf("Title = %q", got.Title)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestRateLimitExhausted(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if _, err := c.MovieDetails(context.Background(), 1); err == nil {
		t.Fatal("expected error after retries")
	}
}

func TestServerError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"status_message":"boom"}`)
	})

	_, err := c.MovieVideos(context.Background(), 1)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want server error", err)
	}
}

func TestServerErrorRetried(t *testing.T) {
	t.Parallel()

	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"id":1,"title":"Heat"}`)
	})

	got, err := c.MovieDetails(context.Background(), 1)
	if err != nil {
		t.Fatalf("MovieDetails: %v", err)
	}
	if got.Title != "Heat" {
		t.Errorf("title = %q", got.Title)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestTransportErrorOmitsAPIKey(t *testing.T) {
	t.Parallel()

	c := NewClient(&config.TMDbConfig{
		APIKey:  "sekret-key-123",
		BaseURL: "http://127.0.0.1:1",
		Timeout: time.Second,
	})
	t.Cleanup(c.Close)

	_, err := c.FindMovie(context.Background(), "Heat")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), "sekret-key-123") || strings.Contains(err.Error(), "api_key") {
		t.Errorf("error leaks credentials: %v", err)
	}
}

func TestResolveID(t *testing.T) {
	t.Parallel()

	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = io.WriteString(w, `{"results":[{"id":11,"title":"Heat"}]}`)
	})

	id, err := ResolveID(context.Background(), c, "Heat", 99)
	if err != nil || id != 99 {
		t.Errorf("known id: got %d, %v", id, err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("known id should not search")
	}

	id, err = ResolveID(context.Background(), c, "Heat", 0)
	if err != nil || id != 11 {
		t.Errorf("search: got %d, %v", id, err)
	}
}
