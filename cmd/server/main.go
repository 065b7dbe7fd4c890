// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package main is the entry point for the CineMatch server.
//
// CineMatch is a conversational movie recommendation assistant. It asks three
// preference questions, retrieves matching passages from a movie corpus,
// has a language model suggest nine movies, reranks them by TMDb rating and
// then presents the top three with trailer, streaming and free-chat support.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config.yaml and environment (Koanf v2)
//  2. Logging: zerolog, plus an slog bridge for the supervisor
//  3. Language model: OpenAI chat completions and embeddings
//  4. TMDb: rate-limited client behind a circuit breaker
//  5. Retrieval: Milvus collection, or an in-memory index for development
//  6. Events: Watermill GoChannel bus and the activity recorder
//  7. Sessions: memory or BadgerDB store and the conversation service
//  8. HTTP: Chi router with CORS, rate limiting and Prometheus metrics
//  9. Supervisor tree: event recorder, session cleanup and the HTTP server
//
// # Configuration
//
// Required environment variables:
//   - OPENAI_API_KEY
//   - TMDB_API_KEY
//
// Commonly set:
//   - RETRIEVAL_BACKEND: milvus (default) or memory
//   - MILVUS_ADDRESS, MILVUS_COLLECTION
//   - CORPUS_PATH: JSON-lines corpus for the memory backend
//   - SESSION_STORE: memory (default) or badger, with SESSION_STORE_PATH
//   - EVENTS_ENABLED: session activity history (default true)
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree: the HTTP server stops
// accepting connections and drains in-flight requests, then the session
// store and vector store are closed.
//
// # Example Usage
//
//	export OPENAI_API_KEY=sk-...
//	export TMDB_API_KEY=...
//	export RETRIEVAL_BACKEND=memory
//	export CORPUS_PATH=./data/movies.jsonl
//	./cinematch
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/tomtom215/cinematch/internal/api"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/conversation"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/llm"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/lookup"
	"github.com/tomtom215/cinematch/internal/middleware"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/retrieval"
	"github.com/tomtom215/cinematch/internal/session"
	"github.com/tomtom215/cinematch/internal/supervisor"
	"github.com/tomtom215/cinematch/internal/supervisor/services"
	"github.com/tomtom215/cinematch/internal/tmdb"
	"github.com/tomtom215/cinematch/internal/validation"
)

// slowRequestThreshold marks requests logged as slow by the latency tracker.
// Generation spans several model round trips.
const slowRequestThreshold = 20 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   "cinematch",
		Version:   api.Version,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("retrieval_backend", cfg.Retrieval.Backend).
		Str("session_store", cfg.Session.Store).
		Str("chat_model", cfg.OpenAI.ChatModel).
		Msg("Starting CineMatch")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Fatal().Err(err).Msg("CineMatch stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run wires the application and blocks until ctx is canceled.
func run(ctx context.Context, cfg *config.Config) error {
	model := llm.NewClient(&cfg.OpenAI)

	tmdbClient := tmdb.NewCircuitBreakerClient(tmdb.NewClient(&cfg.TMDb))

	store, closeStore, err := openVectorStore(ctx, cfg, model)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, err := session.NewStore(&cfg.Session)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()

	deps := session.Deps{
		Classifier: validation.NewClassifier(model),
		Retriever:  retrieval.NewRetriever(model, store, cfg.Retrieval.TopK),
		Generator:  recommend.NewGenerator(model),
		Reranker:   recommend.NewReranker(model, tmdbClient),
		Describer:  recommend.NewDescriber(tmdbClient, cfg.TMDb.MaxEntries),
		Trailers:   lookup.NewTrailerFinder(model, tmdbClient),
		Providers:  lookup.NewProviderFinder(model, tmdbClient),
		Chat:       conversation.NewManager(model),
	}

	var recorder *events.Recorder
	var history *events.MemoryStore
	if cfg.Events.Enabled {
		bus := events.NewBus(cfg.Events.BufferSize)
		defer func() {
			if err := bus.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus")
			}
		}()
		history = events.NewMemoryStore(cfg.Events.MaxEvents)
		recorder = events.NewRecorder(bus, history)
		deps.Events = events.NewPublisher(bus)
	}

	service := session.NewService(sessions, deps, &cfg.Session)

	handler := api.NewHandler(service, middleware.NewLatencyTracker(1000, slowRequestThreshold))
	handler.RegisterBreaker("tmdb", tmdbClient)
	if history != nil {
		handler.SetEventStore(history)
	}

	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security))).
		WithRequestTimeout(cfg.Server.Timeout)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Writes must outlast the request timeout so the timeout response can be sent.
		WriteTimeout: cfg.Server.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if recorder != nil {
		tree.AddDataService(recorder)
	}
	tree.AddDataService(services.NewSessionCleanupService(service, cfg.Session.CleanupInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, addr, cfg.Server.ShutdownTimeout))

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		tree.LogUnstopped()
		return fmt.Errorf("supervisor tree: %w", err)
	}
	tree.LogUnstopped()
	return nil
}

// openVectorStore connects the configured similarity-search backend. The
// returned close function is safe to call once.
func openVectorStore(ctx context.Context, cfg *config.Config, embedder llm.Embedder) (retrieval.VectorStore, func(), error) {
	switch cfg.Retrieval.Backend {
	case "memory":
		store := retrieval.NewMemoryStore()
		if cfg.Retrieval.CorpusPath != "" {
			if err := store.LoadCorpusFile(ctx, cfg.Retrieval.CorpusPath, embedder); err != nil {
				return nil, nil, fmt.Errorf("load corpus: %w", err)
			}
		}
		logging.Info().Int("passages", store.Len()).Msg("In-memory retrieval index ready")
		return store, func() {}, nil

	case "milvus", "":
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		store, err := retrieval.NewMilvusStore(connectCtx, &cfg.Milvus)
		if err != nil {
			return nil, nil, fmt.Errorf("connect milvus: %w", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing Milvus client")
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown retrieval backend %q", cfg.Retrieval.Backend)
	}
}
