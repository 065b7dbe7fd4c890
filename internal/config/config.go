// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package config loads CineMatch configuration with Koanf v2.
//
// Sources are layered, highest priority last:
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (config.yaml, or the path in CONFIG_PATH)
//  3. Environment variables (see envMappings)
//
// Config is immutable after Load and safe for concurrent reads.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	OpenAI    OpenAIConfig    `koanf:"openai"`
	TMDb      TMDbConfig      `koanf:"tmdb"`
	Milvus    MilvusConfig    `koanf:"milvus"`
	Retrieval RetrievalConfig `koanf:"retrieval"`
	Session   SessionConfig   `koanf:"session"`
	Events    EventsConfig    `koanf:"events"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// OpenAIConfig configures the chat-completion and embedding client.
type OpenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"` // empty uses the OpenAI default

	// ChatModel answers free chat and generates recommendations.
	ChatModel string `koanf:"chat_model"`

	// ToolModel handles forced function calls (rerank echo, lookups) and
	// input classification.
	ToolModel string `koanf:"tool_model"`

	EmbeddingModel string        `koanf:"embedding_model"`
	Temperature    float64       `koanf:"temperature"`
	Timeout        time.Duration `koanf:"timeout"`
	MaxRetries     int           `koanf:"max_retries"`
}

// TMDbConfig configures The Movie Database client.
type TMDbConfig struct {
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url"`
	Language          string        `koanf:"language"`
	Timeout           time.Duration `koanf:"timeout"`
	MaxEntries        int           `koanf:"max_entries"` // cap for cast, crew and reviews
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	MaxRetries        int           `koanf:"max_retries"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
}

// MilvusConfig configures the vector database holding the movie corpus.
type MilvusConfig struct {
	Address     string `koanf:"address"`
	Collection  string `koanf:"collection"`
	TextField   string `koanf:"text_field"`
	VectorField string `koanf:"vector_field"`
	NProbe      int    `koanf:"nprobe"`
}

// RetrievalConfig selects the similarity-search backend.
type RetrievalConfig struct {
	// Backend is "milvus" or "memory". The memory backend indexes CorpusPath
	// at startup and is meant for development.
	Backend    string `koanf:"backend"`
	TopK       int    `koanf:"top_k"`
	CorpusPath string `koanf:"corpus_path"`
}

// SessionConfig configures conversation session persistence.
type SessionConfig struct {
	Store           string        `koanf:"store"` // memory or badger
	Path            string        `koanf:"path"`
	TTL             time.Duration `koanf:"ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// EventsConfig configures the in-process session activity stream.
type EventsConfig struct {
	Enabled    bool  `koanf:"enabled"`
	BufferSize int64 `koanf:"buffer_size"` // per-subscriber channel buffer
	MaxEvents  int   `koanf:"max_events"`  // retained by the recorder
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Load reads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs with ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
