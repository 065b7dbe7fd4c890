// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinematch/config.yaml",
	"/etc/cinematch/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         90 * time.Second, // generation chains several model calls
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		OpenAI: OpenAIConfig{
			ChatModel:      "gpt-4o",
			ToolModel:      "gpt-4o",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.7,
			Timeout:        60 * time.Second,
			MaxRetries:     2,
		},
		TMDb: TMDbConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			Language:          "en-US",
			Timeout:           10 * time.Second,
			MaxEntries:        3,
			RequestsPerSecond: 20,
			MaxRetries:        3,
			CacheTTL:          15 * time.Minute,
		},
		Milvus: MilvusConfig{
			Address:     "localhost:19530",
			Collection:  "movies",
			TextField:   "text",
			VectorField: "embedding",
			NProbe:      10,
		},
		Retrieval: RetrievalConfig{
			Backend: "milvus",
			TopK:    3,
		},
		Session: SessionConfig{
			Store:           "memory",
			Path:            "/data/sessions",
			TTL:             24 * time.Hour,
			CleanupInterval: 15 * time.Minute,
		},
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 256,
			MaxEvents:  10000,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults
//  2. Config file (optional)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when set from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// OpenAI
	"openai_api_key":         "openai.api_key",
	"openai_base_url":        "openai.base_url",
	"openai_chat_model":      "openai.chat_model",
	"openai_tool_model":      "openai.tool_model",
	"openai_embedding_model": "openai.embedding_model",
	"openai_temperature":     "openai.temperature",
	"openai_timeout":         "openai.timeout",
	"openai_max_retries":     "openai.max_retries",

	// TMDb
	"tmdb_api_key":             "tmdb.api_key",
	"tmdb_base_url":            "tmdb.base_url",
	"tmdb_language":            "tmdb.language",
	"tmdb_timeout":             "tmdb.timeout",
	"tmdb_max_entries":         "tmdb.max_entries",
	"tmdb_requests_per_second": "tmdb.requests_per_second",
	"tmdb_max_retries":         "tmdb.max_retries",
	"tmdb_cache_ttl":           "tmdb.cache_ttl",

	// Milvus
	"milvus_address":      "milvus.address",
	"milvus_collection":   "milvus.collection",
	"milvus_text_field":   "milvus.text_field",
	"milvus_vector_field": "milvus.vector_field",
	"milvus_nprobe":       "milvus.nprobe",

	// Retrieval
	"retrieval_backend":     "retrieval.backend",
	"retrieval_top_k":       "retrieval.top_k",
	"retrieval_corpus_path": "retrieval.corpus_path",

	// Sessions
	"session_store":            "session.store",
	"session_store_path":       "session.path",
	"session_ttl":              "session.ttl",
	"session_cleanup_interval": "session.cleanup_interval",

	// Events
	"events_enabled":     "events.enabled",
	"events_buffer_size": "events.buffer_size",
	"events_max_events":  "events.max_events",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unknown variables map to "" and are skipped.
//
//   - OPENAI_API_KEY -> openai.api_key
//   - TMDB_API_KEY -> tmdb.api_key
//   - SESSION_STORE_PATH -> session.path
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
