// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMilvusImage is the Milvus standalone image used in tests.
	DefaultMilvusImage = "milvusdb/milvus:v2.4.17"

	milvusGRPCPort   = "19530/tcp"
	milvusHealthPort = "9091/tcp"
)

// embedEtcdConfig lets standalone Milvus run without an external etcd.
const embedEtcdConfig = `listen-client-urls: http://0.0.0.0:2379
advertise-client-urls: http://0.0.0.0:2379
quota-backend-bytes: 4294967296
auto-compaction-mode: revision
auto-compaction-retention: '1000'
`

// MilvusContainer is a running standalone Milvus instance.
type MilvusContainer struct {
	testcontainers.Container
	// Address is the host:port of the gRPC endpoint.
	Address string
}

// MilvusOption configures the Milvus container.
type MilvusOption func(*milvusConfig)

type milvusConfig struct {
	image        string
	startTimeout time.Duration
}

// WithMilvusImage sets a custom Milvus Docker image.
func WithMilvusImage(image string) MilvusOption {
	return func(c *milvusConfig) {
		c.image = image
	}
}

// WithStartTimeout sets the timeout for waiting for Milvus to become healthy.
func WithStartTimeout(timeout time.Duration) MilvusOption {
	return func(c *milvusConfig) {
		c.startTimeout = timeout
	}
}

// NewMilvusContainer starts standalone Milvus with embedded etcd and local
// storage.
//
// Example:
//
//	milvus, err := testinfra.NewMilvusContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	testinfra.CleanupContainer(t, milvus)
//
//	store, err := retrieval.NewMilvusStore(ctx, &config.MilvusConfig{Address: milvus.Address, ...})
func NewMilvusContainer(ctx context.Context, opts ...MilvusOption) (*MilvusContainer, error) {
	cfg := &milvusConfig{
		image:        DefaultMilvusImage,
		startTimeout: 3 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		Cmd:          []string{"milvus", "run", "standalone"},
		ExposedPorts: []string{milvusGRPCPort, milvusHealthPort},
		Env: map[string]string{
			"ETCD_USE_EMBED":     "true",
			"ETCD_DATA_DIR":      "/var/lib/milvus/etcd",
			"ETCD_CONFIG_PATH":   "/milvus/configs/embedEtcd.yaml",
			"COMMON_STORAGETYPE": "local",
		},
		Files: []testcontainers.ContainerFile{{
			Reader:            strings.NewReader(embedEtcdConfig),
			ContainerFilePath: "/milvus/configs/embedEtcd.yaml",
			FileMode:          0o644,
		}},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(milvusGRPCPort),
			wait.ForHTTP("/healthz").WithPort(milvusHealthPort),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create milvus container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, milvusGRPCPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &MilvusContainer{
		Container: container,
		Address:   fmt.Sprintf("%s:%s", host, port.Port()),
	}, nil
}
