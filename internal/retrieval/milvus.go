// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package retrieval

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
)

// milvusSearcher is the part of client.Client used for queries.
type milvusSearcher interface {
	Search(ctx context.Context, collName string, partitions []string, expr string,
		outputFields []string, vectors []entity.Vector, vectorField string,
		metricType entity.MetricType, topK int, sp entity.SearchParam,
		opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error)
	Close() error
}

// MilvusStore searches a Milvus collection with a VarChar text field and a
// FloatVector embedding field using cosine similarity.
type MilvusStore struct {
	client      milvusSearcher
	collection  string
	textField   string
	vectorField string
	params      entity.SearchParam
}

// NewMilvusStore connects to Milvus and checks that the collection exists.
func NewMilvusStore(ctx context.Context, cfg *config.MilvusConfig) (*MilvusStore, error) {
	c, err := client.NewGrpcClient(ctx, cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("connect to milvus at %s: %w", cfg.Address, err)
	}

	exists, err := c.HasCollection(ctx, cfg.Collection)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("check milvus collection %s: %w", cfg.Collection, err)
	}
	if !exists {
		_ = c.Close()
		return nil, fmt.Errorf("milvus collection %s does not exist", cfg.Collection)
	}

	store, err := newMilvusStore(c, cfg)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	logging.Info().
		Str("address", cfg.Address).
		Str("collection", cfg.Collection).
		Msg("Connected to Milvus")
	return store, nil
}

func newMilvusStore(c milvusSearcher, cfg *config.MilvusConfig) (*MilvusStore, error) {
	nprobe := cfg.NProbe
	if nprobe <= 0 {
		nprobe = 10
	}
	sp, err := entity.NewIndexIvfFlatSearchParam(nprobe)
	if err != nil {
		return nil, fmt.Errorf("create milvus search params: %w", err)
	}

	return &MilvusStore{
		client:      c,
		collection:  cfg.Collection,
		textField:   cfg.TextField,
		vectorField: cfg.VectorField,
		params:      sp,
	}, nil
}

// Name identifies the backend in metrics.
func (s *MilvusStore) Name() string { return "milvus" }

// Search returns the text field of the topK nearest entities.
func (s *MilvusStore) Search(ctx context.Context, vector []float32, topK int) ([]string, error) {
	results, err := s.client.Search(
		ctx,
		s.collection,
		[]string{},
		"",
		[]string{s.textField},
		[]entity.Vector{entity.FloatVector(vector)},
		s.vectorField,
		entity.COSINE,
		topK,
		s.params,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search: %w", err)
	}

	var passages []string
	for _, result := range results {
		if result.Err != nil {
			return nil, fmt.Errorf("milvus search result: %w", result.Err)
		}
		for _, col := range result.Fields {
			if col.Name() != s.textField {
				continue
			}
			texts, ok := col.(*entity.ColumnVarChar)
			if !ok {
				return nil, fmt.Errorf("milvus field %s has type %T, want VarChar", s.textField, col)
			}
			passages = append(passages, texts.Data()...)
		}
	}
	return passages, nil
}

// Close releases the gRPC connection.
func (s *MilvusStore) Close() error {
	return s.client.Close()
}
