// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package retrieval

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/tomtom215/cinematch/internal/config"
)

type fakeMilvus struct {
	results []client.SearchResult
	err     error

	collection   string
	outputFields []string
	vectorField  string
	metric       entity.MetricType
	topK         int
	closed       bool
}

func (f *fakeMilvus) Search(_ context.Context, collName string, _ []string, _ string,
	outputFields []string, _ []entity.Vector, vectorField string,
	metricType entity.MetricType, topK int, _ entity.SearchParam,
	_ ...client.SearchQueryOptionFunc) ([]client.SearchResult, error) {
	f.collection = collName
	f.outputFields = outputFields
	f.vectorField = vectorField
	f.metric = metricType
	f.topK = topK
	return f.results, f.err
}

func (f *fakeMilvus) Close() error {
	f.closed = true
	return nil
}

var testMilvusConfig = &config.MilvusConfig{
	Collection:  "movies",
	TextField:   "text",
	VectorField: "embedding",
	NProbe:      10,
}

func TestMilvusStoreSearch(t *testing.T) {
	t.Parallel()

	fake := &fakeMilvus{results: []client.SearchResult{{
		ResultCount: 2,
		Fields: client.ResultSet{
			entity.NewColumnVarChar("text", []string{"Movie title: Heat", "Movie title: Ronin"}),
		},
		Scores: []float32{0.9, 0.8},
	}}}
	store, err := newMilvusStore(fake, testMilvusConfig)
	if err != nil {
		t.Fatalf("newMilvusStore: %v", err)
	}

	got, err := store.Search(context.Background(), []float32{0.1, 0.2}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Movie title: Heat", "Movie title: Ronin"}) {
		t.Errorf("Search = %v", got)
	}
	if fake.collection != "movies" || fake.vectorField != "embedding" || fake.topK != 3 {
		t.Errorf("unexpected call: %+v", fake)
	}
	if fake.metric != entity.COSINE {
		t.Errorf("metric = %v, want COSINE", fake.metric)
	}
	if !reflect.DeepEqual(fake.outputFields, []string{"text"}) {
		t.Errorf("outputFields = %v", fake.outputFields)
	}

	if err := store.Close(); err != nil || !fake.closed {
		t.Errorf("Close() = %v, closed %v", err, fake.closed)
	}
}

func TestMilvusStoreSearchErrors(t *testing.T) {
	t.Parallel()

	t.Run("call failure", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("unavailable")
		store, _ := newMilvusStore(&fakeMilvus{err: boom}, testMilvusConfig)
		if _, err := store.Search(context.Background(), []float32{1}, 3); !errors.Is(err, boom) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("wrong column type", func(t *testing.T) {
		t.Parallel()
		fake := &fakeMilvus{results: []client.SearchResult{{
			Fields: client.ResultSet{entity.NewColumnInt64("text", []int64{1})},
		}}}
		store, _ := newMilvusStore(fake, testMilvusConfig)
		if _, err := store.Search(context.Background(), []float32{1}, 3); err == nil {
			t.Error("expected type error")
		}
	})
}
