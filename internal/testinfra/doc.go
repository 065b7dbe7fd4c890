// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package testinfra provides container-backed infrastructure for integration tests.
//
// It uses testcontainers-go to run real dependencies in Docker. Everything
// in this package is behind the integration build tag:
//
//	go test -tags integration ./internal/retrieval/...
//
// # Milvus Container
//
// MilvusContainer runs Milvus standalone with embedded etcd and local
// storage, enough to create a collection, insert vectors and search:
//
//	func TestMilvusSearch(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    milvus, err := testinfra.NewMilvusContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    testinfra.CleanupContainer(t, milvus)
//	    // connect to milvus.Address
//	}
package testinfra
