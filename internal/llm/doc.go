// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package llm wraps the OpenAI chat-completion and embedding APIs.
//
// Callers depend on the Model interface, which has a single Complete method
// covering the three call modes used by CineMatch:
//
//   - free text (conversation replies)
//   - function calls, optionally forced (rerank echo, lookup normalization,
//     end-of-conversation signal)
//   - strict JSON-schema responses (recommendations, input classification)
//
// Typed results are obtained through the generic helpers ExtractStructured
// and CallFunction. A reply that cannot be decoded into the requested type is
// never returned as an untyped value: the helpers return a *ParseError that
// callers match with errors.As.
//
// Schemas are reflected from Go types with invopop/jsonschema:
//
//	type verdict struct {
//	    Answer string `json:"answer" jsonschema:"enum=yes,enum=no"`
//	}
//	v, err := llm.ExtractStructured[verdict](ctx, model, req, "verdict")
package llm
