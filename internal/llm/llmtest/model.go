// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package llmtest provides a scripted llm.Model for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/llm"
)

// ErrUnscripted is returned when a Model has no handler.
var ErrUnscripted = errors.New("llmtest: no handler configured")

// Model answers requests through Handler and records them.
type Model struct {
	Handler func(req llm.Request) (*llm.Response, error)

	mu       sync.Mutex
	requests []llm.Request
}

// Complete implements llm.Model.
func (m *Model) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Handler == nil {
		return nil, ErrUnscripted
	}
	return m.Handler(req)
}

// Requests returns a copy of every request received.
func (m *Model) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Reply returns a Model that always answers with resp and err.
func Reply(resp *llm.Response, err error) *Model {
	return &Model{Handler: func(llm.Request) (*llm.Response, error) { return resp, err }}
}

// Text is a plain text response.
func Text(content string) *llm.Response {
	return &llm.Response{Content: content}
}

// JSON is a structured response holding v encoded as JSON.
func JSON(v interface{}) *llm.Response {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return &llm.Response{Content: string(raw)}
}

// Call is a response with a single function call whose arguments are args
// encoded as JSON.
func Call(name string, args interface{}) *llm.Response {
	raw, err := json.Marshal(args)
	if err != nil {
		panic(err)
	}
	return &llm.Response{ToolCalls: []llm.ToolCall{{Name: name, Arguments: string(raw)}}}
}
