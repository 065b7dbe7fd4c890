// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package llm

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
)

// Tier selects which configured model serves a request.
type Tier int

const (
	// TierChat is the conversational model.
	TierChat Tier = iota
	// TierTool is the model used for function calls and classification.
	TierTool
)

// Request describes one chat-completion call.
type Request struct {
	Tier    Tier
	System  string
	History []models.Message
	User    string

	// Temperature overrides the configured default when non-nil.
	Temperature *float64

	// Tools are offered to the model. ForceTool, when set, names the tool
	// the model must call.
	Tools     []Tool
	ForceTool string

	// Schema, when set, constrains the reply to strict JSON.
	Schema *Schema
}

// ToolCall is a function call emitted by the model.
type ToolCall struct {
	Name      string
	Arguments string
}

// Response is the first choice of a completion.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// FindToolCall returns the first call to the named function.
func (r *Response) FindToolCall(name string) (ToolCall, bool) {
	for _, tc := range r.ToolCalls {
		if tc.Name == name {
			return tc, true
		}
	}
	return ToolCall{}, false
}

// Model is a chat-completion backend.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Temperature returns a pointer for Request.Temperature.
func Temperature(t float64) *float64 {
	return &t
}

// ExtractStructured sends req with a strict response schema reflected from T
// and decodes the reply. Transport failures are returned wrapped; replies
// that do not decode into T yield a *ParseError.
func ExtractStructured[T any](ctx context.Context, m Model, req Request, name string) (T, error) {
	var out T
	req.Schema = NewSchema[T](name, "")

	resp, err := m.Complete(ctx, req)
	if err != nil {
		return out, fmt.Errorf("structured completion %s: %w", name, err)
	}
	if resp.Content == "" {
		return out, parseFailure(name, "", ErrEmptyContent)
	}
	if err := json.Unmarshal([]byte(resp.Content), &out); err != nil {
		return out, parseFailure(name, resp.Content, err)
	}
	return out, nil
}

// CallFunction forces the model to call tool and decodes its arguments into T.
// A reply without that call, or with undecodable arguments, yields a *ParseError.
func CallFunction[T any](ctx context.Context, m Model, req Request, tool Tool) (T, error) {
	var out T
	req.Tools = []Tool{tool}
	req.ForceTool = tool.Name

	resp, err := m.Complete(ctx, req)
	if err != nil {
		return out, fmt.Errorf("function call %s: %w", tool.Name, err)
	}
	call, ok := resp.FindToolCall(tool.Name)
	if !ok {
		return out, parseFailure(tool.Name, resp.Content, ErrNoToolCall)
	}
	if err := json.Unmarshal([]byte(call.Arguments), &out); err != nil {
		return out, parseFailure(tool.Name, call.Arguments, err)
	}
	return out, nil
}

func parseFailure(target, raw string, err error) *ParseError {
	metrics.LLMParseErrors.WithLabelValues(target).Inc()
	return &ParseError{Target: target, Raw: raw, Err: err}
}
