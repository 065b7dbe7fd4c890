// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package validation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/cinematch/internal/llm"
)

type fakeModel struct {
	content string
	err     error
	req     llm.Request
}

func (f *fakeModel) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.content}, nil
}

func TestClassifierClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		err     error
		want    Verdict
	}{
		{name: "yes", content: `{"answer":"yes"}`, want: VerdictYes},
		{name: "no", content: `{"answer":"no"}`, want: VerdictNo},
		{name: "unexpected value", content: `{"answer":"maybe"}`, want: VerdictError},
		{name: "malformed", content: `yes`, want: VerdictError},
		{name: "call failure", err: errors.New("timeout"), want: VerdictError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			model := &fakeModel{content: tt.content, err: tt.err}
			got := NewClassifier(model).Classify(context.Background(), "What genres do you typically enjoy?", "thriller")
			if got != tt.want {
				t.Errorf("Classify = %q, want %q", got, tt.want)
			}
			if model.req.Tier != llm.TierTool {
				t.Errorf("Tier = %v, want tool", model.req.Tier)
			}
			if !strings.Contains(model.req.System, "What genres do you typically enjoy?") {
				t.Errorf("question missing from prompt: %q", model.req.System)
			}
		})
	}
}

func TestVerdictLowConfidence(t *testing.T) {
	t.Parallel()

	if !VerdictNo.LowConfidence() {
		t.Error("no should be low confidence")
	}
	if VerdictYes.LowConfidence() || VerdictError.LowConfidence() {
		t.Error("yes and error should not warn")
	}
}
