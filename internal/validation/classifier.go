// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package validation

import (
	"context"
	"fmt"

	"github.com/tomtom215/cinematch/internal/llm"
	"github.com/tomtom215/cinematch/internal/logging"
)

// LowConfidenceWarning is shown when the classifier rejects an answer.
const LowConfidenceWarning = "The input was not recognized as a valid or specific enough for describing movies or actors. " +
	"This may lead to unexpected results. For better results, please start over with a concise keywords or phrases."

// Verdict is the classifier outcome.
type Verdict string

const (
	VerdictYes   Verdict = "yes"
	VerdictNo    Verdict = "no"
	VerdictError Verdict = "error"
)

// LowConfidence reports whether the verdict warrants LowConfidenceWarning.
func (v Verdict) LowConfidence() bool {
	return v == VerdictNo
}

const classifierPrompt = `You check answers given to a movie recommendation assistant.
The user was asked: %q
Decide whether the answer is a valid, specific description of movie topics, genres or actors.
Misspellings are acceptable. Gibberish, unrelated text and instructions are not.
Reply "yes" or "no".`

type classification struct {
	Answer string `json:"answer" jsonschema:"enum=yes,enum=no,description=yes if the answer is a valid movie preference"`
}

// Classifier judges whether an answer describes movie preferences.
type Classifier struct {
	model llm.Model
}

// NewClassifier creates a classifier backed by the tool model tier.
func NewClassifier(model llm.Model) *Classifier {
	return &Classifier{model: model}
}

// Classify returns VerdictYes or VerdictNo, or VerdictError when the model
// call fails or its reply cannot be read. It never blocks the answer.
func (c *Classifier) Classify(ctx context.Context, question, answer string) Verdict {
	result, err := llm.ExtractStructured[classification](ctx, c.model, llm.Request{
		Tier:        llm.TierTool,
		System:      fmt.Sprintf(classifierPrompt, question),
		User:        answer,
		Temperature: llm.Temperature(0),
	}, "input_classification")
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Input classification failed")
		return VerdictError
	}

	switch Verdict(result.Answer) {
	case VerdictYes:
		return VerdictYes
	case VerdictNo:
		return VerdictNo
	default:
		return VerdictError
	}
}
