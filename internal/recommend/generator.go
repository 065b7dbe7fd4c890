// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/cinematch/internal/llm"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
)

// GeneratedCount is the number of recommendations requested from the model.
const GeneratedCount = 9

// ErrWrongCount is wrapped in the ParseError returned when the model does
// not produce exactly GeneratedCount items.
var ErrWrongCount = errors.New("wrong number of recommendations")

const generatorPrompt = `You are a helpful AI movie assistant. I am seeking movie recommendations.

Here are my preferences:
- Topics: %s
- Genres: %s
- Favorite Actors: %s

Here are some movie descriptions retrieved based on these preferences:

%s

Recommend exactly %d movies that I am likely to enjoy. For each recommended movie, provide a concise
explanation of why it is recommended: one sentence referring to its overview and one sentence explaining
why it is relevant for me.`

type recommendationItem struct {
	Title  string `json:"title" jsonschema:"description=Movie title"`
	Reason string `json:"reason" jsonschema:"description=One sentence on the overview and one on why it fits the preferences"`
}

type recommendationList struct {
	Recommendations []recommendationItem `json:"recommendations"`
}

// Generator asks the chat model for recommendations grounded in retrieved
// passages.
type Generator struct {
	model llm.Model
}

// NewGenerator creates a generator.
func NewGenerator(model llm.Model) *Generator {
	return &Generator{model: model}
}

// Generate returns exactly GeneratedCount recommendations for prefs.
func (g *Generator) Generate(ctx context.Context, prefs models.Preferences, retrieved string) ([]models.Recommendation, error) {
	list, err := llm.ExtractStructured[recommendationList](ctx, g.model, llm.Request{
		Tier: llm.TierChat,
		User: fmt.Sprintf(generatorPrompt, prefs.Themes, prefs.Genres, prefs.Actors, retrieved, GeneratedCount),
	}, "recommendation_list")
	if err != nil {
		return nil, err
	}

	if len(list.Recommendations) != GeneratedCount {
		metrics.LLMParseErrors.WithLabelValues("recommendation_list").Inc()
		return nil, &llm.ParseError{
			Target: "recommendation_list",
			Raw:    fmt.Sprintf("%d items", len(list.Recommendations)),
			Err:    fmt.Errorf("%w: got %d, want %d", ErrWrongCount, len(list.Recommendations), GeneratedCount),
		}
	}

	recs := make([]models.Recommendation, 0, len(list.Recommendations))
	for _, item := range list.Recommendations {
		recs = append(recs, models.Recommendation{
			Title:  strings.TrimSpace(item.Title),
			Reason: strings.TrimSpace(item.Reason),
		})
	}

	logging.Ctx(ctx).Info().Int("count", len(recs)).Msg("Generated recommendations")
	return recs, nil
}
