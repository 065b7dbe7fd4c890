// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package conversation drives the free chat that follows the recommendations.
package conversation

import (
	"context"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/llm"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/models"
)

// Messages shown to the user.
const (
	DefaultFarewell      = "Alright then! If you have more questions in the future, feel free to reach out."
	EmptyReplyMessage    = "Something went wrong while generating a response. Please try again."
	ModelFailureMessage  = "Something went wrong while contacting the model. Please try again."
	endConversationTool  = "end_conversation"
	descriptionsFallback = "[]"
)

type endArgs struct {
	Message string `json:"message,omitempty" jsonschema:"description=Final message to the user to wrap up the conversation"`
}

var endTool = llm.NewTool[endArgs](endConversationTool, "Signal to end the conversation gracefully")

const systemPromptTemplate = `You are a knowledgeable and helpful assistant specialized exclusively in answering questions about movies.

Below are detailed descriptions of the movies recommended to the user:

%DESCRIPTIONS%

Prioritize information from these descriptions and fall back to general movie knowledge only when necessary.

In the conversation history, the movie currently presented to the user follows the line "🎬 Here's a movie you might enjoy:". "This movie" refers to that one, although the user may ask about the other recommendations as well.

Guidelines:
- Answer only questions about movies or movie-related topics. Politely decline anything else and invite a movie question instead.
- Bring the conversation to a natural close once the user has had enough help.
- Every few messages, ask whether the user would like to keep chatting about movies or wrap up.
- If the user wants to end the conversation (says bye, thanks, no more questions), call the function 'end_conversation'.`

// Reply is the outcome of one chat turn. Error replies carry a message for
// the user but never end the conversation.
type Reply struct {
	EndConversation bool   `json:"end_conversation"`
	Message         string `json:"message"`
	Error           bool   `json:"error"`
}

// Manager answers free-chat messages with the chat model.
type Manager struct {
	model llm.Model
}

// NewManager creates a conversation manager.
func NewManager(model llm.Model) *Manager {
	return &Manager{model: model}
}

// Continue answers userMessage given the transcript so far and the
// background on the recommended movies.
func (m *Manager) Continue(ctx context.Context, transcript []models.Message, descriptions []models.MovieDescription, userMessage string) Reply {
	logger := logging.Ctx(ctx)

	resp, err := m.model.Complete(ctx, llm.Request{
		Tier:    llm.TierChat,
		System:  SystemPrompt(descriptions),
		History: transcript,
		User:    userMessage,
		Tools:   []llm.Tool{endTool},
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Chat completion failed")
		return Reply{Error: true, Message: ModelFailureMessage}
	}

	if call, ok := resp.FindToolCall(endConversationTool); ok {
		return Reply{EndConversation: true, Message: farewell(call.Arguments)}
	}

	if strings.TrimSpace(resp.Content) == "" {
		logger.Warn().Msg("Chat completion returned neither text nor a function call")
		return Reply{Error: true, Message: EmptyReplyMessage}
	}
	return Reply{Message: resp.Content}
}

// SystemPrompt renders the chat instructions with descriptions embedded as
// JSON.
func SystemPrompt(descriptions []models.MovieDescription) string {
	encoded := descriptionsFallback
	if len(descriptions) > 0 {
		if raw, err := json.MarshalIndent(descriptions, "", "  "); err == nil {
			encoded = string(raw)
		}
	}
	return strings.Replace(systemPromptTemplate, "%DESCRIPTIONS%", encoded, 1)
}

func farewell(arguments string) string {
	var args endArgs
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return DefaultFarewell
		}
	}
	if strings.TrimSpace(args.Message) == "" {
		return DefaultFarewell
	}
	return args.Message
}
