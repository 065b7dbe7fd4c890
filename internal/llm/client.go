// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
)

// Client implements Model and Embedder on top of the OpenAI API.
type Client struct {
	api            openai.Client
	chatModel      string
	toolModel      string
	embeddingModel string
	temperature    float64
	timeout        time.Duration
}

// NewClient creates a client from the openai configuration section.
func NewClient(cfg *config.OpenAIConfig) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{
		api:            openai.NewClient(opts...),
		chatModel:      cfg.ChatModel,
		toolModel:      cfg.ToolModel,
		embeddingModel: cfg.EmbeddingModel,
		temperature:    cfg.Temperature,
		timeout:        cfg.Timeout,
	}
}

// Complete sends one chat-completion request and returns the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	model := c.modelFor(req.Tier)
	mode := requestMode(req)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := c.buildParams(model, req)

	start := time.Now()
	completion, err := c.api.Chat.Completions.New(ctx, params)
	metrics.RecordLLMRequest(model, mode, time.Since(start), err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("model", model).Str("mode", mode).Msg("Chat completion failed")
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrNoChoices
	}

	msg := completion.Choices[0].Message
	resp := &Response{Content: msg.Content}
	for i := range msg.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{
			Name:      msg.ToolCalls[i].Function.Name,
			Arguments: msg.ToolCalls[i].Function.Arguments,
		})
	}

	logging.Ctx(ctx).Debug().
		Str("model", model).
		Str("mode", mode).
		Int("tool_calls", len(resp.ToolCalls)).
		Dur("duration", time.Since(start)).
		Msg("Chat completion received")

	return resp, nil
}

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	metrics.RecordLLMRequest(c.embeddingModel, "embedding", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("create embedding: %w", ErrEmptyContent)
	}

	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	return vec, nil
}

func (c *Client) modelFor(tier Tier) string {
	if tier == TierTool && c.toolModel != "" {
		return c.toolModel
	}
	return c.chatModel
}

func (c *Client) buildParams(model string, req Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages: buildMessages(req),
		Model:    shared.ChatModel(model),
	}

	temperature := c.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	params.Temperature = openai.Float(temperature)

	for _, tool := range req.Tools {
		def := openai.FunctionDefinitionParam{
			Name:       tool.Name,
			Parameters: openai.FunctionParameters(tool.Parameters),
		}
		if tool.Description != "" {
			def.Description = openai.String(tool.Description)
		}
		params.Tools = append(params.Tools, openai.ChatCompletionFunctionTool(def))
	}

	if req.ForceTool != "" {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfFunctionToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: req.ForceTool},
			},
		}
	} else if len(req.Tools) > 0 {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("auto"),
		}
	}

	if req.Schema != nil {
		schema := openai.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   req.Schema.Name,
			Schema: req.Schema.Definition,
			Strict: openai.Bool(true),
		}
		if req.Schema.Description != "" {
			schema.Description = openai.String(req.Schema.Description)
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schema},
		}
	}

	return params
}

func buildMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	for _, m := range req.History {
		switch m.Role {
		case models.RoleUser:
			msgs = append(msgs, openai.UserMessage(m.Content))
		case models.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		}
	}
	if req.User != "" {
		msgs = append(msgs, openai.UserMessage(req.User))
	}
	return msgs
}

func requestMode(req Request) string {
	switch {
	case req.Schema != nil:
		return "structured"
	case len(req.Tools) > 0:
		return "tool"
	default:
		return "text"
	}
}
