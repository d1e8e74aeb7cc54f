// Package openaimodel implements the model boundary on top of any
// OpenAI-compatible chat completion API.
package openaimodel

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tessellate-ai/agentic/llm"
)

type Model struct {
	client openai.Client
	name   string
}

var _ llm.Model = (*Model)(nil)

// New creates a model client for the configured provider.
func New(cfg *llm.ProviderConfig) (*Model, error) {
	if cfg.DefaultModel == "" {
		return nil, errors.New("no model configured")
	}

	opts := []option.RequestOption{}
	if cfg.Token != "" {
		opts = append(opts, option.WithAPIKey(cfg.Token))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Model{
		client: openai.NewClient(opts...),
		name:   cfg.DefaultModel,
	}, nil
}

// GetName returns the model name.
func (m *Model) GetName() string {
	return m.name
}

func (m *Model) Generate(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	co := llm.NewCallOptions(opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(m.name),
	}
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case llm.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}
	if co.Temperature != nil {
		params.Temperature = openai.Float(*co.Temperature)
	}
	if co.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(co.MaxTokens))
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.Newf("model %s returned no choices", m.name)
	}
	return resp.Choices[0].Message.Content, nil
}
