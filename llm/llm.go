// Package llm defines the chat model boundary used by agents.
package llm

import (
	"context"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Model generates a completion for a conversation.
type Model interface {
	// GetName returns the model name.
	GetName() string

	Generate(ctx context.Context, messages []Message, opts ...Option) (string, error)
}

// CallOptions are per-call generation settings.
type CallOptions struct {
	Temperature *float64
	MaxTokens   int
}

type Option func(*CallOptions)

func WithTemperature(temperature float64) Option {
	return func(o *CallOptions) {
		o.Temperature = &temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *CallOptions) {
		o.MaxTokens = maxTokens
	}
}

// NewCallOptions applies the options to a fresh CallOptions.
func NewCallOptions(opts ...Option) *CallOptions {
	o := &CallOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
