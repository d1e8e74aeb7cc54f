// Package store keeps conversation history between agent runs.
package store

import (
	"context"

	"github.com/tessellate-ai/agentic/llm"
)

// MessageStore keeps per-chat message history.
type MessageStore interface {
	Messages(ctx context.Context, chatID string) []llm.Message
	Add(ctx context.Context, chatID string, msg llm.Message) error
	Reset(ctx context.Context, chatID string) error
}
