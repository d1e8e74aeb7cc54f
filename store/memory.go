package store

import (
	"context"
	"sync"

	"github.com/tessellate-ai/agentic/llm"
)

type inMemory struct {
	mu      sync.RWMutex
	storage map[string][]llm.Message
}

func NewMemoryStore() MessageStore {
	return &inMemory{}
}

func (m *inMemory) Messages(_ context.Context, chatID string) []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.storage == nil {
		return nil
	}
	return m.storage[chatID]
}

func (m *inMemory) Add(_ context.Context, chatID string, msg llm.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string][]llm.Message)
	}
	m.storage[chatID] = append(m.storage[chatID], msg)
	return nil
}

func (m *inMemory) Reset(_ context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, chatID)
	}
	return nil
}
