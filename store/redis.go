package store

import (
	"context"
	"encoding/json"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
	"github.com/tessellate-ai/agentic/llm"
)

var logger = xlog.NewPackageLogger("github.com/tessellate-ai/agentic", "store")

// maxStoredMessages limits the history kept per chat.
const maxStoredMessages = 50

// The redis store implements the MessageStore interface using Redis as the backend.
// Messages are kept in a list under `/<prefix>/chatstore/messages/<chatID>`,
// trimmed to the most recent maxStoredMessages entries.

type redisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) MessageStore {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (m *redisStore) getRedisMessagesKey(chatID string) string {
	return path.Join(m.prefix, "chatstore", "messages", chatID)
}

func (m *redisStore) Messages(ctx context.Context, chatID string) []llm.Message {
	key := m.getRedisMessagesKey(chatID)
	data, err := m.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "GetRedisMessages", "err", err.Error())
		return nil
	}

	var messages []llm.Message
	for _, item := range data {
		var msg llm.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			logger.ContextKV(ctx, xlog.ERROR, "reason", "unmarshal message", "err", err.Error())
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

func (m *redisStore) Add(ctx context.Context, chatID string, msg llm.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}

	key := m.getRedisMessagesKey(chatID)
	pipe := m.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -maxStoredMessages, -1)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to store message in Redis")
	}
	return nil
}

func (m *redisStore) Reset(ctx context.Context, chatID string) error {
	err := m.client.Del(ctx, m.getRedisMessagesKey(chatID)).Err()
	if err != nil {
		return errors.Wrap(err, "failed to reset chat in Redis")
	}
	return nil
}
