package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentic/llm"
	"github.com/tessellate-ai/agentic/store"
	rediscon "github.com/testcontainers/testcontainers-go/modules/redis"
)

func Test_RedisStore(t *testing.T) {
	ctx := context.Background()
	redisContainer, err := rediscon.Run(ctx, "redis:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, redisContainer.Terminate(ctx))
	})

	state, err := redisContainer.State(ctx)
	require.NoError(t, err)
	require.True(t, state.Running)

	root := fmt.Sprintf("test-%d", time.Now().Unix())

	host, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	options, err := redis.ParseURL(host)
	require.NoError(t, err)

	client := redis.NewClient(options)

	rs := client.Ping(ctx) // Ensure the connection is established
	require.NoError(t, rs.Err(), "failed to connect to Redis")

	st := store.NewRedisStore(client, root)

	chatID := "chat1"
	msg1 := llm.UserMessage("Hello")
	msg2 := llm.AssistantMessage("Hi there!")

	assert.Empty(t, st.Messages(ctx, chatID))

	require.NoError(t, st.Add(ctx, chatID, msg1))
	require.NoError(t, st.Add(ctx, chatID, msg2))

	messages := st.Messages(ctx, chatID)
	require.Equal(t, 2, len(messages))
	assert.Equal(t, msg1.Role, messages[0].Role)
	assert.Equal(t, msg1.Content, messages[0].Content)
	assert.Equal(t, msg2.Role, messages[1].Role)
	assert.Equal(t, msg2.Content, messages[1].Content)

	assert.Empty(t, st.Messages(ctx, "chat2"))

	require.NoError(t, st.Reset(ctx, chatID))
	assert.Empty(t, st.Messages(ctx, chatID))
}
