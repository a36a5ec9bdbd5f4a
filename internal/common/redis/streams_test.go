package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"egov-event-export/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *goredis.Client {
	mr := miniredis.RunT(t)
	client := NewRedisClient(&config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { Close(client) })
	require.NoError(t, Ping(context.Background(), client))
	return client
}

func TestPublishJSONToStream(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	id, err := PublishJSONToStream(ctx, client, "exports", map[string]int{"documents": 3})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs, err := client.XRange(ctx, "exports", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var payload map[string]int
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &payload))
	assert.Equal(t, 3, payload["documents"])
}

func TestConsumerGroupRoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, CreateConsumerGroup(ctx, client, "triggers", "exporters"))
	// second call is a no-op
	require.NoError(t, CreateConsumerGroup(ctx, client, "triggers", "exporters"))

	_, err := PublishToStream(ctx, client, "triggers", map[string]interface{}{"reason": "node.updated", "nid": 42})
	require.NoError(t, err)

	msgs, err := ReadFromStream(ctx, client, "triggers", "exporters", "worker-1", 10, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "node.updated", msgs[0].Values["reason"])
	assert.Equal(t, "42", msgs[0].Values["nid"])

	require.NoError(t, Ack(ctx, client, "triggers", "exporters", msgs[0].ID))

	pending, err := client.XPending(ctx, "triggers", "exporters").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}
