package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestPublishToStream_StringifiesValues(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	id, err := PublishToStream(ctx, client, "events", 0, map[string]interface{}{
		"name":    "flu",
		"count":   3,
		"score":   0.5,
		"success": true,
		"tags":    []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs, err := ReadRange(ctx, client, "events")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "flu", msgs[0].Values["name"])
	assert.Equal(t, "3", msgs[0].Values["count"])
	assert.Equal(t, "0.5", msgs[0].Values["score"])
	assert.Equal(t, "true", msgs[0].Values["success"])
	assert.Equal(t, `["a","b"]`, msgs[0].Values["tags"])
}

func TestPublishJSONToStream(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	_, err := PublishJSONToStream(ctx, client, "events", 100, map[string]any{"disease": "Flu"})
	require.NoError(t, err)

	msgs, err := ReadRange(ctx, client, "events")
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &payload))
	assert.Equal(t, "Flu", payload["disease"])
	assert.NotEmpty(t, msgs[0].Values["timestamp"])
}

func TestReadRange_EmptyStream(t *testing.T) {
	client := setupTestRedis(t)

	msgs, err := ReadRange(context.Background(), client, "missing")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
