package telemetry

import (
	"context"
	"fmt"

	"disease-detector/internal/common/redis"
)

// DefaultStream is the Redis stream prediction events are appended to.
const DefaultStream = "disease-detector:predictions"

// RedisStreamObserver appends each event to a Redis stream as JSON.
type RedisStreamObserver struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStreamObserver 创建 Redis Streams 观察者；maxLen <= 0 不裁剪
func NewRedisStreamObserver(client *redis.Client, stream string, maxLen int64) *RedisStreamObserver {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStreamObserver{client: client, stream: stream, maxLen: maxLen}
}

// Observe 写入 stream
func (o *RedisStreamObserver) Observe(ctx context.Context, e Event) error {
	if _, err := redis.PublishJSONToStream(ctx, o.client, o.stream, o.maxLen, e); err != nil {
		return fmt.Errorf("publish event to %s: %w", o.stream, err)
	}
	return nil
}
