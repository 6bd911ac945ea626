package revalidate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const eventChannel = "infernos:revalidate"

// RedisManager drops the cached rendering for a view path and publishes a
// revalidation event for out-of-process renderers.
type RedisManager struct {
	client *redis.Client
	log    *zap.Logger
}

type event struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	TS   int64  `json:"ts"`
}

func NewRedisManager(redisURL string, log *zap.Logger) (*RedisManager, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opt.PoolSize = 10
	opt.MinIdleConns = 3

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisManager{client: client, log: log}, nil
}

func (m *RedisManager) Invalidate(ctx context.Context, path string) {
	if err := m.client.Del(ctx, "view:"+path).Err(); err != nil {
		m.log.Warn("view cache delete failed", zap.String("path", path), zap.Error(err))
	}

	payload, err := json.Marshal(event{
		ID:   uuid.NewString(),
		Path: path,
		TS:   time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	if err := m.client.Publish(ctx, eventChannel, payload).Err(); err != nil {
		m.log.Warn("revalidate publish failed", zap.String("path", path), zap.Error(err))
	}
}

func (m *RedisManager) Close() error {
	return m.client.Close()
}
