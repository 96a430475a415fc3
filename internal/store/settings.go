package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/playmatatu/pegfall/internal/game"
	rediskeys "github.com/playmatatu/pegfall/internal/redis"
)

var _ game.SettingsStore = (*RedisSettings)(nil)

// RedisSettings stores settings as fields of one redis hash.
type RedisSettings struct {
	rdb *redis.Client
	key string
}

func NewRedisSettings(rdb *redis.Client) *RedisSettings {
	return &RedisSettings{rdb: rdb, key: rediskeys.SettingsKey}
}

func (s *RedisSettings) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisSettings) Set(ctx context.Context, key, value string) error {
	return s.rdb.HSet(ctx, s.key, key, value).Err()
}

func (s *RedisSettings) All(ctx context.Context) (map[string]string, error) {
	return s.rdb.HGetAll(ctx, s.key).Result()
}
