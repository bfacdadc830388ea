package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisKVRepository struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisKVRepository creates a KVRepository on Redis. Every key is stored as prefix+key.
func NewRedisKVRepository(rdb redis.Cmdable, prefix string) KVRepository {
	return &redisKVRepository{rdb: rdb, prefix: prefix}
}

func (r *redisKVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value without expiry; sessions have no TTL
func (r *redisKVRepository) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *redisKVRepository) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}
