package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSlots keeps slots as plain redis string keys.
type RedisSlots struct {
	Client *redis.Client
}

// NewRedisSlots accepts a redis:// URL or a bare host:port address.
func NewRedisSlots(addr string) *RedisSlots {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		}
	}
	return &RedisSlots{Client: redis.NewClient(opts)}
}

func (r *RedisSlots) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisSlots) Get(ctx context.Context, key string) (string, error) {
	v, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSlotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *RedisSlots) Set(ctx context.Context, key, value string) error {
	if err := r.Client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisSlots) Close() error {
	return r.Client.Close()
}
