// Package cache wraps the Redis client shared by the rate limiter and the
// read-through caches in app/services. A nil *Redis is a valid, always-miss
// cache, so callers never branch on whether REDIS_ADDR is set.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "near2door:"

type Redis struct {
	client *redis.Client
}

// Connect dials addr and verifies the connection with a ping.
func Connect(ctx context.Context, addr, password string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

// Client exposes the underlying client (used by the distributed limiter).
func (c *Redis) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.client
}

// Get unmarshals the value under key into dest. Reports a hit.
func (c *Redis) Get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}

	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(val, dest) == nil
}

// Set stores value as JSON under key for ttl.
func (c *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+key, data, ttl).Err()
}

// Del removes keys. Missing keys are not an error.
func (c *Redis) Del(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}
	err := c.client.Del(ctx, full...).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (c *Redis) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
