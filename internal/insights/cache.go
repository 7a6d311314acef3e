package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores generated narratives keyed by prompt hash.
type Cache interface {
	Get(ctx context.Context, key string) (Insights, bool, error)
	Set(ctx context.Context, key string, v Insights) error
}

// RedisCache keeps narratives in Redis with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(addr, password string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		prefix: "fra:insights:",
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Insights, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Insights{}, false, nil
	}
	if err != nil {
		return Insights{}, false, fmt.Errorf("redis get: %w", err)
	}
	var v Insights
	if err := json.Unmarshal(raw, &v); err != nil {
		return Insights{}, false, fmt.Errorf("decode cached insights: %w", err)
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, v Insights) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
