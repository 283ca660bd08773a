// Package ratelimit provides the Redis-backed token bucket store so
// limits hold across multiple server instances.
package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"liquorpos/internal/core/ratelimit"
)

// RedisStore persists bucket state in Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ ratelimit.Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) Fetch(ctx context.Context, key string) (ratelimit.State, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ratelimit.State{}, false, nil
		}
		return ratelimit.State{}, false, fmt.Errorf("ratelimit fetch: %w", err)
	}

	var st ratelimit.State
	if err := json.Unmarshal(raw, &st); err != nil {
		// Corrupt state resets the bucket rather than blocking traffic.
		return ratelimit.State{}, false, nil
	}
	return st, true, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, st ratelimit.State, ttl time.Duration) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("ratelimit marshal: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("ratelimit save: %w", err)
	}
	return nil
}
