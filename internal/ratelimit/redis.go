package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// The expiry is set by the first hit of a window only; later hits never
// extend it.
var incrementScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// RedisStore shares counters between processes.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreFromURL parses a redis:// URL and connects.
func NewRedisStoreFromURL(ctx context.Context, url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client), nil
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	vals, err := incrementScript.Run(ctx, s.client, []string{redisKeyPrefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("increment %s: %w", key, err)
	}
	if len(vals) != 2 {
		return 0, 0, fmt.Errorf("increment %s: unexpected reply %v", key, vals)
	}
	return vals[0], time.Duration(vals[1]) * time.Millisecond, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
