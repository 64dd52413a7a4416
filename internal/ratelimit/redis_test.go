package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStore_Increment(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	count, ttl, err := store.Increment(ctx, "global:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.LessOrEqual(t, ttl, time.Minute)
	assert.Greater(t, ttl, 50*time.Second)

	count, _, err = store.Increment(ctx, "global:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, _, err = store.Increment(ctx, "login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRedisStore_WindowExpires(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := store.Increment(ctx, "k", 300*time.Millisecond)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		n, err := client.Exists(ctx, redisKeyPrefix+"k").Result()
		return err == nil && n == 0
	}, 5*time.Second, 50*time.Millisecond)

	count, _, err := store.Increment(ctx, "k", 300*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRedisStore_WithLimiter(t *testing.T) {
	client := newTestRedis(t)
	limiter := NewLimiter(NewRedisStore(client), ScopeLogin, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := limiter.Allow(ctx, "ip")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	res, err := limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Minute)
}
