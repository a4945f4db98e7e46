package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	redisclient "polyalpha/internal/adapters/redis"
)

// NewRedisCache connects the application cache for integration tests and
// flushes the test database before and after the test.
func NewRedisCache(t *testing.T) *redisclient.Client {
	t.Helper()

	cfg := LoadRedisConfigFromEnv(t)

	raw := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := raw.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush redis before test: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cache, err := redisclient.NewClient(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	t.Cleanup(func() {
		_ = raw.FlushDB(context.Background()).Err()
		_ = raw.Close()
		_ = cache.Close()
	})

	return cache
}
