package testsupport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"polyalpha/internal/adapters/polymarket"
	redisclient "polyalpha/internal/adapters/redis"
	"polyalpha/pkg/errors"
)

func TestRedisCacheRoundTripsMarkets(t *testing.T) {
	cache := NewRedisCache(t)
	ctx := context.Background()

	var markets []polymarket.Market
	if err := json.Unmarshal([]byte(`[{"id":"1","slug":"rain","volume":"1500.5","active":true,"icon":"x.png"}]`), &markets); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}

	if err := cache.Set(ctx, "markets:active:0", markets, time.Minute); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	var got []polymarket.Market
	if err := cache.Get(ctx, "markets:active:0", &got); err != nil {
		t.Fatalf("failed to get: %v", err)
	}

	if len(got) != 1 || got[0].Slug != "rain" || got[0].Volume.String() != "1500.5" {
		t.Fatalf("unexpected cached markets %+v", got)
	}
}

func TestRedisCacheMissAndDelete(t *testing.T) {
	cache := NewRedisCache(t)
	ctx := context.Background()

	var v string
	if err := cache.Get(ctx, "slug:missing", &v); !errors.Is(err, redisclient.ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}

	if err := cache.Set(ctx, "slug:rain", "0xabc", 0); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := cache.Delete(ctx, "slug:rain"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if err := cache.Get(ctx, "slug:rain", &v); !errors.Is(err, redisclient.ErrCacheMiss) {
		t.Fatalf("expected cache miss after delete, got %v", err)
	}
}
