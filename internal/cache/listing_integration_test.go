//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/almagid/almagid/internal/model"
	"github.com/almagid/almagid/internal/testutil"
)

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, c
}

func TestIntegrationListCache_SetGetInvalidate(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	listings := []model.Listing{
		{ID: 2, Name: "Newer", Location: "Almaty", Rating: 5, UserID: 1, CreatedAt: time.Now()},
		{ID: 1, Name: "Older", Location: "Astana", Rating: 4, UserID: 1, CreatedAt: time.Now().Add(-time.Hour)},
	}

	if err := c.SetListings(ctx, model.KindPlace, listings, time.Minute); err != nil {
		t.Fatalf("SetListings failed: %v", err)
	}

	got, err := c.GetListings(ctx, model.KindPlace)
	if err != nil {
		t.Fatalf("GetListings failed: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Newer" {
		t.Errorf("cached order lost: %+v", got)
	}

	// Other kind stays a miss.
	if _, err := c.GetListings(ctx, model.KindHostel); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss for other kind, got %v", err)
	}

	if err := c.InvalidateListings(ctx, model.KindPlace); err != nil {
		t.Fatalf("InvalidateListings failed: %v", err)
	}
	if _, err := c.GetListings(ctx, model.KindPlace); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after invalidation, got %v", err)
	}
}

func TestIntegrationListCache_CorruptedEntryIsMiss(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	if err := c.Client().Set(ctx, model.KindPlace.CacheKey(), "{not json", time.Minute).Err(); err != nil {
		t.Fatalf("seed corrupted entry: %v", err)
	}

	if _, err := c.GetListings(ctx, model.KindPlace); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss for corrupted entry, got %v", err)
	}
}

func TestIntegrationLoginRateLimit(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	const burst = 3
	ip := "203.0.113.7"

	// 1 rpm refills far too slowly to matter within the test.
	for i := 0; i < burst; i++ {
		result, err := c.CheckLoginRateLimit(ctx, ip, 1, burst)
		if err != nil {
			t.Fatalf("CheckLoginRateLimit failed: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed within burst", i+1)
		}
	}

	result, err := c.CheckLoginRateLimit(ctx, ip, 1, burst)
	if err != nil {
		t.Fatalf("CheckLoginRateLimit failed: %v", err)
	}
	if result.Allowed {
		t.Error("request beyond burst should be rejected")
	}
	if result.RetryAfter <= 0 {
		t.Error("expected a positive retry-after hint")
	}

	// A different IP has its own bucket.
	other, err := c.CheckLoginRateLimit(ctx, "198.51.100.9", 1, burst)
	if err != nil {
		t.Fatalf("CheckLoginRateLimit failed: %v", err)
	}
	if !other.Allowed {
		t.Error("different IP should not share the bucket")
	}
}
