package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/almagid/almagid/internal/model"
)

// DefaultListTTL is the TTL for cached public list views.
const DefaultListTTL = 60 * time.Second

// ErrCacheMiss indicates the key was absent (or unreadable, which is
// treated the same way: the caller falls through to the store).
var ErrCacheMiss = errors.New("cache miss")

// GetListings retrieves the cached public list view for a kind.
// Returns ErrCacheMiss if absent; a corrupted entry also counts as a miss.
func (c *Cache) GetListings(ctx context.Context, kind model.Kind) ([]model.Listing, error) {
	data, err := c.client.Get(ctx, kind.CacheKey()).Bytes()
	if err != nil {
		return nil, ErrCacheMiss
	}

	var listings []model.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		// Corrupted cache entry - drop it and treat as miss
		c.client.Del(ctx, kind.CacheKey())
		return nil, ErrCacheMiss
	}

	return listings, nil
}

// SetListings caches the public list view for a kind with the given TTL.
func (c *Cache) SetListings(ctx context.Context, kind model.Kind, listings []model.Listing, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultListTTL
	}

	data, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("marshal listings: %w", err)
	}

	if err := c.client.Set(ctx, kind.CacheKey(), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache listings: %w", err)
	}
	return nil
}

// InvalidateListings drops the cached list view for a kind.
// Called synchronously after every mutating write; the caller treats a
// failure as non-fatal because the store commit already happened.
func (c *Cache) InvalidateListings(ctx context.Context, kind model.Kind) error {
	if err := c.client.Del(ctx, kind.CacheKey()).Err(); err != nil {
		return fmt.Errorf("invalidate listings: %w", err)
	}
	return nil
}
