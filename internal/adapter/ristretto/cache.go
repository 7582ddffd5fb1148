// Package ristretto implements the cache port with dgraph-io/ristretto. The
// resolver uses it as the in-process level of the tenant directory cache.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache is an in-process cache keyed by string with byte-slice values.
// Cost accounting uses the value length, so maxCostBytes bounds the total
// cached payload, not the entry count.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a ristretto-backed cache holding at most maxCostBytes of
// cached values.
func New(maxCostBytes int64) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10, // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

// Get returns the cached value for key, if present. Ristretto admission is
// probabilistic: a Set is not guaranteed to be visible to a later Get, which
// is acceptable for a cache whose misses just re-read the directory.
func (c *Cache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	val, found := c.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores value under key for at most ttl.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.c.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

// Delete drops key from the cache.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

// Close stops the cache's background goroutines.
func (c *Cache) Close() {
	c.c.Close()
}
