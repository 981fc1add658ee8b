// Package cache holds fetched datasets for a bounded time so repeated views
// within the TTL reuse one read of the source.
package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
)

type Cache[V any] struct {
	items *ttlcache.Cache[string, V]
	group singleflight.Group
	ttl   time.Duration

	// FetchTimeout bounds a shared fetch. Zero leaves it unbounded.
	FetchTimeout time.Duration

	// OnHit and OnMiss are optional and called without locks held.
	OnHit  func(key string)
	OnMiss func(key string)
}

// New returns a cache whose entries expire ttl after they were stored. Reads
// do not extend an entry's life.
func New[V any](ttl time.Duration) *Cache[V] {
	items := ttlcache.New(
		ttlcache.WithTTL[string, V](ttl),
		ttlcache.WithDisableTouchOnHit[string, V](),
	)
	return &Cache[V]{items: items, ttl: ttl}
}

// GetOrFetch returns the cached value for key or calls fetch once, even when
// many callers miss at the same time. A failed fetch is not cached. A ttl of
// zero uses the cache default.
//
// The shared fetch does not inherit ctx's cancellation, so one caller going
// away does not fail the others; ctx still ends this caller's wait.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (V, error)) (V, error) {
	if item := c.items.Get(key); item != nil {
		if c.OnHit != nil {
			c.OnHit(key)
		}
		return item.Value(), nil
	}
	if c.OnMiss != nil {
		c.OnMiss(key)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		if item := c.items.Get(key); item != nil {
			return item.Value(), nil
		}
		fctx := context.WithoutCancel(ctx)
		if c.FetchTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, c.FetchTimeout)
			defer cancel()
		}
		val, err := fetch(fctx)
		if err != nil {
			return val, err
		}
		if ttl <= 0 {
			ttl = ttlcache.DefaultTTL
		}
		c.items.Set(key, val, ttl)
		return val, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Peek returns the cached value and when it expires without fetching.
func (c *Cache[V]) Peek(key string) (V, time.Time, bool) {
	item := c.items.Get(key)
	if item == nil {
		var zero V
		return zero, time.Time{}, false
	}
	return item.Value(), item.ExpiresAt(), true
}

// Invalidate drops every entry; the next read of any key fetches again.
func (c *Cache[V]) Invalidate() {
	c.items.DeleteAll()
}

func (c *Cache[V]) Len() int {
	return c.items.Len()
}

func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}
