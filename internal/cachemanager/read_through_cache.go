package cachemanager

import (
	"context"
	"sync/atomic"
	"time"
)

// ReadThroughCache memoises fn. Inputs are mapped to cache keys by key, so
// inputs that should share a value must map to the same key.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache CacheManager[K, V]
	key   func(I) K
	fn    func(ctx context.Context, input I) (V, error)
	ttl   time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewReadThroughCache wraps fn. Every hit extends the entry by ttl. A nil
// cache calls fn every time.
func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	key func(I) K,
	fn func(ctx context.Context, input I) (V, error),
	ttl time.Duration,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache: cache,
		key:   key,
		fn:    fn,
		ttl:   ttl,
	}
}

// Get returns the cached value for input or computes and stores it.
// Failed computations are not cached.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, input I) (V, error) {
	if r.cache == nil {
		r.misses.Add(1)
		return r.fn(ctx, input)
	}

	k := r.key(input)
	if value, ok := r.cache.GetWithRefresh(ctx, k, r.ttl); ok {
		r.hits.Add(1)
		return value, nil
	}

	r.misses.Add(1)
	value, err := r.fn(ctx, input)
	if err != nil {
		return value, err
	}
	r.cache.Set(ctx, k, value, r.ttl)
	return value, nil
}

// Stats returns how many lookups were served from the cache and how many
// called fn.
func (r *ReadThroughCache[K, V, I]) Stats() (hits, misses int64) {
	return r.hits.Load(), r.misses.Load()
}
