// Package cachemanager provides the process-local, non-authoritative read
// caches used by the workflow registry. Each cache instance is its own lock
// domain; there is no transaction spanning two cache operations or a cache
// operation and a persistence call.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a TTL cache keyed by string-like keys.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Keys(ctx context.Context) []K
	Flush(ctx context.Context) error
}
