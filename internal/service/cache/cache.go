// Package cache provides the TTL/LRU cache holding live planning sessions.
package cache

// Cache defines the interface for cache operations.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
	Invalidate(key string)
	Len() int
	Clear()
	Stop()
}

// Metrics provides cache performance metrics.
type Metrics struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Capacity  int
}

// CacheWithMetrics extends Cache with metrics reporting.
type CacheWithMetrics[V any] interface {
	Cache[V]
	Metrics() Metrics
}

// EvictFunc is called outside the cache lock for every entry that leaves the
// cache through expiry, capacity eviction, invalidation or Clear.
type EvictFunc[V any] func(key string, value V)
