package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guttosm/pallet-service/internal/metrics"
)

// Sharded distributes entries across shards to reduce lock contention.
type Sharded[V any] struct {
	shards    []*ttlCache[V]
	shardMask uint32
}

// NewSharded creates a sharded cache with the given total capacity and TTL.
// numShards is rounded up to a power of two.
func NewSharded[V any](capacity int, ttl time.Duration, numShards int, onEvict EvictFunc[V]) *Sharded[V] {
	if numShards <= 0 {
		numShards = 16
	}
	n := 1
	for n < numShards {
		n *= 2
	}

	perShard := capacity / n
	if perShard < 1 {
		perShard = 1
	}

	shards := make([]*ttlCache[V], n)
	for i := range shards {
		shards[i] = newTTLCache(perShard, ttl, onEvict)
	}
	metrics.UpdateCacheCapacity(perShard * n)

	return &Sharded[V]{shards: shards, shardMask: uint32(n - 1)}
}

func (sc *Sharded[V]) shard(key string) *ttlCache[V] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return sc.shards[h.Sum32()&sc.shardMask]
}

// Get retrieves a value from the appropriate shard.
func (sc *Sharded[V]) Get(key string) (V, bool) {
	return sc.shard(key).Get(key)
}

// Set stores a value in the appropriate shard.
func (sc *Sharded[V]) Set(key string, value V) {
	sc.shard(key).Set(key, value)
}

// Invalidate removes a key from the appropriate shard.
func (sc *Sharded[V]) Invalidate(key string) {
	sc.shard(key).Invalidate(key)
}

// Len is the number of live entries across shards.
func (sc *Sharded[V]) Len() int {
	total := 0
	for _, s := range sc.shards {
		total += s.Len()
	}
	return total
}

// Clear removes all entries from all shards.
func (sc *Sharded[V]) Clear() {
	for _, s := range sc.shards {
		s.Clear()
	}
}

// Stop shuts down the cleanup routine of every shard.
func (sc *Sharded[V]) Stop() {
	for _, s := range sc.shards {
		s.Stop()
	}
}

// Metrics returns aggregated metrics from all shards.
func (sc *Sharded[V]) Metrics() Metrics {
	var total Metrics
	for _, s := range sc.shards {
		m := s.Metrics()
		total.Hits += m.Hits
		total.Misses += m.Misses
		total.Evictions += m.Evictions
		total.Size += m.Size
		total.Capacity += m.Capacity
	}
	return total
}

// ttlCache is a thread-safe LRU cache with TTL expiration.
type ttlCache[V any] struct {
	mu        sync.Mutex
	capacity  int
	ttl       time.Duration
	items     map[string]*entry[V]
	head      *entry[V]
	tail      *entry[V]
	onEvict   EvictFunc[V]
	stopCh    chan struct{}
	stopOnce  sync.Once
	hits      int64
	misses    int64
	evictions int64
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	prev      *entry[V]
	next      *entry[V]
}

func newTTLCache[V any](capacity int, ttl time.Duration, onEvict EvictFunc[V]) *ttlCache[V] {
	c := &ttlCache[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry[V], capacity),
		onEvict:  onEvict,
		stopCh:   make(chan struct{}),
	}
	go c.startCleanup()
	return c
}

// Stop shuts down the cleanup routine. It is safe to call more than once.
func (c *ttlCache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Metrics returns current cache performance metrics.
func (c *ttlCache[V]) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Metrics{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      len(c.items),
		Capacity:  c.capacity,
	}
}

// Len is the number of entries, expired ones included until cleanup.
func (c *ttlCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Get returns a live entry and refreshes its LRU position and TTL.
func (c *ttlCache[V]) Get(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	e, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		atomic.AddInt64(&c.misses, 1)
		metrics.RecordCacheOperation("get", "miss")
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		c.removeEntry(e)
		c.mu.Unlock()
		atomic.AddInt64(&c.misses, 1)
		metrics.RecordCacheOperation("get", "expired")
		c.evicted(e)
		return zero, false
	}
	e.expiresAt = time.Now().Add(c.ttl)
	c.moveToFront(e)
	c.mu.Unlock()

	atomic.AddInt64(&c.hits, 1)
	metrics.RecordCacheOperation("get", "hit")
	return e.value, true
}

// Set adds or replaces a value. The least recently used entry is evicted at capacity.
func (c *ttlCache[V]) Set(key string, value V) {
	c.mu.Lock()
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = time.Now().Add(c.ttl)
		c.moveToFront(e)
		c.mu.Unlock()
		return
	}

	e := &entry[V]{key: key, value: value, expiresAt: time.Now().Add(c.ttl)}
	c.items[key] = e
	c.addToFront(e)

	var victim *entry[V]
	if len(c.items) > c.capacity {
		victim = c.tail
		c.removeEntry(victim)
		atomic.AddInt64(&c.evictions, 1)
	}
	c.mu.Unlock()

	metrics.RecordCacheOperation("set", "success")
	if victim != nil {
		metrics.RecordCacheOperation("evict", "capacity")
		c.evicted(victim)
	}
}

// Invalidate removes key and reports it to the eviction callback.
func (c *ttlCache[V]) Invalidate(key string) {
	c.mu.Lock()
	e, ok := c.items[key]
	if ok {
		c.removeEntry(e)
	}
	c.mu.Unlock()

	if ok {
		metrics.RecordCacheOperation("invalidate", "success")
		c.evicted(e)
	}
}

// Clear removes all entries.
func (c *ttlCache[V]) Clear() {
	c.mu.Lock()
	removed := make([]*entry[V], 0, len(c.items))
	for _, e := range c.items {
		removed = append(removed, e)
	}
	c.items = make(map[string]*entry[V], c.capacity)
	c.head, c.tail = nil, nil
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.evictions, 0)
	c.mu.Unlock()

	metrics.RecordCacheOperation("clear", "success")
	for _, e := range removed {
		c.evicted(e)
	}
}

func (c *ttlCache[V]) startCleanup() {
	interval := c.ttl / 2
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCh:
			return
		}
	}
}

// cleanup removes expired entries.
func (c *ttlCache[V]) cleanup() {
	c.mu.Lock()
	current := time.Now()
	var expired []*entry[V]
	for _, e := range c.items {
		if current.After(e.expiresAt) {
			c.removeEntry(e)
			expired = append(expired, e)
		}
	}
	c.mu.Unlock()

	for _, e := range expired {
		metrics.RecordCacheOperation("evict", "expired")
		c.evicted(e)
	}
}

func (c *ttlCache[V]) evicted(e *entry[V]) {
	if c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}

func (c *ttlCache[V]) removeEntry(e *entry[V]) {
	delete(c.items, e.key)
	c.remove(e)
}

func (c *ttlCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *ttlCache[V]) addToFront(e *entry[V]) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

// remove unlinks an entry from the LRU list without touching the map.
func (c *ttlCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}
