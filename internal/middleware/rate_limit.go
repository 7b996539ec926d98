package middleware

import (
	"hash/fnv"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/pallet-service/internal/domain/dto"
	"github.com/guttosm/pallet-service/internal/i18n"
)

const rateLimitShards = 16

// bucket tracks the theoretical arrival time of the next request of a key
// (GCRA). A key may run ahead of it by at most one window, which allows bursts
// of limit requests and refills one slot every window/limit.
type bucket struct {
	tat time.Time
}

type bucketShard struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// RateLimiter throttles requests per client and planning session.
// Buckets are spread over shards keyed by FNV hash so busy sessions do not
// contend on one lock.
type RateLimiter struct {
	shards  []*bucketShard
	limit   int
	window  time.Duration
	spacing time.Duration
	now     func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter allows limit requests per window for each key, with bursts
// up to limit. A non-positive limit rejects every request. A background sweep
// drops keys idle for two windows.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	rl := &RateLimiter{
		shards: make([]*bucketShard, rateLimitShards),
		limit:  limit,
		window: window,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	if limit > 0 {
		rl.spacing = window / time.Duration(limit)
	}
	for i := range rl.shards {
		rl.shards[i] = &bucketShard{buckets: make(map[string]*bucket)}
	}

	go rl.sweep()
	return rl
}

func (rl *RateLimiter) shard(key string) *bucketShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return rl.shards[h.Sum32()%uint32(len(rl.shards))]
}

// take admits one request of key. It reports the requests still admissible
// right now and, on rejection, how long until the next one is.
func (rl *RateLimiter) take(key string) (allowed bool, remaining int, retry time.Duration) {
	now := rl.now()
	if rl.spacing <= 0 {
		return false, 0, rl.window
	}

	s := rl.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tat: now}
		s.buckets[key] = b
	}

	tat := b.tat
	if tat.Before(now) {
		tat = now
	}
	next := tat.Add(rl.spacing)
	if ahead := next.Sub(now); ahead > rl.window {
		return false, 0, ahead - rl.window
	}
	b.tat = next
	return true, int((rl.window - next.Sub(now)) / rl.spacing), 0
}

// OrderRateLimit limits requests per client and order, so one busy planning
// session cannot starve the other sessions of a client. Routes without an
// order are limited per client.
func (rl *RateLimiter) OrderRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, retry := rl.take(orderIdentifier(c))

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			errorResp := dto.NewError(dto.ErrCodeRateLimit, i18n.GetTranslator().Translate(i18n.ErrKeyRateLimitExceeded, i18n.GetLocale(c))).
				WithRequestID(GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResp)
			return
		}

		c.Next()
	}
}

func orderIdentifier(c *gin.Context) string {
	if orderID := c.Param(OrderIDParam); orderID != "" {
		return "order:" + orderID + ":" + c.ClientIP()
	}
	return "ip:" + c.ClientIP()
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropIdle()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) dropIdle() {
	cutoff := rl.now().Add(-2 * rl.window)
	for _, s := range rl.shards {
		s.mu.Lock()
		for key, b := range s.buckets {
			if b.tat.Before(cutoff) {
				delete(s.buckets, key)
			}
		}
		s.mu.Unlock()
	}
}

// Tracked returns the number of keys with a live bucket.
func (rl *RateLimiter) Tracked() int {
	n := 0
	for _, s := range rl.shards {
		s.mu.Lock()
		n += len(s.buckets)
		s.mu.Unlock()
	}
	return n
}

// Stop ends the background sweep. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}
