//go:build !integration

package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdempotencyCache_Get(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(*idempotencyCache)
		key           string
		expectedFound bool
	}{
		{
			name: "returns cached response when exists",
			setup: func(cache *idempotencyCache) {
				cache.Set("abc", &cachedResponse{
					StatusCode:  201,
					ContentType: "application/json",
					Body:        []byte(`{"data": "test"}`),
				})
			},
			key:           "abc",
			expectedFound: true,
		},
		{
			name:          "returns false when key not found",
			setup:         func(cache *idempotencyCache) {},
			key:           "missing",
			expectedFound: false,
		},
		{
			name: "returns false when expired",
			setup: func(cache *idempotencyCache) {
				cache.mu.Lock()
				cache.items["old"] = &cachedResponse{
					StatusCode: 201,
					Body:       []byte(`{}`),
					Timestamp:  time.Now().Add(-2 * time.Minute),
				}
				cache.mu.Unlock()
			},
			key:           "old",
			expectedFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newIdempotencyCache(time.Minute)
			defer cache.Stop()
			tt.setup(cache)

			resp, found := cache.Get(tt.key)

			assert.Equal(t, tt.expectedFound, found)
			if tt.expectedFound {
				assert.Equal(t, 201, resp.StatusCode)
				assert.Equal(t, "application/json", resp.ContentType)
			}
		})
	}
}

func TestIdempotencyCache_cleanup(t *testing.T) {
	cache := newIdempotencyCache(time.Minute)
	defer cache.Stop()

	cache.mu.Lock()
	cache.items["expired"] = &cachedResponse{Timestamp: time.Now().Add(-2 * time.Hour)}
	cache.items["valid"] = &cachedResponse{Timestamp: time.Now()}
	cache.mu.Unlock()

	cache.cleanup()

	assert.Equal(t, 1, cache.Len())
	_, found := cache.Get("valid")
	assert.True(t, found)
}

func TestIdempotencyCache_StopTwice(t *testing.T) {
	cache := newIdempotencyCache(time.Minute)
	cache.Stop()
	assert.NotPanics(t, cache.Stop)
}
