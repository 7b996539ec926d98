//go:build !integration

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newIdempotentRouter counts how often the handler actually runs.
func newIdempotentRouter(t *testing.T, status int) (*gin.Engine, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := DefaultIdempotencyConfig()
	t.Cleanup(cfg.Cache.Stop)

	calls := 0
	router := gin.New()
	router.Use(Idempotency(cfg))
	handler := func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"call": calls})
	}
	router.POST("/api/orders", handler)
	router.GET("/api/orders", handler)
	return router, &calls
}

func send(router *gin.Engine, method, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/orders", bytes.NewReader([]byte(body)))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		method        string
		firstKey      string
		secondKey     string
		secondBody    string
		expectedCalls int
		expectReplay  bool
	}{
		{
			name:          "replays a retried request",
			status:        http.StatusCreated,
			method:        http.MethodPost,
			firstKey:      "open-1",
			secondKey:     "open-1",
			secondBody:    `{"order":{"id":"ORD-1"}}`,
			expectedCalls: 1,
			expectReplay:  true,
		},
		{
			name:          "different body is a different request",
			status:        http.StatusCreated,
			method:        http.MethodPost,
			firstKey:      "open-1",
			secondKey:     "open-1",
			secondBody:    `{"order":{"id":"ORD-2"}}`,
			expectedCalls: 2,
		},
		{
			name:          "requests without key always run",
			status:        http.StatusCreated,
			method:        http.MethodPost,
			secondBody:    `{"order":{"id":"ORD-1"}}`,
			expectedCalls: 2,
		},
		{
			name:          "GET requests are not cached",
			status:        http.StatusOK,
			method:        http.MethodGet,
			firstKey:      "read-1",
			secondKey:     "read-1",
			secondBody:    `{"order":{"id":"ORD-1"}}`,
			expectedCalls: 2,
		},
		{
			name:          "failed requests are not cached",
			status:        http.StatusUnprocessableEntity,
			method:        http.MethodPost,
			firstKey:      "open-2",
			secondKey:     "open-2",
			secondBody:    `{"order":{"id":"ORD-1"}}`,
			expectedCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, calls := newIdempotentRouter(t, tt.status)

			first := send(router, tt.method, tt.firstKey, `{"order":{"id":"ORD-1"}}`)
			require.Equal(t, tt.status, first.Code)

			second := send(router, tt.method, tt.secondKey, tt.secondBody)
			assert.Equal(t, tt.status, second.Code)
			assert.Equal(t, tt.expectedCalls, *calls)

			if tt.expectReplay {
				assert.Equal(t, "true", second.Header().Get(IdempotencyReplayedHeader))
				assert.Equal(t, first.Body.String(), second.Body.String())
				assert.Contains(t, second.Header().Get("Content-Type"), "application/json")
			} else {
				assert.Empty(t, second.Header().Get(IdempotencyReplayedHeader))
				assert.Contains(t, second.Body.String(), strconv.Itoa(tt.expectedCalls))
			}
		})
	}
}

func TestIdempotency_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := IdempotencyConfig{Enabled: false}

	router := gin.New()
	router.Use(Idempotency(cfg))
	router.POST("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader([]byte(`{"test": "data"}`)))
	req.Header.Set(IdempotencyKeyHeader, "key")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
