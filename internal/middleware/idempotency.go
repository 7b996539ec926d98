package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// IdempotencyKeyHeader is the HTTP header name for idempotency key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the cache.
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is the TTL for cached idempotency responses.
	IdempotencyKeyTTL = 5 * time.Minute
)

// cachedResponse stores a cached HTTP response for idempotency.
type cachedResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Timestamp   time.Time
}

// IdempotencyConfig holds configuration for idempotency middleware.
type IdempotencyConfig struct {
	Cache   *idempotencyCache
	Enabled bool
}

// DefaultIdempotencyConfig returns default idempotency configuration.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		Cache:   newIdempotencyCache(IdempotencyKeyTTL),
		Enabled: true,
	}
}

// Idempotency returns a middleware that replays the response of a request seen
// before under the same Idempotency-Key, method, path and body. A retried
// "open plan" therefore returns the original session instead of replacing it.
// Only successful responses are stored.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Cache == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		cacheKey, err := fingerprint(key, c.Request)
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}

		if cached, ok := cfg.Cache.Get(cacheKey); ok {
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		writer := &responseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		if status := writer.Status(); status >= 200 && status < 300 {
			cfg.Cache.Set(cacheKey, &cachedResponse{
				StatusCode:  status,
				ContentType: writer.Header().Get("Content-Type"),
				Body:        writer.body.Bytes(),
			})
		}
	}
}

// fingerprint hashes the idempotency key with the method, path and body.
// The body is restored for the handler. Multipart bodies are hashed as well,
// so the same key with a different invoice is a different request.
func fingerprint(idempotencyKey string, req *http.Request) (string, error) {
	hasher := sha256.New()
	hasher.Write([]byte(idempotencyKey))
	hasher.Write([]byte{0})
	hasher.Write([]byte(req.Method))
	hasher.Write([]byte{0})
	hasher.Write([]byte(req.URL.Path))
	hasher.Write([]byte{0})

	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return "", err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		hasher.Write(body)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// responseWriter captures the response body for caching.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
