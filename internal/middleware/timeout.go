package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/pallet-service/internal/domain/dto"
	"github.com/guttosm/pallet-service/internal/i18n"
)

// TimeoutConfig holds configuration for the timeout middleware.
type TimeoutConfig struct {
	// Timeout is the maximum duration for request processing.
	Timeout time.Duration
	// Skip lists full route paths that keep the server wide deadline, e.g. exports.
	Skip []string
}

// DefaultTimeoutConfig returns sensible defaults for the timeout middleware.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Timeout: 30 * time.Second,
	}
}

// Timeout returns a middleware that puts a deadline on the request context.
// Handlers run on the request goroutine; persistence calls observe the deadline
// and a handler that gives up on it without writing gets a translated 504.
func Timeout(cfg TimeoutConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.Skip))
	for _, path := range cfg.Skip {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.FullPath()]; ok || cfg.Timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			message := i18n.GetTranslator().Translate(i18n.ErrKeyTimeout, i18n.GetLocale(c))
			errorResp := dto.NewError(dto.ErrCodeTimeout, message).
				WithRequestID(GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, errorResp)
		}
	}
}
