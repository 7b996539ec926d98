package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guttosm/pallet-service/internal/logger"
)

// RequestLogger returns a middleware that logs HTTP request details in JSON format.
// It logs: request ID, order ID, method, path, status code, latency, IP and user agent.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		log := logger.Logger().With().
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status_code", statusCode).
			Int64("duration_ms", latency.Milliseconds()).
			Str("ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Logger()
		if orderID := c.Param(OrderIDParam); orderID != "" {
			log = log.With().Str("order_id", orderID).Logger()
		}

		log.WithLevel(getLogLevel(statusCode)).Msg("HTTP request")
	}
}

// getLogLevel returns the log level based on HTTP status code.
func getLogLevel(statusCode int) zerolog.Level {
	switch {
	case statusCode >= 500:
		return zerolog.ErrorLevel
	case statusCode >= 400:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
