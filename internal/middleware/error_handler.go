package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guttosm/pallet-service/internal/domain/dto"
	"github.com/guttosm/pallet-service/internal/i18n"
	"github.com/guttosm/pallet-service/internal/logger"
)

// OrderIDParam is the route parameter carrying the order of a planner request.
const OrderIDParam = "orderId"

// ErrorHandler returns a middleware that handles gin context errors.
// Errors behind an already written 4xx response are expected outcomes and
// logged at debug level; anything else is logged as an error and, when no
// response was written yet, answered with a translated 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		requestID := GetRequestID(c)
		status := c.Writer.Status()

		log := logger.Logger()
		var event *zerolog.Event
		if c.Writer.Written() && status < http.StatusInternalServerError {
			event = log.Debug()
		} else {
			event = log.Error()
		}
		event.
			Str("request_id", requestID).
			Str("order_id", c.Param(OrderIDParam)).
			Str("error", err.Error()).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Int("status_code", status).
			Msg("Request error")

		if !c.Writer.Written() {
			message := i18n.GetTranslator().Translate(i18n.ErrKeyInternalError, i18n.GetLocale(c))
			errorResp := dto.NewError(dto.ErrCodeInternal, message).
				WithRequestID(requestID)
			c.JSON(http.StatusInternalServerError, errorResp)
		}
	}
}
