//go:build !integration

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := captureLogs(t)

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.POST("/orders/:orderId/plan/packages", func(c *gin.Context) {
		panic("nil package")
	})
	router.GET("/orders/:orderId/plan", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	t.Run("panic becomes a translated 500", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders/ORD-1/plan/packages", nil)
		req.Header.Set("Accept-Language", "pt")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "internal_error")
		assert.Contains(t, w.Body.String(), "Ocorreu um erro inesperado")

		line := strings.TrimSpace(logs.String())
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		assert.Equal(t, "ORD-1", entry["order_id"])
		assert.Equal(t, "nil package", entry["panic"])
		assert.Equal(t, w.Header().Get(RequestIDHeader), entry["request_id"])
	})

	t.Run("passes through without panic", func(t *testing.T) {
		logs.Reset()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/ORD-1/plan", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
		assert.Empty(t, logs.String())
	})
}
