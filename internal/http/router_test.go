//go:build !integration

package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/pallet-service/internal/middleware"
	"github.com/guttosm/pallet-service/internal/service"
)

func newRouterTestConfig(t *testing.T) RouterConfig {
	t.Helper()
	gin.SetMode(gin.TestMode)
	planner := service.NewPlannerService(service.PlannerServiceConfig{
		SchedulerOptions: []service.SchedulerOption{service.WithDebounce(time.Hour)},
	})
	t.Cleanup(func() { _ = planner.Shutdown(context.Background()) })

	cfg := DefaultRouterConfig()
	cfg.Planner = planner
	cfg.Templates = service.NewPalletTemplateService(nil)
	return cfg
}

func TestNewRouter(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*RouterConfig)
		routes int
	}{
		{
			name:   "default config without services",
			modify: func(cfg *RouterConfig) { cfg.Planner, cfg.Templates = nil, nil },
		},
		{
			name:   "planner and templates",
			modify: func(*RouterConfig) {},
		},
		{
			name: "without rate limiting, timeout or idempotency",
			modify: func(cfg *RouterConfig) {
				cfg.RateLimit = 0
				cfg.RequestTimeout = 0
				cfg.EnableIdempotency = false
			},
		},
		{
			name: "swagger behind basic auth",
			modify: func(cfg *RouterConfig) {
				cfg.SwaggerUser = "admin"
				cfg.SwaggerPass = "secret"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newRouterTestConfig(t)
			tt.modify(&cfg)

			router := NewRouter(NewHealthHandler(), cfg)

			require.NotNil(t, router)
			assert.NotEmpty(t, router.Routes())
		})
	}
}

func TestRouter_Endpoints(t *testing.T) {
	cfg := newRouterTestConfig(t)
	cfg.SwaggerUser = "admin"
	cfg.SwaggerPass = "secret"
	router := NewRouter(NewHealthHandler(), cfg)

	tests := []struct {
		name           string
		method         string
		path           string
		basicAuth      bool
		expectedStatus int
	}{
		{name: "healthz endpoint", method: http.MethodGet, path: "/healthz", expectedStatus: http.StatusOK},
		{name: "readyz endpoint", method: http.MethodGet, path: "/readyz", expectedStatus: http.StatusOK},
		{name: "metrics endpoint", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
		{name: "swagger without credentials", method: http.MethodGet, path: "/swagger/index.html", expectedStatus: http.StatusUnauthorized},
		{name: "swagger with credentials", method: http.MethodGet, path: "/swagger/index.html", basicAuth: true, expectedStatus: http.StatusOK},
		{name: "pallet templates", method: http.MethodGet, path: "/api/pallets", expectedStatus: http.StatusOK},
		{name: "open plan without body", method: http.MethodPost, path: "/api/orders", expectedStatus: http.StatusBadRequest},
		{name: "unknown plan", method: http.MethodGet, path: "/api/orders/missing/plan", expectedStatus: http.StatusNotFound},
		{name: "unknown route", method: http.MethodGet, path: "/api/unknown", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.basicAuth {
				req.SetBasicAuth("admin", "secret")
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestRouter_RateLimitPerOrder(t *testing.T) {
	cfg := newRouterTestConfig(t)
	cfg.RateLimit = 2
	cfg.RateWindow = time.Minute
	router := NewRouter(NewHealthHandler(), cfg)

	get := func(path string) int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w.Code
	}

	assert.Equal(t, http.StatusNotFound, get("/api/orders/ORD-1/plan"))
	assert.Equal(t, http.StatusNotFound, get("/api/orders/ORD-1/plan"))
	assert.Equal(t, http.StatusTooManyRequests, get("/api/orders/ORD-1/plan"))

	// another order of the same client has its own budget
	assert.Equal(t, http.StatusNotFound, get("/api/orders/ORD-2/plan"))
}

func TestRouter_IdempotentOpenPlan(t *testing.T) {
	cfg := newRouterTestConfig(t)
	router := NewRouter(NewHealthHandler(), cfg)

	open := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(openPlanBody))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.IdempotencyKeyHeader, "open-ORD-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := open()
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	assert.Empty(t, first.Header().Get(middleware.IdempotencyReplayedHeader))

	second := open()
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(middleware.IdempotencyReplayedHeader))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	cfg := newRouterTestConfig(t)
	router := NewRouter(NewHealthHandler(), cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
