package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/pallet-service/internal/circuitbreaker"
)

// readinessTimeout bounds all dependency checks of one readiness probe.
const readinessTimeout = 3 * time.Second

// HealthChecker defines the interface for health check operations.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

// HealthCheck calls f.
func (f HealthCheckFunc) HealthCheck(ctx context.Context) error {
	return f(ctx)
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	checkers map[string]HealthChecker
	breakers *circuitbreaker.Registry
	sessions func() int
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		checkers: make(map[string]HealthChecker),
	}
}

// RegisterChecker registers a dependency probed by the readiness endpoint.
func (h *HealthHandler) RegisterChecker(name string, checker HealthChecker) {
	if checker != nil {
		h.checkers[name] = checker
	}
}

// RegisterCircuitBreakers reports the breakers of registry on the readiness endpoint.
func (h *HealthHandler) RegisterCircuitBreakers(registry *circuitbreaker.Registry) {
	h.breakers = registry
}

// RegisterSessionCounter reports the number of live planning sessions.
func (h *HealthHandler) RegisterSessionCounter(count func() int) {
	h.sessions = count
}

// Register registers health endpoints on the router.
func (h *HealthHandler) Register(router *gin.Engine) {
	router.GET("/healthz", h.Liveness)
	router.GET("/readyz", h.Readiness)
}

// Liveness handles the liveness probe endpoint.
// @Summary     Liveness probe
// @Description Returns OK if the service is running. Used by Kubernetes and other orchestration platforms to determine if the service should be restarted.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]string "Service is alive"
// @Router      /healthz [get]
//
// Metrics endpoint is available at /metrics for Prometheus scraping.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles the readiness probe endpoint.
// @Summary     Readiness probe
// @Description Returns OK if the storage backend answers and no circuit breaker is open. Planning sessions keep working while degraded, only persistence waits.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]interface{} "Service is ready"
// @Failure     503 {object} map[string]interface{} "Service is not ready"
// @Router      /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]interface{})

	for name, checker := range h.checkers {
		if err := checker.HealthCheck(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}

	if h.breakers != nil {
		for _, stats := range h.breakers.Status() {
			checks[stats.Name+"_circuit"] = stats.State
		}
		if !h.breakers.Healthy() {
			status = http.StatusServiceUnavailable
		}
	}

	if len(checks) == 0 {
		checks["service"] = "ok"
	}

	body := gin.H{
		"status": map[bool]string{true: "ok", false: "degraded"}[status == http.StatusOK],
		"checks": checks,
	}
	if h.sessions != nil {
		body["sessions"] = h.sessions()
	}
	c.JSON(status, body)
}
