package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(PrometheusMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/error", func(c *gin.Context) {
		c.String(http.StatusInternalServerError, "error")
	})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{
			name:           "records metrics for successful request",
			path:           "/test",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "records metrics for error request",
			path:           "/error",
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := value(HTTPRequestTotal.WithLabelValues(http.MethodGet, tt.path, httpStatus(tt.expectedStatus)))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			after := value(HTTPRequestTotal.WithLabelValues(http.MethodGet, tt.path, httpStatus(tt.expectedStatus)))
			assert.Equal(t, before+1, after)
		})
	}
}

func httpStatus(code int) string {
	switch code {
	case http.StatusOK:
		return "200"
	default:
		return "500"
	}
}

func TestRecordAllocation(t *testing.T) {
	before := value(AllocationOperationsTotal.WithLabelValues("move_pool_to_package", "fit-failure"))
	RecordAllocation("move_pool_to_package", "fit-failure")
	assert.Equal(t, before+1, value(AllocationOperationsTotal.WithLabelValues("move_pool_to_package", "fit-failure")))
}

func TestRecordAutoSave(t *testing.T) {
	before := value(AutoSaveEventsTotal.WithLabelValues("sync", "deduplicated"))
	RecordAutoSave("sync", "deduplicated")
	assert.Equal(t, before+1, value(AutoSaveEventsTotal.WithLabelValues("sync", "deduplicated")))
}

func TestRecordChangeSetSync(t *testing.T) {
	before := value(ChangeSetItemsTotal.WithLabelValues("packages", "added"))

	RecordChangeSetSync("packages", 20*time.Millisecond, "success", 2, 1, 0)
	RecordChangeSetSync("packages", 20*time.Millisecond, "error", 5, 0, 0)

	assert.Equal(t, before+2, value(ChangeSetItemsTotal.WithLabelValues("packages", "added")))
}

func TestRecordInvoiceImport(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		warnings int
	}{
		{name: "clean invoice", status: "success", warnings: 0},
		{name: "invoice with coerced values", status: "success", warnings: 3},
		{name: "rejected invoice", status: "error", warnings: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := value(InvoiceImportsTotal.WithLabelValues("csv", tt.status))
			beforeWarnings := value(InvoiceImportWarnings)

			RecordInvoiceImport("csv", tt.status, tt.warnings)

			assert.Equal(t, before+1, value(InvoiceImportsTotal.WithLabelValues("csv", tt.status)))
			assert.Equal(t, beforeWarnings+float64(tt.warnings), value(InvoiceImportWarnings))
		})
	}
}

func TestRecordPlanExport(t *testing.T) {
	before := value(PlanExportsTotal.WithLabelValues("success"))
	RecordPlanExport("success")
	assert.Equal(t, before+1, value(PlanExportsTotal.WithLabelValues("success")))
}

func TestGauges(t *testing.T) {
	SetPlannerSessions(3)
	assert.Equal(t, 3.0, value(PlannerSessions))

	UpdateCacheCapacity(128)
	assert.Equal(t, 128.0, value(CacheCapacity))

	RecordPalletFill(42)
	RecordCacheOperation("get", "hit")
}

func value(c prometheus.Metric) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	if m.Counter != nil {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}
