// Package metrics provides Prometheus metrics collection for the pallet service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// AllocationOperationsTotal counts engine operations by name and outcome.
	// Outcome is "ok" or the rejection reason.
	AllocationOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allocation_operations_total",
			Help: "Total number of allocation engine operations",
		},
		[]string{"operation", "outcome"},
	)

	// PalletFillPercentage observes the fill percentage of a pallet after a product is placed on it.
	PalletFillPercentage = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pallet_fill_percentage",
			Help:    "Pallet fill percentage after placement",
			Buckets: []float64{10, 25, 50, 75, 90, 100},
		},
	)

	// AutoSaveEventsTotal counts scheduler events per stream.
	AutoSaveEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autosave_events_total",
			Help: "Total number of auto-save scheduler events",
		},
		[]string{"stream", "result"},
	)

	// ChangeSetSyncDuration tracks how long a change set submission takes.
	ChangeSetSyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "changeset_sync_duration_seconds",
			Help:    "Change set synchronization duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"kind", "status"},
	)

	// ChangeSetItemsTotal counts synchronized items by kind and change type.
	ChangeSetItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "changeset_items_total",
			Help: "Total number of synchronized change set items",
		},
		[]string{"kind", "change"},
	)

	// PlannerSessions tracks the number of live planning sessions.
	PlannerSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "planner_sessions",
			Help: "Current number of live planning sessions",
		},
	)

	// CacheOperationsTotal tracks session cache operations.
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"},
	)

	// InvoiceImportsTotal counts invoice uploads by format and status.
	InvoiceImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_imports_total",
			Help: "Total number of imported invoices",
		},
		[]string{"format", "status"},
	)

	// InvoiceImportWarnings counts values coerced while importing invoices.
	InvoiceImportWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invoice_import_warnings_total",
			Help: "Total number of invoice values coerced on import",
		},
	)

	// PlanExportsTotal counts loading plan documents by status.
	PlanExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_exports_total",
			Help: "Total number of rendered loading plans",
		},
		[]string{"status"},
	)

	// CacheCapacity tracks cache capacity.
	CacheCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_capacity",
			Help: "Cache capacity",
		},
	)
)

// PrometheusMiddleware returns a Gin middleware that collects HTTP metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordAllocation records the outcome of an allocation operation.
func RecordAllocation(operation, outcome string) {
	AllocationOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordPalletFill records a pallet fill percentage.
func RecordPalletFill(percentage int) {
	PalletFillPercentage.Observe(float64(percentage))
}

// RecordAutoSave records an auto-save scheduler event.
func RecordAutoSave(stream, result string) {
	AutoSaveEventsTotal.WithLabelValues(stream, result).Inc()
}

// RecordChangeSetSync records metrics for a change set submission.
func RecordChangeSetSync(kind string, duration time.Duration, status string, added, modified, deleted int) {
	ChangeSetSyncDuration.WithLabelValues(kind, status).Observe(duration.Seconds())
	if status != "success" {
		return
	}
	ChangeSetItemsTotal.WithLabelValues(kind, "added").Add(float64(added))
	ChangeSetItemsTotal.WithLabelValues(kind, "modified").Add(float64(modified))
	ChangeSetItemsTotal.WithLabelValues(kind, "deleted").Add(float64(deleted))
}

// SetPlannerSessions updates the live session gauge.
func SetPlannerSessions(n int) {
	PlannerSessions.Set(float64(n))
}

// RecordCacheOperation records metrics for a cache operation.
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// UpdateCacheCapacity updates the cache capacity gauge.
func UpdateCacheCapacity(capacity int) {
	CacheCapacity.Set(float64(capacity))
}

// RecordInvoiceImport records an invoice upload and the number of coerced values.
func RecordInvoiceImport(format, status string, warnings int) {
	InvoiceImportsTotal.WithLabelValues(format, status).Inc()
	if warnings > 0 {
		InvoiceImportWarnings.Add(float64(warnings))
	}
}

// RecordPlanExport records a rendered loading plan.
func RecordPlanExport(status string) {
	PlanExportsTotal.WithLabelValues(status).Inc()
}
