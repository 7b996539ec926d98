package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/guttosm/pallet-service/internal/circuitbreaker"
	"github.com/guttosm/pallet-service/internal/export"
	"github.com/guttosm/pallet-service/internal/i18n"
	"github.com/guttosm/pallet-service/internal/importer"
	"github.com/guttosm/pallet-service/internal/repository"
	"github.com/guttosm/pallet-service/internal/service"
)

// ServiceError maps an error of the planner, template or import layer to a
// translated response. Allocation rejections answer 422, or 404 when the
// addressed product or package does not exist, with the reason in details.
func (b *ResponseBuilder) ServiceError(err error) {
	if rej, ok := service.AsRejection(err); ok {
		b.Rejection(rej, nil)
		return
	}

	status, key := statusForError(err)
	var details map[string]interface{}
	if status == http.StatusBadRequest {
		details = map[string]interface{}{"detail": err.Error()}
	}
	b.ErrorWithDetails(status, key, details, err)
}

// Rejection sends the response of a refused allocation operation. A non-nil
// plan is attached so the client can re-render the unchanged state.
func (b *ResponseBuilder) Rejection(rej *service.Rejection, plan interface{}) {
	status := http.StatusUnprocessableEntity
	if rej.Reason == service.ReasonNotFound {
		status = http.StatusNotFound
	}

	details := map[string]interface{}{
		"reason":    string(rej.Reason),
		"operation": rej.Operation,
	}
	if rej.PackageID != "" {
		details["package_id"] = rej.PackageID
	}
	if rej.ProductID != "" {
		details["product_id"] = rej.ProductID
	}
	if rej.Reason == service.ReasonFitFailure {
		details["fill_percentage"] = rej.FillPercentage
	}
	if rej.Fit != nil {
		details["fit"] = rej.Fit
	}
	if rej.Detail != "" {
		details["detail"] = rej.Detail
	}
	if plan != nil {
		details["plan"] = plan
	}
	b.ErrorWithDetails(status, i18n.RejectionKey(string(rej.Reason)), details, rej)
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, i18n.ErrKeySessionNotFound
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, i18n.ErrKeyNotFound
	case errors.Is(err, service.ErrSessionClosed):
		return http.StatusConflict, i18n.ErrKeySessionClosed
	case errors.Is(err, service.ErrRepositoryNotConfigured):
		return http.StatusServiceUnavailable, i18n.ErrKeyBackendNotConfigured
	case errors.Is(err, circuitbreaker.ErrCircuitOpen), errors.Is(err, circuitbreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable
	case errors.Is(err, service.ErrInvalidTemplate):
		return http.StatusBadRequest, i18n.ErrKeyInvalidTemplate
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return http.StatusBadRequest, i18n.ErrKeyUnsupportedFormat
	case errors.Is(err, importer.ErrEmptyInvoice):
		return http.StatusBadRequest, i18n.ErrKeyEmptyInvoice
	case errors.Is(err, importer.ErrMissingColumns):
		return http.StatusBadRequest, i18n.ErrKeyMissingColumns
	case errors.Is(err, export.ErrNothingToExport):
		return http.StatusUnprocessableEntity, i18n.ErrKeyExportFailed
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, i18n.ErrKeyTimeout
	default:
		return http.StatusInternalServerError, i18n.ErrKeyInternalError
	}
}
