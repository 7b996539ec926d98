// Package i18n provides internationalization support for the pallet service.
package i18n

// Error message translation keys.
const (
	// ErrKeyInvalidRequest indicates an invalid request.
	ErrKeyInvalidRequest = "error.invalid_request"
	// ErrKeyInvalidRequestBody indicates an invalid request body.
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	// ErrKeyInternalError indicates an internal server error.
	ErrKeyInternalError = "error.internal_error"
	// ErrKeyNotFound indicates a resource was not found.
	ErrKeyNotFound = "error.not_found"
	// ErrKeyConflict indicates a conflict with current state.
	ErrKeyConflict = "error.conflict"
	// ErrKeyTimeout indicates a request timeout.
	ErrKeyTimeout = "error.timeout"
	// ErrKeyRateLimitExceeded indicates too many requests from a client.
	ErrKeyRateLimitExceeded = "error.rate_limit_exceeded"
	// ErrKeyServiceUnavailable indicates an open circuit or missing backend.
	ErrKeyServiceUnavailable = "error.service_unavailable"
	// ErrKeySessionNotFound indicates an order without a plan.
	ErrKeySessionNotFound = "error.session_not_found"
	// ErrKeySessionClosed indicates a plan used after it was closed.
	ErrKeySessionClosed = "error.session_closed"
	// ErrKeyBackendNotConfigured indicates an operation that needs the persistence backend.
	ErrKeyBackendNotConfigured = "error.backend_not_configured"
	// ErrKeyInvalidTemplate indicates an invalid pallet template.
	ErrKeyInvalidTemplate = "error.invalid_template"
	// ErrKeyInvoiceRequired indicates an import request without a file.
	ErrKeyInvoiceRequired = "error.invoice_required"
	// ErrKeyUnsupportedFormat indicates an invoice that is neither CSV nor XLSX.
	ErrKeyUnsupportedFormat = "error.unsupported_format"
	// ErrKeyEmptyInvoice indicates an invoice without rows.
	ErrKeyEmptyInvoice = "error.empty_invoice"
	// ErrKeyMissingColumns indicates an invoice header without required columns.
	ErrKeyMissingColumns = "error.missing_columns"
	// ErrKeySyncFailed indicates change sets the backend did not accept.
	ErrKeySyncFailed = "error.sync_failed"
	// ErrKeyExportFailed indicates a loading plan that could not be rendered.
	ErrKeyExportFailed = "error.export_failed"
)

// Rejection message translation keys, one per allocation rejection reason.
const (
	RejectionKeyFitFailure     = "rejection.fit-failure"
	RejectionKeyNotFound       = "rejection.not-found"
	RejectionKeyInvalidRange   = "rejection.invalid-range"
	RejectionKeyPalletAssigned = "rejection.pallet-assigned"
	RejectionKeyNoPallet       = "rejection.no-pallet"
	RejectionKeyInvalidInput   = "rejection.invalid-input"
)

// RejectionKey returns the translation key of a rejection reason.
func RejectionKey(reason string) string {
	return "rejection." + reason
}

// Success message translation keys.
const (
	SuccessKeyPlanOpened      = "success.plan_opened"
	SuccessKeyPlanUpdated     = "success.plan_updated"
	SuccessKeyPlanSubmitted   = "success.plan_submitted"
	SuccessKeyPlanClosed      = "success.plan_closed"
	SuccessKeyTemplateSaved   = "success.template_saved"
	SuccessKeyTemplateDeleted = "success.template_deleted"
)

// Loading plan document keys.
const (
	DocKeyTitle           = "doc.title"
	DocKeyOrder           = "doc.order"
	DocKeyReference       = "doc.reference"
	DocKeyTruck           = "doc.truck"
	DocKeyWeightTier      = "doc.weight_tier"
	DocKeyTotalWeight     = "doc.total_weight"
	DocKeyLinearMeters    = "doc.linear_meters"
	DocKeyRemainingArea   = "doc.remaining_area"
	DocKeyRemainingWeight = "doc.remaining_weight"
	DocKeyOverweight      = "doc.overweight"
	DocKeyPackage         = "doc.package"
	DocKeyFill            = "doc.fill"
	DocKeyPool            = "doc.pool"
	DocKeyProduct         = "doc.product"
	DocKeyName            = "doc.name"
	DocKeyCount           = "doc.count"
	DocKeyDimensions      = "doc.dimensions"
	DocKeyWeight          = "doc.weight"
	DocKeyGenerated       = "doc.generated"
	DocKeyEmpty           = "doc.empty"
)
