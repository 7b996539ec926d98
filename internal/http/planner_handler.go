package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/pallet-service/internal/circuitbreaker"
	"github.com/guttosm/pallet-service/internal/domain/dto"
	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/export"
	"github.com/guttosm/pallet-service/internal/i18n"
	"github.com/guttosm/pallet-service/internal/importer"
	"github.com/guttosm/pallet-service/internal/metrics"
	"github.com/guttosm/pallet-service/internal/middleware"
	"github.com/guttosm/pallet-service/internal/service"
)

const (
	// PackageIDParam is the route parameter of the addressed package.
	PackageIDParam = "packageId"
	// InvoiceFormField is the multipart field carrying the invoice file.
	InvoiceFormField = "invoice"
	// DefaultMaxUploadSize bounds invoice uploads when no limit is configured.
	DefaultMaxUploadSize int64 = 10 << 20
)

// PlannerHandler provides HTTP handlers for planning sessions.
type PlannerHandler struct {
	planner       service.PlannerService
	importer      *importer.Importer
	maxUploadSize int64
}

// PlannerHandlerOption configures a PlannerHandler.
type PlannerHandlerOption func(*PlannerHandler)

// WithImporter sets the invoice importer.
func WithImporter(imp *importer.Importer) PlannerHandlerOption {
	return func(h *PlannerHandler) {
		if imp != nil {
			h.importer = imp
		}
	}
}

// WithMaxUploadSize bounds the size of invoice uploads in bytes.
func WithMaxUploadSize(size int64) PlannerHandlerOption {
	return func(h *PlannerHandler) {
		if size > 0 {
			h.maxUploadSize = size
		}
	}
}

// NewPlannerHandler creates a new PlannerHandler instance.
func NewPlannerHandler(planner service.PlannerService, opts ...PlannerHandlerOption) *PlannerHandler {
	h := &PlannerHandler{
		planner:       planner,
		importer:      importer.New(),
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// session loads the planner of the order in the route. It writes the error
// response and returns false when there is none.
func (h *PlannerHandler) session(c *gin.Context) (*service.Planner, bool) {
	planner, err := h.planner.Get(c.Request.Context(), c.Param(middleware.OrderIDParam))
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return nil, false
	}
	return planner, true
}

// respond writes the plan after an operation. A rejection carries the
// unchanged plan in its details.
func respond(c *gin.Context, view service.PlanView, err error) {
	builder := NewResponseBuilder(c)
	if err == nil {
		builder.SuccessOK(view)
		return
	}
	if rej, ok := service.AsRejection(err); ok {
		builder.Rejection(rej, view)
		return
	}
	builder.ServiceError(err)
}

// OpenPlan handles POST /api/orders requests.
//
// @Summary      Open a plan
// @Description  Starts a planning session for the order with every product in the pool. An existing session of the order is replaced. Supports idempotency via Idempotency-Key header.
// @Tags         Plans
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key for request deduplication"
// @Param        request body dto.OpenPlanRequest true "Order and its products"
// @Success      201 {object} dto.SuccessResponse "Plan opened"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      429 {object} dto.ErrorResponse "Too many requests - rate limit exceeded"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Failure      503 {object} dto.ErrorResponse "Service unavailable"
// @Router       /api/orders [post]
func (h *PlannerHandler) OpenPlan(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequestAndValidate[dto.OpenPlanRequest](c)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	planner, err := h.planner.Open(c.Request.Context(), req.Order, req.Products)
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessCreated(planner.View())
}

// ImportPlan handles POST /api/orders/import requests.
//
// @Summary      Open a plan from an invoice
// @Description  Reads the line items of a CSV or XLSX invoice and opens a plan with them. Malformed values are coerced and reported as warnings.
// @Tags         Plans
// @Accept       multipart/form-data
// @Produce      json
// @Param        invoice formData file true "Invoice file (.csv, .tsv, .txt, .xlsx)"
// @Param        order_id formData string false "Order id, generated when empty"
// @Param        reference formData string false "Order reference"
// @Param        weight_tier formData string false "Weight tier (std, eco, pre)"
// @Param        truck_id formData string false "Truck id"
// @Param        truck_name formData string false "Truck name"
// @Param        truck_width formData number false "Truck width in cm"
// @Param        truck_height formData number false "Truck height in cm"
// @Param        truck_depth formData number false "Truck depth in cm"
// @Param        max_weight formData number false "Truck payload in kg"
// @Success      201 {object} dto.SuccessResponse{data=dto.ImportPlanResponse} "Plan opened"
// @Failure      400 {object} dto.ErrorResponse "Bad request - missing, unsupported or empty invoice"
// @Failure      413 {object} dto.ErrorResponse "Invoice too large"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Router       /api/orders/import [post]
func (h *PlannerHandler) ImportPlan(c *gin.Context) {
	builder := NewResponseBuilder(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	header, err := c.FormFile(InvoiceFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			builder.Error(http.StatusRequestEntityTooLarge, i18n.ErrKeyInvalidRequest, err)
			return
		}
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvoiceRequired, err)
		return
	}

	var form dto.ImportPlanForm
	if err := c.ShouldBind(&form); err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	file, err := header.Open()
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvoiceRequired, err)
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.importer.Import(header.Filename, file)
	if err != nil {
		metrics.RecordInvoiceImport(format, "error", 0)
		builder.ServiceError(err)
		return
	}
	metrics.RecordInvoiceImport(format, "success", len(result.Warnings))

	planner, err := h.planner.Open(c.Request.Context(), form.Order(), result.Products)
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessCreated(dto.ImportPlanResponse{
		Plan:     planner.View(),
		Warnings: result.Warnings,
	})
}

// GetPlan handles GET /api/orders/:orderId/plan requests.
//
// @Summary      Get a plan
// @Description  Returns the pool, the packages, the totals and the auto-save state of the plan. A plan that is not live is rebuilt from its snapshot or the backend.
// @Tags         Plans
// @Produce      json
// @Param        orderId path string true "Order id"
// @Success      200 {object} dto.SuccessResponse "Plan"
// @Failure      404 {object} dto.ErrorResponse "No plan exists for the order"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Router       /api/orders/{orderId}/plan [get]
func (h *PlannerHandler) GetPlan(c *gin.Context) {
	planner, ok := h.session(c)
	if !ok {
		return
	}
	NewResponseBuilder(c).SuccessOK(planner.View())
}

// ClosePlan handles DELETE /api/orders/:orderId/plan requests.
//
// @Summary      Close a plan
// @Description  Flushes pending saves and ends the planning session. The plan can be opened again from its persisted state.
// @Tags         Plans
// @Param        orderId path string true "Order id"
// @Success      204 "Plan closed"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Router       /api/orders/{orderId}/plan [delete]
func (h *PlannerHandler) ClosePlan(c *gin.Context) {
	if err := h.planner.Close(c.Request.Context(), c.Param(middleware.OrderIDParam)); err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	NewResponseBuilder(c).NoContent()
}

// GetChanges handles GET /api/orders/:orderId/plan/changes requests.
//
// @Summary      Get pending changes
// @Description  Returns the line item and package change sets against the last synchronized baseline.
// @Tags         Plans
// @Produce      json
// @Param        orderId path string true "Order id"
// @Success      200 {object} dto.SuccessResponse "Pending change sets"
// @Failure      404 {object} dto.ErrorResponse "No plan exists for the order"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Router       /api/orders/{orderId}/plan/changes [get]
func (h *PlannerHandler) GetChanges(c *gin.Context) {
	planner, ok := h.session(c)
	if !ok {
		return
	}
	changes, err := planner.Changes()
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	NewResponseBuilder(c).SuccessOK(changes)
}

// SubmitPlan handles POST /api/orders/:orderId/plan/submit requests.
//
// @Summary      Submit pending changes
// @Description  Synchronizes the pending change sets with the backend now instead of waiting for the auto-save.
// @Tags         Plans
// @Produce      json
// @Param        orderId path string true "Order id"
// @Success      200 {object} dto.SuccessResponse "Sync results per collection"
// @Failure      404 {object} dto.ErrorResponse "No plan exists for the order"
// @Failure      409 {object} dto.ErrorResponse "Plan was closed"
// @Failure      502 {object} dto.ErrorResponse "Backend rejected the changes"
// @Failure      503 {object} dto.ErrorResponse "No backend configured or backend unavailable"
// @Router       /api/orders/{orderId}/plan/submit [post]
func (h *PlannerHandler) SubmitPlan(c *gin.Context) {
	planner, ok := h.session(c)
	if !ok {
		return
	}
	builder := NewResponseBuilder(c)

	results, err := planner.Submit(c.Request.Context())
	if err != nil {
		if isSubmitFailure(err) {
			builder.Error(http.StatusBadGateway, i18n.ErrKeySyncFailed, err)
			return
		}
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(gin.H{
		"results": results,
		"plan":    planner.View(),
	})
}

// isSubmitFailure reports whether err came from the backend itself rather
// than from the session or the circuit breaker.
func isSubmitFailure(err error) bool {
	switch {
	case errors.Is(err, service.ErrRepositoryNotConfigured),
		errors.Is(err, service.ErrSessionClosed),
		errors.Is(err, circuitbreaker.ErrCircuitOpen),
		errors.Is(err, circuitbreaker.ErrTooManyRequests):
		return false
	}
	return true
}

// ExportPlan handles GET /api/orders/:orderId/plan/export requests.
//
// @Summary      Export the loading plan
// @Description  Renders the plan as a PDF with one table per loaded package and QR-coded pallet labels. Headings follow Accept-Language.
// @Tags         Plans
// @Produce      application/pdf
// @Param        orderId path string true "Order id"
// @Param        labels query bool false "Include pallet labels (default true)"
// @Param        Accept-Language header string false "Document language (en, pt, nl)"
// @Success      200 {file} binary "Loading plan"
// @Failure      404 {object} dto.ErrorResponse "No plan exists for the order"
// @Failure      422 {object} dto.ErrorResponse "Plan has no products"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Router       /api/orders/{orderId}/plan/export [get]
func (h *PlannerHandler) ExportPlan(c *gin.Context) {
	planner, ok := h.session(c)
	if !ok {
		return
	}

	view := planner.View()
	opts := []export.Option{export.WithLocale(i18n.GetLocale(c))}
	if c.Query("labels") == "false" {
		opts = append(opts, export.WithoutLabels())
	}

	var buf bytes.Buffer
	err := export.WritePlan(&buf, export.LoadingPlan{
		Order:       view.Order,
		Packages:    view.Packages,
		Pool:        view.Pool,
		Totals:      view.Totals,
		GeneratedAt: time.Now().UTC(),
	}, opts...)
	if err != nil {
		metrics.RecordPlanExport("error")
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	metrics.RecordPlanExport("success")

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="loading-plan-%s.pdf"`, sanitizeFilename(view.OrderID)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// sanitizeFilename keeps the characters safe inside a quoted header value.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}

// ReorderPool handles POST /api/orders/:orderId/plan/pool/reorder requests.
//
// @Summary      Reorder the pool
// @Description  Moves a pool product from one position to another.
// @Tags         Pool
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        request body dto.MoveRequest true "Positions"
// @Success      200 {object} dto.SuccessResponse "Updated plan"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      404 {object} dto.ErrorResponse "No plan exists for the order"
// @Failure      422 {object} dto.ErrorResponse "Rejected - index out of range"
// @Router       /api/orders/{orderId}/plan/pool/reorder [post]
func (h *PlannerHandler) ReorderPool(c *gin.Context) {
	req, ok := bind[dto.MoveRequest](c)
	if !ok {
		return
	}
	planner, ok := h.session(c)
	if !ok {
		return
	}
	view, err := planner.MoveWithinPool(*req.From, *req.To)
	respond(c, view, err)
}

// ConsolidatePool handles POST /api/orders/:orderId/plan/pool/consolidate requests.
//
// @Summary      Consolidate the pool
// @Description  Merges the split parts of each product left in the pool back together.
// @Tags         Pool
// @Produce      json
// @Param        orderId path string true "Order id"
// @Success      200 {object} dto.SuccessResponse "Updated plan"
// @Failure      404 {object} dto.ErrorResponse "No plan exists for the order"
// @Router       /api/orders/{orderId}/plan/pool/consolidate [post]
func (h *PlannerHandler) ConsolidatePool(c *gin.Context) {
	planner, ok := h.session(c)
	if !ok {
		return
	}
	view, err := planner.ConsolidatePool()
	respond(c, view, err)
}

// AddProduct handles POST /api/orders/:orderId/plan/products requests.
//
// @Summary      Add a product
// @Description  Adds a product to the pool of the plan.
// @Tags         Products
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        request body model.Product true "Product"
// @Success      200 {object} dto.SuccessResponse "Updated plan"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      404 {object} dto.ErrorResponse "No plan exists for the order"
// @Failure      422 {object} dto.ErrorResponse "Rejected - invalid product"
// @Router       /api/orders/{orderId}/plan/products [post]
func (h *PlannerHandler) AddProduct(c *gin.Context) {
	product, ok := bind[model.Product](c)
	if !ok {
		return
	}
	planner, ok := h.session(c)
	if !ok {
		return
	}
	view, err := planner.AddProduct(*product)
	respond(c, view, err)
}

// DeleteProduct handles DELETE /api/orders/:orderId/plan/products requests.
//
// @Summary      Delete a product
// @Description  Removes a product from the plan, wherever it is placed.
// @Tags         Products
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        product_id query string true "Product id"
// @Success      200 {object} dto.SuccessResponse "Updated plan"
// @Failure      400 {object} dto.ErrorResponse "Bad request - missing product id"
// @Failure      404 {object} dto.ErrorResponse "No plan or product found"
// @Router       /api/orders/{orderId}/plan/products [delete]
func (h *PlannerHandler) DeleteProduct(c *gin.Context) {
	productID, ok := requiredQuery(c, "product_id")
	if !ok {
		return
	}
	planner, ok := h.session(c)
	if !ok {
		return
	}
	view, err := planner.DeleteProduct(productID)
	respond(c, view, err)
}

// SplitProduct handles POST /api/orders/:orderId/plan/products/split requests.
//
// @Summary      Split a product
// @Description  Splits a pool product into parts of the given count, or halves it when no count is sent.
// @Tags         Products
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        request body dto.SplitRequest true "Product and part count"
// @Success      200 {object} dto.SuccessResponse "Updated plan"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      404 {object} dto.ErrorResponse "No plan or product found"
// @Failure      422 {object} dto.ErrorResponse "Rejected - invalid count"
// @Router       /api/orders/{orderId}/plan/products/split [post]
func (h *PlannerHandler) SplitProduct(c *gin.Context) {
	req, ok := bind[dto.SplitRequest](c)
	if !ok {
		return
	}
	planner, ok := h.session(c)
	if !ok {
		return
	}
	view, err := planner.SplitProduct(req.ProductID, req.Count)
	respond(c, view, err)
}

// Capacity handles GET /api/orders/:orderId/plan/capacity requests.
//
// @Summary      Check capacity
// @Description  Reports whether a product fits on the pallet of a package, and how many more units would.
// @Tags         Packages
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        product_id query string true "Product id"
// @Param        package_id query string true "Package id"
// @Success      200 {object} dto.SuccessResponse "Fit report"
// @Failure      400 {object} dto.ErrorResponse "Bad request - missing parameters"
// @Failure      404 {object} dto.ErrorResponse "No plan, product or package found"
// @Failure      422 {object} dto.ErrorResponse "Rejected - package has no pallet"
// @Router       /api/orders/{orderId}/plan/capacity [get]
func (h *PlannerHandler) Capacity(c *gin.Context) {
	productID, ok := requiredQuery(c, "product_id")
	if !ok {
		return
	}
	packageID, ok := requiredQuery(c, "package_id")
	if !ok {
		return
	}
	planner, ok := h.session(c)
	if !ok {
		return
	}
	report, err := planner.Capacity(productID, packageID)
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	NewResponseBuilder(c).SuccessOK(report)
}

// ReorderPackage handles POST /api/orders/:orderId/plan/packages/:packageId/reorder requests.
//
// @Summary      Reorder a package
// @Description  Moves a product of the package from one position to another.
// @Tags         Packages
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        packageId path string true "Package id"
// @Param        request body dto.MoveRequest true "Positions"
// @Success      200 {object} dto.SuccessResponse "Updated plan"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      404 {object} dto.ErrorResponse "No plan or package found"
// @Failure      422 {object} dto.ErrorResponse "Rejected - index out of range"
// @Router       /api/orders/{orderId}/plan/packages/{packageId}/reorder [post]
func (h *PlannerHandler) ReorderPackage(c *gin.Context) {
	req, ok := bind[dto.MoveRequest](c)
	if !ok {
		return
	}
	planner, ok := h.session(c)
	if !ok {
		return
	}
	view, err := planner.MoveWithinPackage(c.Param(PackageIDParam), *req.From, *req.To)
	respond(c, view, err)
}

// LoadProduct handles POST /api/orders/:orderId/plan/packages/:packageId/products requests.
//
// @Summary      Load a product
// @Description  Moves a pool product onto the pallet of the package. Rejected with the fill percentage when it does not fit.
// @Tags         Packages
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        packageId path string true "Package id"
// @Param        request body dto.IndexRequest true "Pool position"
// @Success      200 {object} dto.SuccessResponse "Updated plan"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      404 {object} dto.ErrorResponse "No plan or package found"
// @Failure      422 {object} dto.ErrorResponse "Rejected - does not fit or no pallet"
// @Router       /api/orders/{orderId}/plan/packages/{packageId}/products [post]
func (h *PlannerHandler) LoadProduct(c *gin.Context) {
	req, ok := bind[dto.IndexRequest](c)
	if !ok {
		return
	}
	planner, ok := h.session(c)
	if !ok {
		return
	}
	view, err := planner.MoveFromPoolToPackage(c.Param(PackageIDParam), *req.Index)
	respond(c, view, err)
}

// TransferProduct handles POST /api/orders/:orderId/plan/packages/:packageId/transfer requests.
//
// @Summary      Transfer a product
// @Description  Moves a product from another package onto the pallet of this one.
// @Tags         Packages
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        packageId path string true "Target package id"
// @Param        request body dto.TransferRequest true "Source package and position"
// @Success      200 {object} dto.SuccessResponse "Updated plan"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      404 {object} dto.ErrorResponse "No plan or package found"
// @Failure      422 {object} dto.ErrorResponse "Rejected - does not fit or no pallet"
// @Router       /api/orders/{orderId}/plan/packages/{packageId}/transfer [post]
func (h *PlannerHandler) TransferProduct(c *gin.Context) {
	req, ok := bind[dto.TransferRequest](c)
	if !ok {
		return
	}
	planner, ok := h.session(c)
	if !ok {
		return
	}
	view, err := planner.MoveBetweenPackages(req.SourcePackageID, c.Param(PackageIDParam), *req.Index)
	respond(c, view, err)
}

// UnloadProduct handles POST /api/orders/:orderId/plan/packages/:packageId/unload requests.
//
// @Summary      Unload a product
// @Description  Moves a product of the package back to the pool.
// @Tags         Packages
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        packageId path string true "Package id"
// @Param        request body dto.IndexRequest true "Package position"
// @Success      200 {object} dto.SuccessResponse "Updated plan"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      404 {object} dto.ErrorResponse "No plan or package found"
// @Failure      422 {object} dto.ErrorResponse "Rejected - index out of range"
// @Router       /api/orders/{orderId}/plan/packages/{packageId}/unload [post]
func (h *PlannerHandler) UnloadProduct(c *gin.Context) {
	req, ok := bind[dto.IndexRequest](c)
	if !ok {
		return
	}
	planner, ok := h.session(c)
	if !ok {
		return
	}
	view, err := planner.MoveFromPackageToPool(c.Param(PackageIDParam), *req.Index)
	respond(c, view, err)
}

// AssignPallet handles PUT /api/orders/:orderId/plan/packages/:packageId/pallet requests.
//
// @Summary      Assign a pallet
// @Description  Places a pallet of the template on an empty package slot. A new empty package is appended when the last one gets a pallet.
// @Tags         Packages
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        packageId path string true "Package id"
// @Param        request body dto.AssignPalletRequest true "Pallet template"
// @Success      200 {object} dto.SuccessResponse "Updated plan"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      404 {object} dto.ErrorResponse "No plan, package or template found"
// @Failure      422 {object} dto.ErrorResponse "Rejected - package already has a pallet"
// @Router       /api/orders/{orderId}/plan/packages/{packageId}/pallet [put]
func (h *PlannerHandler) AssignPallet(c *gin.Context) {
	req, ok := bind[dto.AssignPalletRequest](c)
	if !ok {
		return
	}
	planner, ok := h.session(c)
	if !ok {
		return
	}
	view, err := planner.AssignPallet(c.Param(PackageIDParam), req.TemplateID)
	respond(c, view, err)
}

// DetachPallet handles DELETE /api/orders/:orderId/plan/packages/:packageId/pallet requests.
//
// @Summary      Detach a pallet
// @Description  Removes the pallet of the package and returns its products to the pool.
// @Tags         Packages
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        packageId path string true "Package id"
// @Success      200 {object} dto.SuccessResponse "Updated plan"
// @Failure      404 {object} dto.ErrorResponse "No plan or package found"
// @Failure      422 {object} dto.ErrorResponse "Rejected - package has no pallet"
// @Router       /api/orders/{orderId}/plan/packages/{packageId}/pallet [delete]
func (h *PlannerHandler) DetachPallet(c *gin.Context) {
	planner, ok := h.session(c)
	if !ok {
		return
	}
	view, err := planner.DetachPallet(c.Param(PackageIDParam))
	respond(c, view, err)
}

// RemovePackage handles DELETE /api/orders/:orderId/plan/packages/:packageId requests.
//
// @Summary      Remove a package
// @Description  Deletes the package and returns its products to the pool.
// @Tags         Packages
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        packageId path string true "Package id"
// @Success      200 {object} dto.SuccessResponse "Updated plan"
// @Failure      404 {object} dto.ErrorResponse "No plan or package found"
// @Router       /api/orders/{orderId}/plan/packages/{packageId} [delete]
func (h *PlannerHandler) RemovePackage(c *gin.Context) {
	planner, ok := h.session(c)
	if !ok {
		return
	}
	view, err := planner.RemovePackage(c.Param(PackageIDParam))
	respond(c, view, err)
}

// RemoveAllPackages handles DELETE /api/orders/:orderId/plan/packages requests.
//
// @Summary      Remove all packages
// @Description  Returns every product to the pool and leaves a single empty package.
// @Tags         Packages
// @Produce      json
// @Param        orderId path string true "Order id"
// @Success      200 {object} dto.SuccessResponse "Updated plan"
// @Failure      404 {object} dto.ErrorResponse "No plan exists for the order"
// @Router       /api/orders/{orderId}/plan/packages [delete]
func (h *PlannerHandler) RemoveAllPackages(c *gin.Context) {
	planner, ok := h.session(c)
	if !ok {
		return
	}
	view, err := planner.RemoveAllPackages()
	respond(c, view, err)
}

// bind decodes the JSON body into T, writing a 400 response on failure.
func bind[T any](c *gin.Context) (*T, bool) {
	req, err := BuildRequestAndValidate[T](c)
	if err != nil {
		NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return nil, false
	}
	return req, true
}

func requiredQuery(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		NewResponseBuilder(c).ErrorWithDetails(http.StatusBadRequest, i18n.ErrKeyInvalidRequest,
			map[string]interface{}{"field": name}, nil)
		return "", false
	}
	return value, true
}
