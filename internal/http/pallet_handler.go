package http

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/pallet-service/internal/domain/dto"
	"github.com/guttosm/pallet-service/internal/service"
)

// TemplateIDParam is the route parameter of a pallet template.
const TemplateIDParam = "templateId"

// PalletHandler provides HTTP handlers for pallet template routes.
type PalletHandler struct {
	templates service.PalletTemplateService
}

// NewPalletHandler creates a new PalletHandler instance.
func NewPalletHandler(templates service.PalletTemplateService) *PalletHandler {
	return &PalletHandler{templates: templates}
}

// ListTemplates handles GET /api/pallets requests.
//
// @Summary      List pallet templates
// @Description  Returns the pallet templates packages can be built on. The built-in templates are served when the backend is unavailable.
// @Tags         Pallets
// @Produce      json
// @Success      200 {object} dto.SuccessResponse{data=dto.PalletTemplatesResponse} "Pallet templates"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Router       /api/pallets [get]
func (h *PalletHandler) ListTemplates(c *gin.Context) {
	NewResponseBuilder(c).SuccessOK(dto.PalletTemplatesResponse{
		Templates: h.templates.Templates(c.Request.Context()),
	})
}

// UpsertTemplate handles PUT /api/pallets requests.
//
// @Summary      Create or replace a pallet template
// @Description  Stores a pallet template. Open plans see the change when they next assign a pallet.
// @Tags         Pallets
// @Accept       json
// @Produce      json
// @Param        request body dto.PalletTemplateRequest true "Pallet template"
// @Success      200 {object} dto.SuccessResponse "Stored template"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid template"
// @Failure      503 {object} dto.ErrorResponse "No backend configured or backend unavailable"
// @Router       /api/pallets [put]
func (h *PalletHandler) UpsertTemplate(c *gin.Context) {
	req, ok := bind[dto.PalletTemplateRequest](c)
	if !ok {
		return
	}

	template, err := h.templates.Upsert(c.Request.Context(), req.Template())
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	NewResponseBuilder(c).SuccessOK(template)
}

// DeleteTemplate handles DELETE /api/pallets/:templateId requests.
//
// @Summary      Delete a pallet template
// @Description  Removes a pallet template. Pallets already placed keep their dimensions.
// @Tags         Pallets
// @Param        templateId path string true "Template id"
// @Success      204 "Template deleted"
// @Failure      404 {object} dto.ErrorResponse "Template not found"
// @Failure      503 {object} dto.ErrorResponse "No backend configured or backend unavailable"
// @Router       /api/pallets/{templateId} [delete]
func (h *PalletHandler) DeleteTemplate(c *gin.Context) {
	if err := h.templates.Delete(c.Request.Context(), c.Param(TemplateIDParam)); err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	NewResponseBuilder(c).NoContent()
}
