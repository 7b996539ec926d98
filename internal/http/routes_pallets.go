package http

import (
	"github.com/gin-gonic/gin"
)

// PalletRoutes handles pallet template route registration.
type PalletRoutes struct {
	handler *PalletHandler
}

// NewPalletRoutes creates a new PalletRoutes instance.
func NewPalletRoutes(handler *PalletHandler) *PalletRoutes {
	return &PalletRoutes{handler: handler}
}

// RegisterRoutes registers the pallet template routes.
func (r *PalletRoutes) RegisterRoutes(rg *gin.RouterGroup, _ *RouterConfig) {
	pallets := rg.Group("/pallets")
	pallets.GET("", r.handler.ListTemplates)
	pallets.PUT("", r.handler.UpsertTemplate)
	pallets.DELETE("/:"+TemplateIDParam, r.handler.DeleteTemplate)
}
