package http

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/pallet-service/internal/middleware"
)

// PlannerRoutes handles planning session route registration.
type PlannerRoutes struct {
	handler *PlannerHandler
}

// NewPlannerRoutes creates a new PlannerRoutes instance.
func NewPlannerRoutes(handler *PlannerHandler) *PlannerRoutes {
	return &PlannerRoutes{handler: handler}
}

// RegisterRoutes registers the order and plan routes.
func (r *PlannerRoutes) RegisterRoutes(rg *gin.RouterGroup, _ *RouterConfig) {
	h := r.handler

	orders := rg.Group("/orders")
	orders.POST("", h.OpenPlan)
	orders.POST("/import", h.ImportPlan)

	plan := orders.Group("/:" + middleware.OrderIDParam + "/plan")
	{
		plan.GET("", h.GetPlan)
		plan.DELETE("", h.ClosePlan)
		plan.GET("/changes", h.GetChanges)
		plan.POST("/submit", h.SubmitPlan)
		plan.GET("/export", h.ExportPlan)
		plan.GET("/capacity", h.Capacity)

		plan.POST("/pool/reorder", h.ReorderPool)
		plan.POST("/pool/consolidate", h.ConsolidatePool)

		plan.POST("/products", h.AddProduct)
		plan.DELETE("/products", h.DeleteProduct)
		plan.POST("/products/split", h.SplitProduct)

		plan.DELETE("/packages", h.RemoveAllPackages)
		pkg := plan.Group("/packages/:" + PackageIDParam)
		pkg.DELETE("", h.RemovePackage)
		pkg.POST("/reorder", h.ReorderPackage)
		pkg.POST("/products", h.LoadProduct)
		pkg.POST("/transfer", h.TransferProduct)
		pkg.POST("/unload", h.UnloadProduct)
		pkg.PUT("/pallet", h.AssignPallet)
		pkg.DELETE("/pallet", h.DetachPallet)
	}
}

// ExportPath is the full route of the PDF export, which keeps the server wide deadline.
const ExportPath = "/api/orders/:" + middleware.OrderIDParam + "/plan/export"
