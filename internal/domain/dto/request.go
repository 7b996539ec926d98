// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs are used to decouple the HTTP layer from the domain model,
// providing validation and serialization for API communication.
package dto

import (
	"strings"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// OpenPlanRequest starts a planning session for an order.
//
// @Description Request to open a plan with every product in the pool
type OpenPlanRequest struct {
	Order    model.Order     `json:"order"`
	Products []model.Product `json:"products" binding:"required,min=1"`
} // @name OpenPlanRequest

// Validate performs custom validation on the request.
func (r *OpenPlanRequest) Validate() error {
	for _, p := range r.Products {
		if strings.TrimSpace(p.ID) == "" {
			return &ValidationError{Field: "products.id", Message: "must not be empty"}
		}
	}
	return nil
}

// ImportPlanForm carries the order fields sent next to an uploaded invoice.
type ImportPlanForm struct {
	OrderID     string  `form:"order_id"`
	Reference   string  `form:"reference"`
	WeightTier  string  `form:"weight_tier"`
	TruckID     string  `form:"truck_id"`
	TruckName   string  `form:"truck_name"`
	TruckWidth  float64 `form:"truck_width"`
	TruckHeight float64 `form:"truck_height"`
	TruckDepth  float64 `form:"truck_depth"`
	MaxWeight   float64 `form:"max_weight"`
}

// Order builds the order described by the form.
func (f ImportPlanForm) Order() model.Order {
	return model.Order{
		ID:         strings.TrimSpace(f.OrderID),
		Reference:  strings.TrimSpace(f.Reference),
		WeightTier: model.WeightTier(f.WeightTier),
		Truck: model.Truck{
			ID:        f.TruckID,
			Name:      f.TruckName,
			Dimension: model.NewDimension(f.TruckWidth, f.TruckHeight, f.TruckDepth).Safe(),
			MaxWeight: model.SafeNumber(f.MaxWeight),
		},
	}
}

// MoveRequest reorders an item within the pool or a package.
//
// @Description Reorder request, both indices are zero based
type MoveRequest struct {
	From *int `json:"from" binding:"required" example:"0"`
	To   *int `json:"to" binding:"required" example:"2"`
} // @name MoveRequest

// IndexRequest addresses one item of the pool or a package by position.
type IndexRequest struct {
	Index *int `json:"index" binding:"required" example:"0"`
} // @name IndexRequest

// TransferRequest moves an item from another package into the addressed one.
type TransferRequest struct {
	SourcePackageID string `json:"source_package_id" binding:"required" example:"3f2b8c1e-9a57-4c1d-8f0e-2a6d7b9c4e10"`
	Index           *int   `json:"index" binding:"required" example:"0"`
} // @name TransferRequest

// SplitRequest splits a pool product. Without Count it is halved.
type SplitRequest struct {
	ProductID string `json:"product_id" binding:"required" example:"SKU-100"`
	Count     *int   `json:"count,omitempty" example:"2"`
} // @name SplitRequest

// AssignPalletRequest places a pallet of the given template on a package.
type AssignPalletRequest struct {
	TemplateID string `json:"template_id" binding:"required" example:"eur"`
} // @name AssignPalletRequest

// PalletTemplateRequest creates or replaces a pallet template.
//
// @Description Pallet template, dimensions in centimetres
type PalletTemplateRequest struct {
	ID        string          `json:"id" binding:"required" example:"eur"`
	Name      string          `json:"name,omitempty" example:"EUR pallet"`
	Dimension model.Dimension `json:"dimension"`
	Weight    float64         `json:"weight" example:"25"`
	MaxLoad   float64         `json:"max_load,omitempty" example:"1500"`
} // @name PalletTemplateRequest

// Template converts the request into a pallet template.
func (r PalletTemplateRequest) Template() model.Pallet {
	return model.Pallet{
		ID:        strings.TrimSpace(r.ID),
		Name:      strings.TrimSpace(r.Name),
		Dimension: r.Dimension,
		Weight:    model.SafeNumber(r.Weight),
		MaxLoad:   model.SafeNumber(r.MaxLoad),
	}
}
