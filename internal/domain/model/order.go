package model

import "time"

// Truck is the vehicle an order is loaded into.
type Truck struct {
	ID        string    `json:"id,omitempty" example:"mega-13.6"`
	Name      string    `json:"name,omitempty" example:"Mega trailer"`
	Dimension Dimension `json:"dimension"`
	// MaxWeight is the payload limit in kilograms
	MaxWeight float64 `json:"max_weight" example:"24000"`
}

// Order is the shipment context a plan is built for.
//
// @Description Shipment with its weight tier and truck
type Order struct {
	ID         string     `json:"id" example:"ORD-2024-0042"`
	Reference  string     `json:"reference,omitempty" example:"INV-88812"`
	WeightTier WeightTier `json:"weight_tier" example:"std"`
	Truck      Truck      `json:"truck"`
	CreatedAt  time.Time  `json:"created_at"`
}
