package model

import "github.com/shopspring/decimal"

// PackageTotals is the per-package projection of weight and volume usage.
type PackageTotals struct {
	PackageID      string          `json:"package_id"`
	Weight         decimal.Decimal `json:"weight"`
	UsedVolume     decimal.Decimal `json:"used_volume"`
	FillPercentage int             `json:"fill_percentage"`
	// Overweight is set when the load exceeds the pallet's MaxLoad
	Overweight bool `json:"overweight,omitempty"`
}

// Totals is the read-side projection of a plan against its truck.
// Weights are kilograms, areas square metres, lengths metres.
type Totals struct {
	WeightTier      WeightTier      `json:"weight_tier"`
	TotalWeight     decimal.Decimal `json:"total_weight"`
	PoolWeight      decimal.Decimal `json:"pool_weight"`
	LinearMeters    decimal.Decimal `json:"linear_meters"`
	UsedArea        decimal.Decimal `json:"used_area"`
	RemainingArea   decimal.Decimal `json:"remaining_area"`
	RemainingWeight decimal.Decimal `json:"remaining_weight"`
	Overweight      bool            `json:"overweight"`
	Pallets         int             `json:"pallets"`
	Packages        []PackageTotals `json:"packages"`
}
