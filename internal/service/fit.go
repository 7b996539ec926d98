package service

import (
	"math"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

// FitReason explains why a product does not fit a pallet.
type FitReason string

const (
	FitOK        FitReason = ""
	FitHeight    FitReason = "height"
	FitFootprint FitReason = "footprint"
	FitVolume    FitReason = "volume"
)

// FitReport is the full outcome of a fit evaluation.
type FitReport struct {
	Fits               bool      `json:"fits"`
	Reason             FitReason `json:"reason,omitempty"`
	Rotated            bool      `json:"rotated"`
	FillPercentage     int       `json:"fill_percentage"`
	RemainingVolume    float64   `json:"remaining_volume"`
	MaxAdditionalCount int       `json:"max_additional_count"`
}

// FitChecker validates products against pallet dimensions and remaining volume.
// It only reasons about raw volume; stacking shape is not considered.
type FitChecker struct{}

// NewFitChecker creates a FitChecker.
func NewFitChecker() FitChecker {
	return FitChecker{}
}

// CanFit reports whether product can be added to pallet given its existing contents.
func (f FitChecker) CanFit(product model.Product, pallet model.Pallet, existing []model.Product) bool {
	return f.Evaluate(product, pallet, existing).Fits
}

// Evaluate runs the height, footprint and volume checks in that order.
func (f FitChecker) Evaluate(product model.Product, pallet model.Pallet, existing []model.Product) FitReport {
	remaining := f.RemainingVolume(pallet, existing)
	report := FitReport{
		RemainingVolume:    remaining,
		FillPercentage:     f.FillPercentage(pallet, existing),
		MaxAdditionalCount: f.MaxAdditionalCount(product, pallet, existing),
	}

	ok, rotated, reason := footprintFits(product.Dimension, pallet.Dimension)
	report.Rotated = rotated
	if !ok {
		report.Reason = reason
		return report
	}

	if product.TotalVolume() > remaining {
		report.Reason = FitVolume
		return report
	}

	report.Fits = true
	return report
}

// UsedVolume sums w*d*h*count over products.
func (f FitChecker) UsedVolume(products []model.Product) float64 {
	var used float64
	for _, p := range products {
		used += p.TotalVolume()
	}
	return used
}

// RemainingVolume is the pallet volume minus the used volume. It can be negative
// for pallets that were overfilled before a dimension change.
func (f FitChecker) RemainingVolume(pallet model.Pallet, existing []model.Product) float64 {
	return pallet.Volume() - f.UsedVolume(existing)
}

// FillPercentage is the used volume over pallet volume, rounded to an integer.
func (f FitChecker) FillPercentage(pallet model.Pallet, existing []model.Product) int {
	return model.Percentage(f.UsedVolume(existing), pallet.Volume())
}

// MaxAdditionalCount is how many more single items of product fit by volume.
// It is 0 whenever the product fails the height or footprint check.
func (f FitChecker) MaxAdditionalCount(product model.Product, pallet model.Pallet, existing []model.Product) int {
	if ok, _, _ := footprintFits(product.Dimension, pallet.Dimension); !ok {
		return 0
	}
	unit := product.UnitVolume()
	if unit <= 0 {
		return 0
	}
	remaining := f.RemainingVolume(pallet, existing)
	if remaining <= 0 {
		return 0
	}
	q := math.Floor(remaining / unit)
	if q >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(q)
}

// footprintFits checks height first, then width/depth in normal or 90 degree rotated orientation.
func footprintFits(product, pallet model.Dimension) (ok, rotated bool, reason FitReason) {
	p, c := product.Safe(), pallet.Safe()
	if p.Height > c.Height {
		return false, false, FitHeight
	}
	if p.Width <= c.Width && p.Depth <= c.Depth {
		return true, false, FitOK
	}
	if p.Width <= c.Depth && p.Depth <= c.Width {
		return true, true, FitOK
	}
	return false, false, FitFootprint
}
