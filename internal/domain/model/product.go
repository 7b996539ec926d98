package model

import (
	"strconv"
	"strings"
)

// PartSeparator splits a composite product id into base id and part index.
const PartSeparator = "/"

// WeightTier selects which per-product weight is used for totals.
type WeightTier string

const (
	WeightTierStd WeightTier = "std"
	WeightTierEco WeightTier = "eco"
	WeightTierPre WeightTier = "pre"
)

// ParseWeightTier normalizes s, falling back to the standard tier.
func ParseWeightTier(s string) WeightTier {
	switch WeightTier(strings.ToLower(strings.TrimSpace(s))) {
	case WeightTierEco:
		return WeightTierEco
	case WeightTierPre:
		return WeightTierPre
	default:
		return WeightTierStd
	}
}

// Weights holds the unit weight of a product in kilograms for each tier.
type Weights struct {
	Std float64 `json:"std" example:"12.5"`
	Eco float64 `json:"eco" example:"11"`
	Pre float64 `json:"pre" example:"14"`
}

// For returns the weight for tier.
func (w Weights) For(tier WeightTier) float64 {
	switch tier {
	case WeightTierEco:
		return SafeNumber(w.Eco)
	case WeightTierPre:
		return SafeNumber(w.Pre)
	default:
		return SafeNumber(w.Std)
	}
}

// Product is an invoice line item, or a fragment of one after a split.
//
// @Description Line item with count, dimension and per-tier unit weights
type Product struct {
	// ID is either a base id or "base/part" for split fragments
	ID        string    `json:"id" example:"SKU-100/1"`
	Name      string    `json:"name" example:"Shelf board"`
	Count     int       `json:"count" example:"4"`
	Dimension Dimension `json:"dimension"`
	Weights   Weights   `json:"weights"`
}

// BaseID returns the id before any part suffix.
func (p Product) BaseID() string {
	return BaseID(p.ID)
}

// PartIndex returns the numeric part suffix of the id, if any.
func (p Product) PartIndex() (int, bool) {
	_, part, found := strings.Cut(p.ID, PartSeparator)
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(part)
	if err != nil {
		return 0, false
	}
	return n, true
}

// UnitVolume is the volume of a single item.
func (p Product) UnitVolume() float64 {
	return p.Dimension.Volume()
}

// TotalVolume is the unit volume multiplied by count.
func (p Product) TotalVolume() float64 {
	if p.Count <= 0 {
		return 0
	}
	return p.UnitVolume() * float64(p.Count)
}

// Weight returns the total weight of the line for tier.
func (p Product) Weight(tier WeightTier) float64 {
	if p.Count <= 0 {
		return 0
	}
	return p.Weights.For(tier) * float64(p.Count)
}

// BaseID returns the portion of id before the part separator.
func BaseID(id string) string {
	base, _, _ := strings.Cut(id, PartSeparator)
	return base
}

// PartID composes a part id from a base id and index.
func PartID(base string, index int) string {
	return base + PartSeparator + strconv.Itoa(index)
}

// ProductID extracts the id of a product.
func ProductID(p Product) string {
	return p.ID
}

// ProductsEqual compares two products field by field.
func ProductsEqual(a, b Product) bool {
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.Count == b.Count &&
		a.Dimension == b.Dimension &&
		a.Weights == b.Weights
}

// CloneProducts returns a copy of products that never shares its backing array.
func CloneProducts(products []Product) []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}
