//go:build !integration

package service

import (
	"testing"

	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weighted(id string, count int, std, eco, pre float64) model.Product {
	p := product(id, count, 10, 10, 10)
	p.Weights = model.Weights{Std: std, Eco: eco, Pre: pre}
	return p
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func TestAggregator_Totals(t *testing.T) {
	eur := model.DefaultPalletTemplates()[0].Place("pal-1")
	order := model.Order{
		ID:    "ORD-1",
		Truck: model.Truck{Dimension: model.NewDimension(240, 270, 1360), MaxWeight: 100},
	}
	packages := []model.Package{
		{ID: "pkg-1", Pallet: &eur, Products: []model.Product{weighted("A", 2, 10, 8, 12.5)}},
		{ID: "pkg-2"},
	}
	pool := []model.Product{weighted("B", 3, 1.5, 1, 2)}

	tests := []struct {
		tier            model.WeightTier
		totalWeight     string
		poolWeight      string
		remainingWeight string
		overweight      bool
	}{
		{tier: model.WeightTierStd, totalWeight: "45", poolWeight: "4.5", remainingWeight: "55"},
		{tier: model.WeightTierEco, totalWeight: "41", poolWeight: "3", remainingWeight: "59"},
		{tier: model.WeightTierPre, totalWeight: "50", poolWeight: "6", remainingWeight: "50"},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			order.WeightTier = tt.tier
			totals := NewAggregator().Totals(order, packages, pool)

			assert.Equal(t, tt.tier, totals.WeightTier)
			assertDecimal(t, tt.totalWeight, totals.TotalWeight)
			assertDecimal(t, tt.poolWeight, totals.PoolWeight)
			assertDecimal(t, tt.remainingWeight, totals.RemainingWeight)
			assert.Equal(t, tt.overweight, totals.Overweight)

			assertDecimal(t, "0.96", totals.UsedArea)
			assertDecimal(t, "31.68", totals.RemainingArea)
			assertDecimal(t, "0.4", totals.LinearMeters)
			assert.Equal(t, 1, totals.Pallets)

			require.Len(t, totals.Packages, 2)
			assert.Equal(t, "pkg-1", totals.Packages[0].PackageID)
			assertDecimal(t, "2000", totals.Packages[0].UsedVolume)
			assert.Equal(t, 1, totals.Packages[0].FillPercentage)
			assertDecimal(t, "0", totals.Packages[1].Weight)
		})
	}
}

func TestAggregator_Overweight(t *testing.T) {
	order := model.Order{Truck: model.Truck{MaxWeight: 10}}
	eur := model.DefaultPalletTemplates()[0].Place("pal-1")
	packages := []model.Package{{ID: "pkg-1", Pallet: &eur}}

	totals := NewAggregator().Totals(order, packages, nil)

	assert.True(t, totals.Overweight)
	assertDecimal(t, "-15", totals.RemainingWeight)
	assertDecimal(t, "0", totals.LinearMeters)
	assert.Equal(t, model.WeightTierStd, totals.WeightTier)
}

func TestAggregator_PalletMaxLoad(t *testing.T) {
	order := model.Order{WeightTier: model.WeightTierStd, Truck: model.Truck{MaxWeight: 24000}}
	half := model.DefaultPalletTemplates()[2].Place("pal-1")
	unrated := model.Pallet{ID: "pal-2", Dimension: model.NewDimension(120, 40, 80), Weight: 20}

	tests := []struct {
		name       string
		pallet     *model.Pallet
		products   []model.Product
		overweight bool
	}{
		{name: "at the limit", pallet: &half, products: []model.Product{weighted("A", 10, 50, 0, 0)}},
		{name: "tare does not count against the load", pallet: &half, products: []model.Product{weighted("A", 1, 495, 0, 0)}},
		{name: "over the limit", pallet: &half, products: []model.Product{weighted("A", 11, 50, 0, 0)}, overweight: true},
		{name: "unrated pallet", pallet: &unrated, products: []model.Product{weighted("A", 100, 50, 0, 0)}},
		{name: "no pallet", products: []model.Product{weighted("A", 100, 50, 0, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packages := []model.Package{{ID: "pkg-1", Pallet: tt.pallet, Products: tt.products}}
			totals := NewAggregator().Totals(order, packages, nil)

			require.Len(t, totals.Packages, 1)
			assert.Equal(t, tt.overweight, totals.Packages[0].Overweight)
			assert.False(t, totals.Overweight)
		})
	}
}

func TestAggregator_EmptyPlan(t *testing.T) {
	totals := NewAggregator().Totals(model.Order{}, nil, nil)

	assertDecimal(t, "0", totals.TotalWeight)
	assertDecimal(t, "0", totals.RemainingArea)
	assert.False(t, totals.Overweight)
	assert.Empty(t, totals.Packages)
}
