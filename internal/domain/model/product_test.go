package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProduct_BaseIDAndPart(t *testing.T) {
	tests := []struct {
		id      string
		base    string
		part    int
		hasPart bool
	}{
		{id: "SKU-1", base: "SKU-1"},
		{id: "SKU-1/2", base: "SKU-1", part: 2, hasPart: true},
		{id: "SKU-1/x", base: "SKU-1"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p := Product{ID: tt.id}
			assert.Equal(t, tt.base, p.BaseID())
			part, ok := p.PartIndex()
			assert.Equal(t, tt.hasPart, ok)
			assert.Equal(t, tt.part, part)
		})
	}
}

func TestProduct_VolumeAndWeight(t *testing.T) {
	p := Product{
		ID:        "A",
		Count:     3,
		Dimension: NewDimension(10, 10, 10),
		Weights:   Weights{Std: 2, Eco: 1.5, Pre: 3},
	}

	assert.Equal(t, 1000.0, p.UnitVolume())
	assert.Equal(t, 3000.0, p.TotalVolume())
	assert.Equal(t, 6.0, p.Weight(WeightTierStd))
	assert.Equal(t, 4.5, p.Weight(WeightTierEco))
	assert.Equal(t, 9.0, p.Weight(WeightTierPre))

	p.Count = 0
	assert.Equal(t, 0.0, p.TotalVolume())
}

func TestParseWeightTier(t *testing.T) {
	assert.Equal(t, WeightTierEco, ParseWeightTier("ECO"))
	assert.Equal(t, WeightTierPre, ParseWeightTier(" pre "))
	assert.Equal(t, WeightTierStd, ParseWeightTier("unknown"))
}

func TestProductsEqual(t *testing.T) {
	a := Product{ID: "A", Count: 2, Dimension: NewDimension(1, 2, 3)}
	b := a
	assert.True(t, ProductsEqual(a, b))

	b.Count = 3
	assert.False(t, ProductsEqual(a, b))
}

func TestPalletName(t *testing.T) {
	assert.Equal(t, "120x80x40 cm", PalletName(NewDimension(120, 40, 80)))
	assert.Equal(t, "80x60x14.4 cm", PalletName(Dimension{Width: 80, Height: 14.4, Depth: 60}))
}

func TestPallet_Place(t *testing.T) {
	template := DefaultPalletTemplates()[0]
	placed := template.Place("p-1")

	assert.Equal(t, "p-1", placed.ID)
	assert.Equal(t, template.ID, placed.TemplateID)
	assert.Equal(t, template.Dimension, placed.Dimension)
	assert.Equal(t, "120x80x40 cm", placed.Name)
	assert.Equal(t, template.MaxLoad, placed.MaxLoad)
}

func TestPackagesEqual(t *testing.T) {
	pallet := Pallet{ID: "p", Dimension: NewDimension(1, 1, 1)}
	a := Package{ID: "x", Pallet: &pallet, Products: []Product{{ID: "A", Count: 1}}}
	b := a.Clone()

	assert.True(t, PackagesEqual(a, b))

	b.Products[0].Count = 2
	assert.False(t, PackagesEqual(a, b))
	assert.Equal(t, 1, a.Products[0].Count, "clone must not share products")

	c := a.Clone()
	c.Pallet = nil
	assert.False(t, PackagesEqual(a, c))
}

func TestChangeSet_Apply(t *testing.T) {
	original := []Product{{ID: "A", Count: 1}, {ID: "B", Count: 1}}
	changes := ChangeSet[Product]{
		Added:    []Product{{ID: "C", Count: 1}},
		Modified: []Product{{ID: "A", Count: 5}},
		Deleted:  []string{"B"},
	}

	result := changes.Apply(original, ProductID)

	assert.Equal(t, []Product{{ID: "A", Count: 5}, {ID: "C", Count: 1}}, result)
	assert.Equal(t, 3, changes.Len())
	assert.False(t, changes.IsEmpty())
	assert.True(t, ChangeSet[Product]{}.IsEmpty())
}
