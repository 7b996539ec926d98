//go:build !integration

package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

func TestOpenPlanRequest_Validate(t *testing.T) {
	tests := []struct {
		name          string
		request       OpenPlanRequest
		expectedError bool
	}{
		{
			name:    "valid request",
			request: OpenPlanRequest{Products: []model.Product{{ID: "A", Count: 1}}},
		},
		{
			name:          "blank product id",
			request:       OpenPlanRequest{Products: []model.Product{{ID: "A", Count: 1}, {ID: "  ", Count: 1}}},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.expectedError {
				assert.Error(t, err)
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "products.id", validationErr.Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestImportPlanForm_Order(t *testing.T) {
	form := ImportPlanForm{
		OrderID:     " ORD-1 ",
		Reference:   "INV-7",
		WeightTier:  "eco",
		TruckID:     "mega",
		TruckWidth:  1360,
		TruckHeight: 270,
		TruckDepth:  -1,
		MaxWeight:   24000,
	}

	order := form.Order()

	assert.Equal(t, "ORD-1", order.ID)
	assert.Equal(t, "INV-7", order.Reference)
	assert.Equal(t, model.WeightTier("eco"), order.WeightTier)
	assert.Equal(t, "mega", order.Truck.ID)
	assert.Equal(t, 1360.0, order.Truck.Dimension.Width)
	assert.Zero(t, order.Truck.Dimension.Depth)
	assert.Equal(t, 24000.0, order.Truck.MaxWeight)
}

func TestPalletTemplateRequest_Template(t *testing.T) {
	req := PalletTemplateRequest{
		ID:        " eur ",
		Name:      "EUR",
		Dimension: model.NewDimension(120, 40, 80),
		Weight:    25,
	}

	template := req.Template()

	assert.Equal(t, "eur", template.ID)
	assert.Equal(t, "EUR", template.Name)
	assert.Equal(t, 120.0, template.Dimension.Width)
	assert.Equal(t, 25.0, template.Weight)
}
