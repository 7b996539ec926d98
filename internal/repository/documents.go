package repository

import (
	"time"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

// idSeparator joins an order id and an entity id into a document _id.
const idSeparator = "|"

func documentID(orderID, entityID string) string {
	return orderID + idSeparator + entityID
}

type dimensionDocument struct {
	Width  float64 `bson:"width"`
	Height float64 `bson:"height"`
	Depth  float64 `bson:"depth"`
	Unit   string  `bson:"unit,omitempty"`
}

func toDimensionDocument(d model.Dimension) dimensionDocument {
	return dimensionDocument{Width: d.Width, Height: d.Height, Depth: d.Depth, Unit: d.Unit}
}

func (d dimensionDocument) model() model.Dimension {
	return model.Dimension{Width: d.Width, Height: d.Height, Depth: d.Depth, Unit: d.Unit}.Safe()
}

type productDocument struct {
	ProductID string            `bson:"product_id"`
	Name      string            `bson:"name,omitempty"`
	Count     int               `bson:"count"`
	Dimension dimensionDocument `bson:"dimension"`
	Weights   model.Weights     `bson:"weights"`
}

func toProductDocument(p model.Product) productDocument {
	return productDocument{
		ProductID: p.ID,
		Name:      p.Name,
		Count:     p.Count,
		Dimension: toDimensionDocument(p.Dimension),
		Weights:   p.Weights,
	}
}

func (d productDocument) model() model.Product {
	return model.Product{
		ID:        d.ProductID,
		Name:      d.Name,
		Count:     d.Count,
		Dimension: d.Dimension.model(),
		Weights:   d.Weights,
	}
}

// lineItemDocument is one order line in the order_lines collection.
type lineItemDocument struct {
	ID        string            `bson:"_id"`
	OrderID   string            `bson:"order_id"`
	ProductID string            `bson:"product_id"`
	Name      string            `bson:"name,omitempty"`
	Count     int               `bson:"count"`
	Dimension dimensionDocument `bson:"dimension"`
	Weights   model.Weights     `bson:"weights"`
	CreatedAt time.Time         `bson:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

func (d lineItemDocument) model() model.Product {
	return productDocument{
		ProductID: d.ProductID,
		Name:      d.Name,
		Count:     d.Count,
		Dimension: d.Dimension,
		Weights:   d.Weights,
	}.model()
}

type palletDocument struct {
	ID         string            `bson:"id"`
	TemplateID string            `bson:"template_id,omitempty"`
	Name       string            `bson:"name"`
	Dimension  dimensionDocument `bson:"dimension"`
	Weight     float64           `bson:"weight"`
	MaxLoad    float64           `bson:"max_load,omitempty"`
}

func toPalletDocument(p *model.Pallet) *palletDocument {
	if p == nil {
		return nil
	}
	return &palletDocument{
		ID:         p.ID,
		TemplateID: p.TemplateID,
		Name:       p.Name,
		Dimension:  toDimensionDocument(p.Dimension),
		Weight:     p.Weight,
		MaxLoad:    p.MaxLoad,
	}
}

func (d *palletDocument) model() *model.Pallet {
	if d == nil {
		return nil
	}
	return &model.Pallet{
		ID:         d.ID,
		TemplateID: d.TemplateID,
		Name:       d.Name,
		Dimension:  d.Dimension.model(),
		Weight:     d.Weight,
		MaxLoad:    d.MaxLoad,
	}
}

// packageDocument is one package of an order in the packages collection.
type packageDocument struct {
	ID        string            `bson:"_id"`
	PackageID string            `bson:"package_id"`
	OrderID   string            `bson:"order_id"`
	Pallet    *palletDocument   `bson:"pallet,omitempty"`
	Products  []productDocument `bson:"products"`
	CreatedAt time.Time         `bson:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

func toPackageFields(orderID string, p model.Package) packageDocument {
	products := make([]productDocument, 0, len(p.Products))
	for _, product := range p.Products {
		products = append(products, toProductDocument(product))
	}
	return packageDocument{
		ID:        documentID(orderID, p.ID),
		PackageID: p.ID,
		OrderID:   orderID,
		Pallet:    toPalletDocument(p.Pallet),
		Products:  products,
	}
}

func (d packageDocument) model() model.Package {
	products := make([]model.Product, 0, len(d.Products))
	for _, p := range d.Products {
		products = append(products, p.model())
	}
	return model.Package{
		ID:       d.PackageID,
		OrderID:  d.OrderID,
		Pallet:   d.Pallet.model(),
		Products: products,
	}
}

type truckDocument struct {
	ID        string            `bson:"id,omitempty"`
	Name      string            `bson:"name,omitempty"`
	Dimension dimensionDocument `bson:"dimension"`
	MaxWeight float64           `bson:"max_weight"`
}

// orderDocument is the order header in the orders collection.
type orderDocument struct {
	ID         string        `bson:"_id"`
	Reference  string        `bson:"reference,omitempty"`
	WeightTier string        `bson:"weight_tier"`
	Truck      truckDocument `bson:"truck"`
	CreatedAt  time.Time     `bson:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at"`
}

func (d orderDocument) model() model.Order {
	return model.Order{
		ID:         d.ID,
		Reference:  d.Reference,
		WeightTier: model.ParseWeightTier(d.WeightTier),
		Truck: model.Truck{
			ID:        d.Truck.ID,
			Name:      d.Truck.Name,
			Dimension: d.Truck.Dimension.model(),
			MaxWeight: d.Truck.MaxWeight,
		},
		CreatedAt: d.CreatedAt,
	}
}

// palletTemplateDocument is a pallet type in the pallet_templates collection.
type palletTemplateDocument struct {
	ID        string            `bson:"_id"`
	Name      string            `bson:"name"`
	Dimension dimensionDocument `bson:"dimension"`
	Weight    float64           `bson:"weight"`
	MaxLoad   float64           `bson:"max_load,omitempty"`
	CreatedAt time.Time         `bson:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

func (d palletTemplateDocument) model() model.Pallet {
	return model.Pallet{
		ID:        d.ID,
		Name:      d.Name,
		Dimension: d.Dimension.model(),
		Weight:    d.Weight,
		MaxLoad:   d.MaxLoad,
	}
}

// snapshotDocument stores the JSON encoding of a snapshot, so restore goes
// through the same permissive decoding as any other client payload.
type snapshotDocument struct {
	OrderID string    `bson:"_id"`
	Data    []byte    `bson:"data"`
	IsDirty bool      `bson:"is_dirty"`
	SavedAt time.Time `bson:"saved_at"`
}
