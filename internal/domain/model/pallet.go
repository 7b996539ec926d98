package model

import "fmt"

// Pallet is a loadable platform. Templates describe pallet types; placed
// pallets are clones of a template carrying their own id.
//
// @Description Pallet type or placed pallet
type Pallet struct {
	ID         string    `json:"id" example:"eur"`
	TemplateID string    `json:"template_id,omitempty" example:"eur"`
	Name       string    `json:"name" example:"120x80x40 cm"`
	Dimension  Dimension `json:"dimension"`
	// Weight is the tare weight of the pallet in kilograms
	Weight float64 `json:"weight" example:"25"`
	// MaxLoad is the load the pallet carries in kilograms; 0 means unrated
	MaxLoad float64 `json:"max_load,omitempty" example:"1500"`
}

// PalletName derives the display name of a pallet from its dimension.
func PalletName(d Dimension) string {
	unit := d.Unit
	if unit == "" {
		unit = DefaultUnit
	}
	return fmt.Sprintf("%sx%sx%s %s", formatSize(d.Width), formatSize(d.Depth), formatSize(d.Height), unit)
}

// Volume returns the loadable volume of the pallet.
func (p Pallet) Volume() float64 {
	return p.Dimension.Volume()
}

// Place clones the template under a fresh id.
func (p Pallet) Place(id string) Pallet {
	templateID := p.TemplateID
	if templateID == "" {
		templateID = p.ID
	}
	return Pallet{
		ID:         id,
		TemplateID: templateID,
		Name:       PalletName(p.Dimension),
		Dimension:  p.Dimension,
		Weight:     p.Weight,
		MaxLoad:    p.MaxLoad,
	}
}

// DefaultPalletTemplates returns the pallet types available when none are configured.
func DefaultPalletTemplates() []Pallet {
	templates := []Pallet{
		{ID: "eur", Dimension: NewDimension(120, 40, 80), Weight: 25, MaxLoad: 1500},
		{ID: "industrial", Dimension: NewDimension(120, 40, 100), Weight: 30, MaxLoad: 1500},
		{ID: "half", Dimension: NewDimension(80, 40, 60), Weight: 10, MaxLoad: 500},
	}
	for i := range templates {
		templates[i].Name = PalletName(templates[i].Dimension)
	}
	return templates
}
