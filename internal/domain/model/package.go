package model

// Package is a pallet in progress, or an empty drop target when it has neither pallet nor products.
//
// @Description Container that optionally holds a pallet and the products placed on it
type Package struct {
	ID       string    `json:"id" example:"3f1c2a9e-5d2b-4a57-9a53-0b6a2a1e7c11"`
	OrderID  string    `json:"order_id" example:"ORD-2024-0042"`
	Pallet   *Pallet   `json:"pallet"`
	Products []Product `json:"products"`
}

// HasPallet reports whether a pallet is attached.
func (p Package) HasPallet() bool {
	return p.Pallet != nil
}

// IsEmpty reports whether the package has neither pallet nor products.
func (p Package) IsEmpty() bool {
	return p.Pallet == nil && len(p.Products) == 0
}

// Clone returns a deep copy of the package.
func (p Package) Clone() Package {
	out := Package{ID: p.ID, OrderID: p.OrderID, Products: CloneProducts(p.Products)}
	if p.Pallet != nil {
		pallet := *p.Pallet
		out.Pallet = &pallet
	}
	return out
}

// UsedVolume sums the total volume of the products on the package.
func (p Package) UsedVolume() float64 {
	var used float64
	for _, product := range p.Products {
		used += product.TotalVolume()
	}
	return used
}

// PackageID extracts the id of a package.
func PackageID(p Package) string {
	return p.ID
}

// PackagesEqual compares two packages, including pallet and product contents.
func PackagesEqual(a, b Package) bool {
	if a.ID != b.ID || a.OrderID != b.OrderID {
		return false
	}
	if (a.Pallet == nil) != (b.Pallet == nil) {
		return false
	}
	if a.Pallet != nil && *a.Pallet != *b.Pallet {
		return false
	}
	if len(a.Products) != len(b.Products) {
		return false
	}
	for i := range a.Products {
		if !ProductsEqual(a.Products[i], b.Products[i]) {
			return false
		}
	}
	return true
}

// ClonePackages deep-copies a package list.
func ClonePackages(packages []Package) []Package {
	out := make([]Package, len(packages))
	for i, p := range packages {
		out[i] = p.Clone()
	}
	return out
}
