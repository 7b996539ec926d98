package model

import "time"

// Snapshot is the locally saved working state of a plan.
type Snapshot struct {
	OrderID  string    `json:"order_id"`
	Order    Order     `json:"order"`
	Pool     []Product `json:"pool"`
	Packages []Package `json:"packages"`
	IsDirty  bool      `json:"is_dirty"`
	SavedAt  time.Time `json:"saved_at"`
}

// EmptySnapshot is the initial snapshot used when nothing can be restored.
func EmptySnapshot(orderID string) Snapshot {
	return Snapshot{
		OrderID:  orderID,
		Order:    Order{ID: orderID, WeightTier: WeightTierStd},
		Pool:     []Product{},
		Packages: []Package{},
	}
}

// IsZero reports whether the snapshot holds no products or packages.
func (s Snapshot) IsZero() bool {
	return len(s.Pool) == 0 && len(s.Packages) == 0
}
