// Package repository provides interfaces for repository operations.
package repository

import (
	"context"
	"errors"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// OrderState is the persisted backend state of an order.
type OrderState struct {
	Order     model.Order
	LineItems []model.Product
	Packages  []model.Package
}

// Pool returns the line items that are not placed on any package.
func (s OrderState) Pool() []model.Product {
	placed := make(map[string]struct{})
	for _, pkg := range s.Packages {
		for _, p := range pkg.Products {
			placed[p.ID] = struct{}{}
		}
	}
	pool := make([]model.Product, 0, len(s.LineItems))
	for _, p := range s.LineItems {
		if _, ok := placed[p.ID]; !ok {
			pool = append(pool, p)
		}
	}
	return pool
}

// ChangeSetSubmitter synchronizes change sets of an order with the backend.
type ChangeSetSubmitter interface {
	SubmitLineItems(ctx context.Context, orderID string, changes model.ChangeSet[model.Product]) (model.SyncResult, error)
	SubmitPackages(ctx context.Context, orderID string, changes model.ChangeSet[model.Package]) (model.SyncResult, error)
}

// OrderRepositoryInterface defines the interface for order repository operations.
type OrderRepositoryInterface interface {
	ChangeSetSubmitter
	SaveOrder(ctx context.Context, order model.Order) error
	LoadOrder(ctx context.Context, orderID string) (*OrderState, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

// SnapshotRepositoryInterface saves and restores the local working state of a plan.
// Restore returns nil without error when no snapshot exists.
type SnapshotRepositoryInterface interface {
	Save(ctx context.Context, snapshot model.Snapshot) error
	Restore(ctx context.Context, orderID string) (*model.Snapshot, error)
	Delete(ctx context.Context, orderID string) error
}

// PalletTemplateRepositoryInterface defines the interface for pallet template operations.
type PalletTemplateRepositoryInterface interface {
	List(ctx context.Context) ([]model.Pallet, error)
	Upsert(ctx context.Context, template model.Pallet) (model.Pallet, error)
	Delete(ctx context.Context, templateID string) error
	SeedDefaults(ctx context.Context, templates []model.Pallet) error
}
