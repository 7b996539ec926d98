// Package repository provides circuit breaker wrappers for MongoDB operations.
package repository

import (
	"context"
	"errors"

	"github.com/guttosm/pallet-service/internal/circuitbreaker"
	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/snapshot"
)

// IsBenign reports errors that describe the data rather than the health of the
// backend. Circuit breakers around repositories must not count them as failures.
func IsBenign(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, snapshot.ErrCorruptSnapshot) ||
		errors.Is(err, context.Canceled)
}

// OrderRepositoryWithCircuitBreaker wraps OrderRepository with circuit breaker protection.
type OrderRepositoryWithCircuitBreaker struct {
	repo           OrderRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewOrderRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewOrderRepositoryWithCircuitBreaker(repo OrderRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *OrderRepositoryWithCircuitBreaker {
	return &OrderRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// SaveOrder saves the order header with circuit breaker protection.
func (r *OrderRepositoryWithCircuitBreaker) SaveOrder(ctx context.Context, order model.Order) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.SaveOrder(ctx, order)
	})
}

// LoadOrder loads the order state with circuit breaker protection.
func (r *OrderRepositoryWithCircuitBreaker) LoadOrder(ctx context.Context, orderID string) (*OrderState, error) {
	var result *OrderState
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.LoadOrder(ctx, orderID)
		return cbErr
	})
	return result, err
}

// DeleteOrder removes the order with circuit breaker protection.
func (r *OrderRepositoryWithCircuitBreaker) DeleteOrder(ctx context.Context, orderID string) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.DeleteOrder(ctx, orderID)
	})
}

// SubmitLineItems submits a line item change set with circuit breaker protection.
// An open circuit fails the submission so the tracker baseline stays put.
func (r *OrderRepositoryWithCircuitBreaker) SubmitLineItems(ctx context.Context, orderID string, changes model.ChangeSet[model.Product]) (model.SyncResult, error) {
	var result model.SyncResult
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.SubmitLineItems(ctx, orderID, changes)
		return cbErr
	})
	return result, err
}

// SubmitPackages submits a package change set with circuit breaker protection.
func (r *OrderRepositoryWithCircuitBreaker) SubmitPackages(ctx context.Context, orderID string, changes model.ChangeSet[model.Package]) (model.SyncResult, error) {
	var result model.SyncResult
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.SubmitPackages(ctx, orderID, changes)
		return cbErr
	})
	return result, err
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *OrderRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}

// SnapshotRepositoryWithCircuitBreaker wraps a snapshot store with circuit breaker protection.
type SnapshotRepositoryWithCircuitBreaker struct {
	repo           SnapshotRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewSnapshotRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewSnapshotRepositoryWithCircuitBreaker(repo SnapshotRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *SnapshotRepositoryWithCircuitBreaker {
	return &SnapshotRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// Save stores the snapshot with circuit breaker protection.
func (r *SnapshotRepositoryWithCircuitBreaker) Save(ctx context.Context, s model.Snapshot) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Save(ctx, s)
	})
}

// Restore reads the snapshot with circuit breaker protection.
// If circuit is open, reports no snapshot so the caller starts from backend state.
func (r *SnapshotRepositoryWithCircuitBreaker) Restore(ctx context.Context, orderID string) (*model.Snapshot, error) {
	var result *model.Snapshot
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.Restore(ctx, orderID)
		return cbErr
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil, nil
	}
	return result, err
}

// Delete removes the snapshot with circuit breaker protection.
func (r *SnapshotRepositoryWithCircuitBreaker) Delete(ctx context.Context, orderID string) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Delete(ctx, orderID)
	})
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *SnapshotRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}

// PalletTemplateRepositoryWithCircuitBreaker wraps PalletTemplateRepository with circuit breaker protection.
type PalletTemplateRepositoryWithCircuitBreaker struct {
	repo           PalletTemplateRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewPalletTemplateRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewPalletTemplateRepositoryWithCircuitBreaker(repo PalletTemplateRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *PalletTemplateRepositoryWithCircuitBreaker {
	return &PalletTemplateRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// List returns the templates with circuit breaker protection.
// If circuit is open, returns nil so the default templates are used.
func (r *PalletTemplateRepositoryWithCircuitBreaker) List(ctx context.Context) ([]model.Pallet, error) {
	var result []model.Pallet
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.List(ctx)
		return cbErr
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil, nil
	}
	return result, err
}

// Upsert stores a template with circuit breaker protection.
func (r *PalletTemplateRepositoryWithCircuitBreaker) Upsert(ctx context.Context, template model.Pallet) (model.Pallet, error) {
	var result model.Pallet
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.Upsert(ctx, template)
		return cbErr
	})
	return result, err
}

// Delete removes a template with circuit breaker protection.
func (r *PalletTemplateRepositoryWithCircuitBreaker) Delete(ctx context.Context, templateID string) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Delete(ctx, templateID)
	})
}

// SeedDefaults seeds templates with circuit breaker protection.
func (r *PalletTemplateRepositoryWithCircuitBreaker) SeedDefaults(ctx context.Context, templates []model.Pallet) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.SeedDefaults(ctx, templates)
	})
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *PalletTemplateRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}
