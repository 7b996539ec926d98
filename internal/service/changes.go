package service

import (
	"errors"
	"sync"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

// ErrBaselineNotInitialized is returned when a diff is requested before any baseline was set.
var ErrBaselineNotInitialized = errors.New("change tracker baseline not initialized")

// ChangeTracker keeps the last persisted collection next to the working one and
// classifies the working items as added, modified or deleted by id.
type ChangeTracker[T any] struct {
	mu       sync.RWMutex
	idOf     func(T) string
	equal    func(a, b T) bool
	original []T
	current  []T
	ready    bool
}

// NewChangeTracker creates a tracker using idOf for presence and equal for content.
func NewChangeTracker[T any](idOf func(T) string, equal func(a, b T) bool) *ChangeTracker[T] {
	return &ChangeTracker[T]{idOf: idOf, equal: equal}
}

// NewProductTracker tracks order line items.
func NewProductTracker() *ChangeTracker[model.Product] {
	return NewChangeTracker(model.ProductID, model.ProductsEqual)
}

// NewPackageTracker tracks packages.
func NewPackageTracker() *ChangeTracker[model.Package] {
	return NewChangeTracker(model.PackageID, model.PackagesEqual)
}

// SetBaseline sets both the persisted and the working collection.
func (t *ChangeTracker[T]) SetBaseline(items []T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.original = clone(items)
	t.current = clone(items)
	t.ready = true
}

// Update replaces the working collection.
func (t *ChangeTracker[T]) Update(items []T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = clone(items)
}

// Initialized reports whether a baseline has been set.
func (t *ChangeTracker[T]) Initialized() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ready
}

// Original returns a copy of the persisted baseline.
func (t *ChangeTracker[T]) Original() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return clone(t.original)
}

// Current returns a copy of the working collection.
func (t *ChangeTracker[T]) Current() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return clone(t.current)
}

// Diff computes the change set from baseline to working collection. Added and
// modified follow working order, deleted follows baseline order.
func (t *ChangeTracker[T]) Diff() (model.ChangeSet[T], error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.ready {
		return model.ChangeSet[T]{}, ErrBaselineNotInitialized
	}
	return diff(t.original, t.current, t.idOf, t.equal), nil
}

// DiffAgainst computes the change set from the baseline to items, which are
// typically a checkpoint taken earlier.
func (t *ChangeTracker[T]) DiffAgainst(items []T) (model.ChangeSet[T], error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.ready {
		return model.ChangeSet[T]{}, ErrBaselineNotInitialized
	}
	return diff(t.original, items, t.idOf, t.equal), nil
}

// HasChanges reports whether the working collection differs from the baseline.
func (t *ChangeTracker[T]) HasChanges() bool {
	changes, err := t.Diff()
	return err == nil && !changes.IsEmpty()
}

// Checkpoint returns the working collection to submit together with its diff.
func (t *ChangeTracker[T]) Checkpoint() ([]T, model.ChangeSet[T], error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.ready {
		return nil, model.ChangeSet[T]{}, ErrBaselineNotInitialized
	}
	return clone(t.current), diff(t.original, t.current, t.idOf, t.equal), nil
}

// MarkAsSaved advances the baseline to the collection that was persisted.
// Changes made after the checkpoint stay pending.
func (t *ChangeTracker[T]) MarkAsSaved(saved []T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.original = clone(saved)
	t.ready = true
}

func diff[T any](original, current []T, idOf func(T) string, equal func(a, b T) bool) model.ChangeSet[T] {
	changes := model.ChangeSet[T]{Added: []T{}, Modified: []T{}, Deleted: []string{}}

	before := make(map[string]T, len(original))
	for _, item := range original {
		before[idOf(item)] = item
	}
	present := make(map[string]struct{}, len(current))
	for _, item := range current {
		id := idOf(item)
		present[id] = struct{}{}
		prev, ok := before[id]
		switch {
		case !ok:
			changes.Added = append(changes.Added, item)
		case !equal(prev, item):
			changes.Modified = append(changes.Modified, item)
		}
	}
	for _, item := range original {
		id := idOf(item)
		if _, ok := present[id]; !ok {
			changes.Deleted = append(changes.Deleted, id)
		}
	}
	return changes
}

func clone[T any](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
