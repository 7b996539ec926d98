package service

import (
	"errors"
	"fmt"
	"slices"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

// ErrInvariantViolation is returned when an operation would publish an inconsistent state.
var ErrInvariantViolation = errors.New("allocation invariant violated")

// poolLocation is the location of products that are not on any package.
const poolLocation = ""

type packageSlot struct {
	id       string
	pallet   *model.Pallet
	products []string
}

func (s *packageSlot) clone() *packageSlot {
	out := &packageSlot{id: s.id, products: slices.Clone(s.products)}
	if s.pallet != nil {
		pallet := *s.pallet
		out.pallet = &pallet
	}
	return out
}

func (s *packageSlot) isEmpty() bool {
	return s.pallet == nil && len(s.products) == 0
}

// WorkingState is an immutable snapshot of a plan. Products and packages live in
// flat maps keyed by id; location maps every product to its package id, or to
// the pool. Engine operations return a new WorkingState and never mutate the input.
type WorkingState struct {
	order        model.Order
	products     map[string]model.Product
	location     map[string]string
	pool         []string
	packages     map[string]*packageSlot
	packageOrder []string
}

func newWorkingState(order model.Order) *WorkingState {
	return &WorkingState{
		order:    order,
		products: make(map[string]model.Product),
		location: make(map[string]string),
		packages: make(map[string]*packageSlot),
	}
}

func (s *WorkingState) clone() *WorkingState {
	out := &WorkingState{
		order:        s.order,
		products:     make(map[string]model.Product, len(s.products)),
		location:     make(map[string]string, len(s.location)),
		pool:         slices.Clone(s.pool),
		packages:     make(map[string]*packageSlot, len(s.packages)),
		packageOrder: slices.Clone(s.packageOrder),
	}
	for id, p := range s.products {
		out.products[id] = p
	}
	for id, loc := range s.location {
		out.location[id] = loc
	}
	for id, slot := range s.packages {
		out.packages[id] = slot.clone()
	}
	return out
}

// Order returns the order the plan belongs to.
func (s *WorkingState) Order() model.Order {
	return s.order
}

// Pool returns the unassigned products in pool order.
func (s *WorkingState) Pool() []model.Product {
	return s.materialize(s.pool)
}

// Packages returns every package in display order.
func (s *WorkingState) Packages() []model.Package {
	out := make([]model.Package, 0, len(s.packageOrder))
	for _, id := range s.packageOrder {
		out = append(out, s.pkg(s.packages[id]))
	}
	return out
}

// Package returns a single package by id.
func (s *WorkingState) Package(id string) (model.Package, bool) {
	slot, ok := s.packages[id]
	if !ok {
		return model.Package{}, false
	}
	return s.pkg(slot), true
}

// Product returns a product by id wherever it is located.
func (s *WorkingState) Product(id string) (model.Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

// LocationOf returns the package id holding product id, or "" with true for the pool.
func (s *WorkingState) LocationOf(id string) (string, bool) {
	loc, ok := s.location[id]
	return loc, ok
}

// LineItems returns all products: pool first, then packages in order.
func (s *WorkingState) LineItems() []model.Product {
	out := s.materialize(s.pool)
	for _, id := range s.packageOrder {
		out = append(out, s.materialize(s.packages[id].products)...)
	}
	return out
}

// TotalCount is the sum of counts over all products.
func (s *WorkingState) TotalCount() int {
	total := 0
	for _, p := range s.products {
		total += p.Count
	}
	return total
}

// Snapshot projects the state into a persistable snapshot.
func (s *WorkingState) Snapshot(dirty bool) model.Snapshot {
	return model.Snapshot{
		OrderID:  s.order.ID,
		Order:    s.order,
		Pool:     s.Pool(),
		Packages: s.Packages(),
		IsDirty:  dirty,
	}
}

func (s *WorkingState) pkg(slot *packageSlot) model.Package {
	p := model.Package{
		ID:       slot.id,
		OrderID:  s.order.ID,
		Products: s.materialize(slot.products),
	}
	if slot.pallet != nil {
		pallet := *slot.pallet
		p.Pallet = &pallet
	}
	return p
}

func (s *WorkingState) materialize(ids []string) []model.Product {
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.products[id])
	}
	return out
}

// idInUse reports whether any product or package already carries id.
func (s *WorkingState) idInUse(id string) bool {
	if _, ok := s.products[id]; ok {
		return true
	}
	_, ok := s.packages[id]
	return ok
}

func (s *WorkingState) listFor(loc string) []string {
	if loc == poolLocation {
		return s.pool
	}
	return s.packages[loc].products
}

func (s *WorkingState) setList(loc string, ids []string) {
	if loc == poolLocation {
		s.pool = ids
		return
	}
	s.packages[loc].products = ids
}

func (s *WorkingState) putProduct(p model.Product, loc string) {
	s.products[p.ID] = p
	s.location[p.ID] = loc
	s.setList(loc, append(s.listFor(loc), p.ID))
}

func (s *WorkingState) dropProduct(id string) {
	loc, ok := s.location[id]
	if !ok {
		return
	}
	s.setList(loc, slices.DeleteFunc(slices.Clone(s.listFor(loc)), func(v string) bool { return v == id }))
	delete(s.products, id)
	delete(s.location, id)
}

// Validate checks exclusive location, capacity and the trailing empty package.
func (s *WorkingState) Validate(checker FitChecker) error {
	seen := make(map[string]string, len(s.products))
	record := func(loc string, ids []string) error {
		for _, id := range ids {
			if prev, dup := seen[id]; dup {
				return fmt.Errorf("%w: product %q listed in %q and %q", ErrInvariantViolation, id, prev, loc)
			}
			if _, ok := s.products[id]; !ok {
				return fmt.Errorf("%w: unknown product %q in %q", ErrInvariantViolation, id, loc)
			}
			if s.location[id] != loc {
				return fmt.Errorf("%w: product %q location mismatch", ErrInvariantViolation, id)
			}
			seen[id] = loc
		}
		return nil
	}

	if err := record(poolLocation, s.pool); err != nil {
		return err
	}
	if len(s.packageOrder) != len(s.packages) {
		return fmt.Errorf("%w: package order out of sync", ErrInvariantViolation)
	}

	empty := 0
	for i, id := range s.packageOrder {
		slot, ok := s.packages[id]
		if !ok {
			return fmt.Errorf("%w: unknown package %q", ErrInvariantViolation, id)
		}
		if err := record(id, slot.products); err != nil {
			return err
		}
		if slot.isEmpty() {
			empty++
			if i != len(s.packageOrder)-1 {
				return fmt.Errorf("%w: empty package %q is not last", ErrInvariantViolation, id)
			}
		}
		if slot.pallet == nil {
			if len(slot.products) > 0 {
				return fmt.Errorf("%w: package %q holds products without a pallet", ErrInvariantViolation, id)
			}
			continue
		}
		contents := s.materialize(slot.products)
		if checker.UsedVolume(contents) > slot.pallet.Volume() {
			return fmt.Errorf("%w: package %q exceeds pallet volume", ErrInvariantViolation, id)
		}
		for _, p := range contents {
			if ok, _, _ := footprintFits(p.Dimension, slot.pallet.Dimension); !ok {
				return fmt.Errorf("%w: product %q does not fit pallet of package %q", ErrInvariantViolation, p.ID, id)
			}
		}
	}
	if empty != 1 {
		return fmt.Errorf("%w: %d empty packages", ErrInvariantViolation, empty)
	}
	if len(seen) != len(s.products) {
		return fmt.Errorf("%w: %d products without location", ErrInvariantViolation, len(s.products)-len(seen))
	}
	return nil
}
