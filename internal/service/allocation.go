package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/metrics"
)

// Halver splits a product in two when no explicit split count is given.
// Returned parts must keep the original count in total and use unused ids.
type Halver func(p model.Product, newID func() string) (model.Product, model.Product)

// HalveProduct is the default Halver: the first half keeps the original id and
// floor(count/2) items, the second half gets a fresh id and the remainder.
func HalveProduct(p model.Product, newID func() string) (model.Product, model.Product) {
	first, second := p, p
	first.Count = p.Count / 2
	second.Count = p.Count - first.Count
	second.ID = newID()
	return first, second
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// Engine applies allocation operations to a WorkingState. It holds no plan
// state of its own, only the pallet catalogue and the id source.
type Engine struct {
	checker       FitChecker
	newID         func() string
	halver        Halver
	templates     map[string]model.Pallet
	templateOrder []string
}

// NewEngine creates an Engine with the default pallet templates and UUID ids.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		checker: NewFitChecker(),
		newID:   uuid.NewString,
		halver:  HalveProduct,
	}
	e.setTemplates(model.DefaultPalletTemplates())

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithIDGenerator sets the id source used for packages, placed pallets and halved products.
func WithIDGenerator(gen func() string) EngineOption {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithPalletTemplates replaces the pallet catalogue.
func WithPalletTemplates(templates []model.Pallet) EngineOption {
	return func(e *Engine) {
		if len(templates) > 0 {
			e.setTemplates(templates)
		}
	}
}

// WithHalver sets the routine used for splits without an explicit count.
func WithHalver(h Halver) EngineOption {
	return func(e *Engine) {
		if h != nil {
			e.halver = h
		}
	}
}

func (e *Engine) setTemplates(templates []model.Pallet) {
	e.templates = make(map[string]model.Pallet, len(templates))
	e.templateOrder = e.templateOrder[:0]
	for _, t := range templates {
		if _, dup := e.templates[t.ID]; dup {
			continue
		}
		e.templates[t.ID] = t
		e.templateOrder = append(e.templateOrder, t.ID)
	}
}

// Templates returns the pallet catalogue in configuration order.
func (e *Engine) Templates() []model.Pallet {
	out := make([]model.Pallet, 0, len(e.templateOrder))
	for _, id := range e.templateOrder {
		out = append(out, e.templates[id])
	}
	return out
}

// FitChecker returns the checker used by the engine.
func (e *Engine) FitChecker() FitChecker {
	return e.checker
}

// InitializeWorkingSet starts a plan with every product in the pool and one empty package.
func (e *Engine) InitializeWorkingSet(order model.Order, products []model.Product) (*WorkingState, error) {
	const op = "initialize_working_set"
	next := newWorkingState(order)
	for _, p := range products {
		if rej := e.validateNewProduct(op, next, p); rej != nil {
			return nil, e.rejected(rej)
		}
		next.putProduct(p, poolLocation)
	}
	e.ensureTrailingEmpty(next)
	return e.commit(op, next)
}

// InitializeContainers rebuilds a plan from previously persisted packages and pool.
func (e *Engine) InitializeContainers(order model.Order, packages []model.Package, pool []model.Product) (*WorkingState, error) {
	const op = "initialize_containers"
	next := newWorkingState(order)
	for _, p := range pool {
		if rej := e.validateNewProduct(op, next, p); rej != nil {
			return nil, e.rejected(rej)
		}
		next.putProduct(p, poolLocation)
	}
	for _, pkg := range packages {
		if pkg.ID == "" || next.idInUse(pkg.ID) {
			return nil, e.rejected(&Rejection{Operation: op, Reason: ReasonInvalidInput, PackageID: pkg.ID, Detail: "duplicate or empty package id"})
		}
		slot := &packageSlot{id: pkg.ID}
		if pkg.Pallet != nil {
			pallet := *pkg.Pallet
			slot.pallet = &pallet
		}
		next.packages[pkg.ID] = slot
		next.packageOrder = append(next.packageOrder, pkg.ID)
		for _, p := range pkg.Products {
			if rej := e.validateNewProduct(op, next, p); rej != nil {
				return nil, e.rejected(rej)
			}
			next.putProduct(p, pkg.ID)
		}
	}
	e.ensureTrailingEmpty(next)
	return e.commit(op, next)
}

// MoveWithinPool reorders the pool.
func (e *Engine) MoveWithinPool(state *WorkingState, from, to int) (*WorkingState, error) {
	const op = "move_within_pool"
	if !validIndex(from, len(state.pool)) || !validIndex(to, len(state.pool)) {
		return state, e.rejected(reject(op, ReasonInvalidRange, fmt.Sprintf("from=%d to=%d size=%d", from, to, len(state.pool))))
	}
	next := state.clone()
	next.pool = moveItem(next.pool, from, to)
	return e.commit(op, next)
}

// MoveWithinPackage reorders the products of one package.
func (e *Engine) MoveWithinPackage(state *WorkingState, packageID string, from, to int) (*WorkingState, error) {
	const op = "move_within_package"
	slot, ok := state.packages[packageID]
	if !ok {
		return state, e.rejected(packageNotFound(op, packageID))
	}
	if !validIndex(from, len(slot.products)) || !validIndex(to, len(slot.products)) {
		return state, e.rejected(&Rejection{Operation: op, Reason: ReasonInvalidRange, PackageID: packageID,
			Detail: fmt.Sprintf("from=%d to=%d size=%d", from, to, len(slot.products))})
	}
	next := state.clone()
	next.packages[packageID].products = moveItem(next.packages[packageID].products, from, to)
	return e.commit(op, next)
}

// MoveFromPackageToPool takes the product at index off a package and appends it to the pool.
// The pool is not consolidated, so splits of other products survive.
func (e *Engine) MoveFromPackageToPool(state *WorkingState, packageID string, index int) (*WorkingState, error) {
	const op = "move_package_to_pool"
	slot, ok := state.packages[packageID]
	if !ok {
		return state, e.rejected(packageNotFound(op, packageID))
	}
	if !validIndex(index, len(slot.products)) {
		return state, e.rejected(indexOutOfRange(op, packageID, index, len(slot.products)))
	}

	next := state.clone()
	id := slot.products[index]
	p := next.products[id]
	next.dropProduct(id)
	next.putProduct(p, poolLocation)
	e.ensureTrailingEmpty(next)
	return e.commit(op, next)
}

// MoveFromPoolToPackage places the pool product at index onto a package's pallet.
func (e *Engine) MoveFromPoolToPackage(state *WorkingState, packageID string, index int) (*WorkingState, error) {
	const op = "move_pool_to_package"
	if _, ok := state.packages[packageID]; !ok {
		return state, e.rejected(packageNotFound(op, packageID))
	}
	if !validIndex(index, len(state.pool)) {
		return state, e.rejected(indexOutOfRange(op, packageID, index, len(state.pool)))
	}
	return e.placeOnPackage(op, state, poolLocation, state.pool[index], packageID)
}

// MoveBetweenPackages moves the product at index from the source package to the target package.
// Moving within the same package is a no-op.
func (e *Engine) MoveBetweenPackages(state *WorkingState, sourceID, targetID string, index int) (*WorkingState, error) {
	const op = "move_between_packages"
	source, ok := state.packages[sourceID]
	if !ok {
		return state, e.rejected(packageNotFound(op, sourceID))
	}
	if _, ok := state.packages[targetID]; !ok {
		return state, e.rejected(packageNotFound(op, targetID))
	}
	if !validIndex(index, len(source.products)) {
		return state, e.rejected(indexOutOfRange(op, sourceID, index, len(source.products)))
	}
	if sourceID == targetID {
		return state, nil
	}
	return e.placeOnPackage(op, state, sourceID, source.products[index], targetID)
}

func (e *Engine) placeOnPackage(op string, state *WorkingState, from, productID, packageID string) (*WorkingState, error) {
	target, ok := state.packages[packageID]
	if !ok {
		return state, e.rejected(packageNotFound(op, packageID))
	}
	if target.pallet == nil {
		return state, e.rejected(&Rejection{Operation: op, Reason: ReasonNoPallet, PackageID: packageID, ProductID: productID})
	}

	p := state.products[productID]
	existing := state.materialize(target.products)
	report := e.checker.Evaluate(p, *target.pallet, existing)
	if !report.Fits {
		return state, e.rejected(&Rejection{
			Operation:      op,
			Reason:         ReasonFitFailure,
			PackageID:      packageID,
			ProductID:      productID,
			FillPercentage: report.FillPercentage,
			Fit:            &report,
			Detail:         string(report.Reason),
		})
	}

	next := state.clone()
	next.dropProduct(productID)
	next.putProduct(p, packageID)
	e.ensureTrailingEmpty(next)

	result, err := e.commit(op, next)
	if err == nil {
		metrics.RecordPalletFill(e.checker.FillPercentage(*target.pallet, append(existing, p)))
	}
	return result, err
}

// AssignPalletToPackage places a clone of the template on a pallet-less package.
func (e *Engine) AssignPalletToPackage(state *WorkingState, packageID, templateID string) (*WorkingState, error) {
	const op = "assign_pallet"
	slot, ok := state.packages[packageID]
	if !ok {
		return state, e.rejected(packageNotFound(op, packageID))
	}
	if slot.pallet != nil {
		return state, e.rejected(&Rejection{Operation: op, Reason: ReasonPalletAssigned, PackageID: packageID, Detail: slot.pallet.ID})
	}
	template, ok := e.templates[templateID]
	if !ok {
		return state, e.rejected(&Rejection{Operation: op, Reason: ReasonNotFound, PackageID: packageID, Detail: "pallet template " + templateID})
	}

	next := state.clone()
	pallet := template.Place(e.freshID(next))
	next.packages[packageID].pallet = &pallet
	e.ensureTrailingEmpty(next)
	return e.commit(op, next)
}

// DetachPallet returns a package's products to the pool and clears its pallet.
// The package then becomes empty and is folded into the trailing empty package.
func (e *Engine) DetachPallet(state *WorkingState, packageID string) (*WorkingState, error) {
	const op = "detach_pallet"
	slot, ok := state.packages[packageID]
	if !ok {
		return state, e.rejected(packageNotFound(op, packageID))
	}
	if slot.pallet == nil {
		return state, nil
	}

	next := state.clone()
	e.unloadToPool(next, packageID)
	next.packages[packageID].pallet = nil
	e.consolidatePool(next)
	e.ensureTrailingEmpty(next)
	return e.commit(op, next)
}

// SplitProduct replaces a product with two parts whose counts sum to the original.
// With a count, the parts are "base/i" and "base/j" holding count and the remainder.
// Without one, the engine's Halver decides.
func (e *Engine) SplitProduct(state *WorkingState, productID string, count *int) (*WorkingState, error) {
	const op = "split_product"
	p, ok := state.products[productID]
	if !ok {
		return state, e.rejected(&Rejection{Operation: op, Reason: ReasonNotFound, ProductID: productID})
	}
	if p.Count <= 1 {
		return state, e.rejected(&Rejection{Operation: op, Reason: ReasonInvalidRange, ProductID: productID, Detail: "count must be greater than 1"})
	}

	var first, second model.Product
	if count != nil {
		if *count <= 0 || *count >= p.Count {
			return state, e.rejected(&Rejection{Operation: op, Reason: ReasonInvalidRange, ProductID: productID,
				Detail: fmt.Sprintf("split count %d outside (0, %d)", *count, p.Count)})
		}
		i, j := freePartIndices(state, p)
		first, second = p, p
		first.ID, first.Count = model.PartID(p.BaseID(), i), *count
		second.ID, second.Count = model.PartID(p.BaseID(), j), p.Count-*count
	} else {
		first, second = e.halver(p, func() string { return e.freshID(state) })
	}

	if rej := e.validateSplit(op, state, p, first, second); rej != nil {
		return state, e.rejected(rej)
	}

	next := state.clone()
	loc := next.location[productID]
	list := slices.Clone(next.listFor(loc))
	at := slices.Index(list, productID)
	list = slices.Replace(list, at, at+1, first.ID, second.ID)
	delete(next.products, productID)
	delete(next.location, productID)
	for _, part := range []model.Product{first, second} {
		next.products[part.ID] = part
		next.location[part.ID] = loc
	}
	next.setList(loc, list)
	return e.commit(op, next)
}

func (e *Engine) validateSplit(op string, state *WorkingState, original, first, second model.Product) *Rejection {
	bad := func(detail string) *Rejection {
		return &Rejection{Operation: op, Reason: ReasonInvalidInput, ProductID: original.ID, Detail: detail}
	}
	switch {
	case first.Count <= 0 || second.Count <= 0:
		return bad("split parts must both hold items")
	case first.Count+second.Count != original.Count:
		return bad("split parts do not preserve count")
	case first.ID == "" || second.ID == "" || first.ID == second.ID:
		return bad("split parts need distinct ids")
	}
	for _, id := range []string{first.ID, second.ID} {
		if id != original.ID && state.idInUse(id) {
			return bad("split id " + id + " already in use")
		}
	}
	return nil
}

// ConsolidatePool merges pool products that share a base id.
func (e *Engine) ConsolidatePool(state *WorkingState) (*WorkingState, error) {
	next := state.clone()
	e.consolidatePool(next)
	return e.commit("consolidate_pool", next)
}

// RemovePackage returns a package's products to the pool and deletes it.
func (e *Engine) RemovePackage(state *WorkingState, packageID string) (*WorkingState, error) {
	const op = "remove_package"
	if _, ok := state.packages[packageID]; !ok {
		return state, e.rejected(packageNotFound(op, packageID))
	}
	next := state.clone()
	e.unloadToPool(next, packageID)
	delete(next.packages, packageID)
	next.packageOrder = slices.DeleteFunc(next.packageOrder, func(id string) bool { return id == packageID })
	e.consolidatePool(next)
	e.ensureTrailingEmpty(next)
	return e.commit(op, next)
}

// RemoveAllPackages returns every product to the pool and leaves a single empty package.
func (e *Engine) RemoveAllPackages(state *WorkingState) (*WorkingState, error) {
	next := state.clone()
	for _, id := range next.packageOrder {
		e.unloadToPool(next, id)
	}
	next.packages = make(map[string]*packageSlot)
	next.packageOrder = nil
	e.consolidatePool(next)
	e.ensureTrailingEmpty(next)
	return e.commit("remove_all_packages", next)
}

// AddProduct appends a manually entered product to the pool. An empty id is generated.
func (e *Engine) AddProduct(state *WorkingState, p model.Product) (*WorkingState, error) {
	const op = "add_product"
	if p.ID == "" {
		p.ID = e.freshID(state)
	}
	if strings.Contains(p.ID, model.PartSeparator) {
		return state, e.rejected(&Rejection{Operation: op, Reason: ReasonInvalidInput, ProductID: p.ID, Detail: "id must not contain " + model.PartSeparator})
	}
	if rej := e.validateNewProduct(op, state, p); rej != nil {
		return state, e.rejected(rej)
	}
	for _, existing := range state.products {
		if existing.BaseID() == p.ID {
			return state, e.rejected(&Rejection{Operation: op, Reason: ReasonInvalidInput, ProductID: p.ID, Detail: "id already used by " + existing.ID})
		}
	}
	next := state.clone()
	next.putProduct(p, poolLocation)
	return e.commit(op, next)
}

// DeleteProduct removes a product from wherever it is located.
func (e *Engine) DeleteProduct(state *WorkingState, productID string) (*WorkingState, error) {
	const op = "delete_product"
	if _, ok := state.products[productID]; !ok {
		return state, e.rejected(&Rejection{Operation: op, Reason: ReasonNotFound, ProductID: productID})
	}
	next := state.clone()
	next.dropProduct(productID)
	return e.commit(op, next)
}

// Capacity evaluates a product against a package's pallet without changing the state.
func (e *Engine) Capacity(state *WorkingState, productID, packageID string) (FitReport, error) {
	const op = "capacity"
	p, ok := state.products[productID]
	if !ok {
		return FitReport{}, &Rejection{Operation: op, Reason: ReasonNotFound, ProductID: productID}
	}
	slot, ok := state.packages[packageID]
	if !ok {
		return FitReport{}, packageNotFound(op, packageID)
	}
	if slot.pallet == nil {
		return FitReport{}, &Rejection{Operation: op, Reason: ReasonNoPallet, PackageID: packageID, ProductID: productID}
	}
	existing := slices.DeleteFunc(slices.Clone(slot.products), func(id string) bool { return id == productID })
	return e.checker.Evaluate(p, *slot.pallet, state.materialize(existing)), nil
}

func (e *Engine) validateNewProduct(op string, state *WorkingState, p model.Product) *Rejection {
	switch {
	case p.ID == "":
		return &Rejection{Operation: op, Reason: ReasonInvalidInput, Detail: "product id is required"}
	case p.Count < 1:
		return &Rejection{Operation: op, Reason: ReasonInvalidInput, ProductID: p.ID, Detail: "count must be at least 1"}
	case state.idInUse(p.ID):
		return &Rejection{Operation: op, Reason: ReasonInvalidInput, ProductID: p.ID, Detail: "duplicate id"}
	}
	return nil
}

// unloadToPool moves every product of a package to the end of the pool.
func (e *Engine) unloadToPool(s *WorkingState, packageID string) {
	slot := s.packages[packageID]
	for _, id := range slot.products {
		s.location[id] = poolLocation
		s.pool = append(s.pool, id)
	}
	slot.products = nil
}

// consolidatePool merges pool products sharing a base id into the first one seen.
// The merged product takes the base id unless a product elsewhere already uses it.
func (e *Engine) consolidatePool(s *WorkingState) {
	groups := make(map[string][]string)
	var bases []string
	for _, id := range s.pool {
		base := model.BaseID(id)
		if _, ok := groups[base]; !ok {
			bases = append(bases, base)
		}
		groups[base] = append(groups[base], id)
	}

	pool := make([]string, 0, len(bases))
	for _, base := range bases {
		members := groups[base]
		if len(members) == 1 {
			pool = append(pool, members[0])
			continue
		}

		merged := s.products[members[0]]
		for _, id := range members[1:] {
			merged.Count += s.products[id].Count
		}
		for _, id := range members {
			delete(s.products, id)
			delete(s.location, id)
		}
		merged.ID = base
		if s.idInUse(base) {
			merged.ID = members[0]
		}
		s.products[merged.ID] = merged
		s.location[merged.ID] = poolLocation
		pool = append(pool, merged.ID)
	}
	s.pool = pool
}

// ensureTrailingEmpty keeps exactly one empty package, placed last. The last
// existing empty package is kept so its id stays stable.
func (e *Engine) ensureTrailingEmpty(s *WorkingState) {
	keep := ""
	for i := len(s.packageOrder) - 1; i >= 0; i-- {
		if s.packages[s.packageOrder[i]].isEmpty() {
			keep = s.packageOrder[i]
			break
		}
	}

	order := make([]string, 0, len(s.packageOrder)+1)
	for _, id := range s.packageOrder {
		if id == keep {
			continue
		}
		if s.packages[id].isEmpty() {
			delete(s.packages, id)
			continue
		}
		order = append(order, id)
	}
	if keep == "" {
		keep = e.freshID(s)
		s.packages[keep] = &packageSlot{id: keep}
	}
	s.packageOrder = append(order, keep)
}

func (e *Engine) freshID(s *WorkingState) string {
	for {
		id := e.newID()
		if id != "" && !s.idInUse(id) {
			return id
		}
	}
}

func (e *Engine) commit(op string, next *WorkingState) (*WorkingState, error) {
	if err := next.Validate(e.checker); err != nil {
		metrics.RecordAllocation(op, "invariant_violation")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.RecordAllocation(op, "ok")
	return next, nil
}

func (e *Engine) rejected(rej *Rejection) *Rejection {
	metrics.RecordAllocation(rej.Operation, string(rej.Reason))
	return rej
}

// freePartIndices returns the two lowest part indices of p's base id that no
// other product uses. p's own id counts as free since it is being replaced.
func freePartIndices(s *WorkingState, p model.Product) (int, int) {
	base := p.BaseID()
	used := make(map[int]bool)
	for id, other := range s.products {
		if id == p.ID || other.BaseID() != base {
			continue
		}
		if n, ok := other.PartIndex(); ok {
			used[n] = true
		}
	}
	var free []int
	for n := 1; len(free) < 2; n++ {
		if !used[n] && !s.idInUse(model.PartID(base, n)) || model.PartID(base, n) == p.ID {
			free = append(free, n)
		}
	}
	return free[0], free[1]
}

// ConsolidateProducts groups products by base id, summing counts. Groups keep
// the position of their first member; merged groups take the base id.
func ConsolidateProducts(products []model.Product) []model.Product {
	index := make(map[string]int)
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		base := p.BaseID()
		if i, ok := index[base]; ok {
			out[i].Count += p.Count
			out[i].ID = base
			continue
		}
		index[base] = len(out)
		out = append(out, p)
	}
	return out
}

func validIndex(i, n int) bool {
	return i >= 0 && i < n
}

func moveItem(ids []string, from, to int) []string {
	out := slices.Clone(ids)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}

func packageNotFound(op, packageID string) *Rejection {
	return &Rejection{Operation: op, Reason: ReasonNotFound, PackageID: packageID}
}

func indexOutOfRange(op, packageID string, index, size int) *Rejection {
	return &Rejection{Operation: op, Reason: ReasonInvalidRange, PackageID: packageID,
		Detail: fmt.Sprintf("index %d outside [0, %d)", index, size)}
}
