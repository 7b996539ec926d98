package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/logger"
	"github.com/guttosm/pallet-service/internal/repository"
	"github.com/guttosm/pallet-service/internal/snapshot"
)

// Auto-save streams of a planner.
const (
	StreamSnapshot = "snapshot"
	StreamSync     = "sync"
)

var (
	// ErrSessionNotFound is returned for orders without a planning session or persisted state.
	ErrSessionNotFound = errors.New("planning session not found")
	// ErrSessionClosed is returned by planners used after Close.
	ErrSessionClosed = errors.New("planning session closed")
)

// syncPayload is the checkpoint handed to the sync stream. The change sets are
// derived from it at save time so the baseline can advance to exactly what was sent.
type syncPayload struct {
	LineItems []model.Product `json:"line_items"`
	Packages  []model.Package `json:"packages"`
}

// PendingChanges are the change sets not yet confirmed by the backend.
type PendingChanges struct {
	LineItems model.ChangeSet[model.Product] `json:"line_items"`
	Packages  model.ChangeSet[model.Package] `json:"packages"`
}

// Len is the number of pending changes across both collections.
func (p PendingChanges) Len() int {
	return p.LineItems.Len() + p.Packages.Len()
}

// PlanView is the read model returned after every planner operation.
type PlanView struct {
	OrderID      string               `json:"order_id"`
	Order        model.Order          `json:"order"`
	Pool         []model.Product      `json:"pool"`
	Packages     []model.Package      `json:"packages"`
	Totals       model.Totals         `json:"totals"`
	PendingCount int                  `json:"pending_changes"`
	IsDirty      bool                 `json:"is_dirty"`
	LastSync     []model.SyncResult   `json:"last_sync,omitempty"`
	AutoSave     map[string]SaveStats `json:"auto_save"`
}

// PlannerConfig holds the collaborators of a planner.
type PlannerConfig struct {
	Engine *Engine
	// Snapshots receives the local working state; nil disables the snapshot stream.
	Snapshots repository.SnapshotRepositoryInterface
	// Submitter receives change sets; nil disables the sync stream.
	Submitter repository.ChangeSetSubmitter
	// Baseline is the state already persisted for the order; nil means nothing is.
	Baseline         *repository.OrderState
	SchedulerOptions []SchedulerOption
}

// Planner is the planning session of one order. Operations are serialized;
// persistence runs on the auto-save scheduler and only moves tracker baselines.
type Planner struct {
	mu         sync.Mutex
	orderID    string
	engine     *Engine
	aggregator Aggregator
	state      *WorkingState
	closed     bool

	lineItems *ChangeTracker[model.Product]
	packages  *ChangeTracker[model.Package]
	scheduler *AutoSaveScheduler
	snapshots repository.SnapshotRepositoryInterface
	submitter repository.ChangeSetSubmitter

	syncMu   sync.Mutex
	lastSync map[model.EntityKind]model.SyncResult
}

func newPlanner(cfg PlannerConfig, state *WorkingState) *Planner {
	engine := cfg.Engine
	if engine == nil {
		engine = NewEngine()
	}
	p := &Planner{
		orderID:    state.Order().ID,
		engine:     engine,
		aggregator: NewAggregator(),
		state:      state,
		lineItems:  NewProductTracker(),
		packages:   NewPackageTracker(),
		snapshots:  cfg.Snapshots,
		submitter:  cfg.Submitter,
		lastSync:   make(map[model.EntityKind]model.SyncResult),
	}
	p.scheduler = NewAutoSaveScheduler(p.save, cfg.SchedulerOptions...)
	return p
}

// NewPlanner starts a plan with every product in the pool. The first sync
// replaces whatever cfg.Baseline holds for the order.
func NewPlanner(cfg PlannerConfig, order model.Order, products []model.Product) (*Planner, error) {
	if cfg.Engine == nil {
		cfg.Engine = NewEngine()
	}
	state, err := cfg.Engine.InitializeWorkingSet(order, products)
	if err != nil {
		return nil, err
	}

	p := newPlanner(cfg, state)
	if cfg.Baseline != nil {
		p.lineItems.SetBaseline(cfg.Baseline.LineItems)
		p.packages.SetBaseline(cfg.Baseline.Packages)
	} else {
		p.lineItems.SetBaseline([]model.Product{})
		p.packages.SetBaseline([]model.Package{})
	}
	p.lineItems.Update(state.LineItems())
	p.packages.Update(state.Packages())
	p.schedule()
	return p, nil
}

// RestorePlanner rebuilds the session of an order. The persisted backend state
// is the baseline; the working state comes from the local snapshot when it can
// be restored, then from the backend state, then from an empty plan. It never fails.
func RestorePlanner(ctx context.Context, cfg PlannerConfig, backend *repository.OrderState) *Planner {
	if cfg.Engine == nil {
		cfg.Engine = NewEngine()
	}
	engine := cfg.Engine
	order := backend.Order
	restoreLog := logger.ForOrder("planner", order.ID)

	var state *WorkingState
	if snap, found := snapshot.RestoreOrEmpty(ctx, restorer(cfg.Snapshots), order.ID); found {
		restored, err := engine.InitializeContainers(order, snap.Packages, snap.Pool)
		if err != nil {
			restoreLog.Warn().Err(err).Msg("Snapshot does not fit the plan rules, using persisted state")
		} else {
			state = restored
		}
	}
	if state == nil {
		restored, err := engine.InitializeContainers(order, backend.Packages, backend.Pool())
		if err != nil {
			restoreLog.Warn().Err(err).Msg("Persisted packages are inconsistent, starting from the line items")
			restored, err = engine.InitializeWorkingSet(order, ConsolidateProducts(backend.LineItems))
		}
		if err != nil {
			restoreLog.Warn().Err(err).Msg("Persisted line items are inconsistent, starting from an empty plan")
			restored, _ = engine.InitializeWorkingSet(order, nil)
		}
		state = restored
	}

	p := newPlanner(cfg, state)
	p.lineItems.SetBaseline(backend.LineItems)
	p.packages.SetBaseline(backend.Packages)
	p.lineItems.Update(state.LineItems())
	p.packages.Update(state.Packages())
	return p
}

func restorer(store repository.SnapshotRepositoryInterface) snapshot.Restorer {
	if store == nil {
		return nil
	}
	return store
}

// OrderID returns the id of the planned order.
func (p *Planner) OrderID() string {
	return p.orderID
}

// Engine returns the engine the planner validates operations with.
func (p *Planner) Engine() *Engine {
	return p.engine
}

// View returns the current plan.
func (p *Planner) View() PlanView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

// Changes returns the change sets not yet confirmed by the backend.
func (p *Planner) Changes() (PendingChanges, error) {
	lines, err := p.lineItems.Diff()
	if err != nil {
		return PendingChanges{}, err
	}
	packages, err := p.packages.Diff()
	if err != nil {
		return PendingChanges{}, err
	}
	return PendingChanges{LineItems: lines, Packages: packages}, nil
}

// Capacity reports how a product would fit on a package.
func (p *Planner) Capacity(productID, packageID string) (FitReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Capacity(p.state, productID, packageID)
}

// MoveWithinPool reorders the pool.
func (p *Planner) MoveWithinPool(from, to int) (PlanView, error) {
	return p.apply(func(s *WorkingState) (*WorkingState, error) {
		return p.engine.MoveWithinPool(s, from, to)
	})
}

// MoveWithinPackage reorders the products of a package.
func (p *Planner) MoveWithinPackage(packageID string, from, to int) (PlanView, error) {
	return p.apply(func(s *WorkingState) (*WorkingState, error) {
		return p.engine.MoveWithinPackage(s, packageID, from, to)
	})
}

// MoveFromPackageToPool returns a product to the pool.
func (p *Planner) MoveFromPackageToPool(packageID string, index int) (PlanView, error) {
	return p.apply(func(s *WorkingState) (*WorkingState, error) {
		return p.engine.MoveFromPackageToPool(s, packageID, index)
	})
}

// MoveFromPoolToPackage places a pool product on a package.
func (p *Planner) MoveFromPoolToPackage(packageID string, index int) (PlanView, error) {
	return p.apply(func(s *WorkingState) (*WorkingState, error) {
		return p.engine.MoveFromPoolToPackage(s, packageID, index)
	})
}

// MoveBetweenPackages moves a product from one package to another.
func (p *Planner) MoveBetweenPackages(sourceID, targetID string, index int) (PlanView, error) {
	return p.apply(func(s *WorkingState) (*WorkingState, error) {
		return p.engine.MoveBetweenPackages(s, sourceID, targetID, index)
	})
}

// AssignPallet places a pallet of the template on a package.
func (p *Planner) AssignPallet(packageID, templateID string) (PlanView, error) {
	return p.apply(func(s *WorkingState) (*WorkingState, error) {
		return p.engine.AssignPalletToPackage(s, packageID, templateID)
	})
}

// DetachPallet removes the pallet of a package and returns its products to the pool.
func (p *Planner) DetachPallet(packageID string) (PlanView, error) {
	return p.apply(func(s *WorkingState) (*WorkingState, error) {
		return p.engine.DetachPallet(s, packageID)
	})
}

// SplitProduct splits a product in two parts.
func (p *Planner) SplitProduct(productID string, count *int) (PlanView, error) {
	return p.apply(func(s *WorkingState) (*WorkingState, error) {
		return p.engine.SplitProduct(s, productID, count)
	})
}

// ConsolidatePool merges pool parts sharing a base id.
func (p *Planner) ConsolidatePool() (PlanView, error) {
	return p.apply(p.engine.ConsolidatePool)
}

// RemovePackage removes a package and returns its products to the pool.
func (p *Planner) RemovePackage(packageID string) (PlanView, error) {
	return p.apply(func(s *WorkingState) (*WorkingState, error) {
		return p.engine.RemovePackage(s, packageID)
	})
}

// RemoveAllPackages returns every product to the pool.
func (p *Planner) RemoveAllPackages() (PlanView, error) {
	return p.apply(p.engine.RemoveAllPackages)
}

// AddProduct adds a product to the pool.
func (p *Planner) AddProduct(product model.Product) (PlanView, error) {
	return p.apply(func(s *WorkingState) (*WorkingState, error) {
		return p.engine.AddProduct(s, product)
	})
}

// DeleteProduct removes a product from the plan.
func (p *Planner) DeleteProduct(productID string) (PlanView, error) {
	return p.apply(func(s *WorkingState) (*WorkingState, error) {
		return p.engine.DeleteProduct(s, productID)
	})
}

// Submit synchronizes the pending change sets now, bypassing the debounce window.
func (p *Planner) Submit(ctx context.Context) ([]model.SyncResult, error) {
	if p.submitter == nil {
		return nil, ErrRepositoryNotConfigured
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrSessionClosed
	}
	payload := p.syncPayloadLocked()
	p.mu.Unlock()

	err := p.scheduler.ForceSave(ctx, StreamSync, "changeset", payload)
	return p.LastSync(), err
}

// LastSync returns the last successful sync result per collection.
func (p *Planner) LastSync() []model.SyncResult {
	p.syncMu.Lock()
	defer p.syncMu.Unlock()
	out := make([]model.SyncResult, 0, len(p.lastSync))
	for _, kind := range []model.EntityKind{model.EntityLineItems, model.EntityPackages} {
		if res, ok := p.lastSync[kind]; ok {
			out = append(out, res)
		}
	}
	return out
}

// Flush persists every scheduled save now.
func (p *Planner) Flush(ctx context.Context) error {
	return p.scheduler.Flush(ctx)
}

// Close flushes pending saves, persists the final state when it differs from
// the last save and stops the scheduler. Later operations fail with ErrSessionClosed.
func (p *Planner) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	err := errors.Join(p.scheduler.Flush(ctx), p.persistFinal(ctx))
	p.scheduler.Stop()
	return err
}

// persistFinal writes the state the session ends with. Flush alone misses it
// when a trigger was dropped during a save or a restored plan was never scheduled.
func (p *Planner) persistFinal(ctx context.Context) error {
	p.mu.Lock()
	dirty := p.dirty()
	payload := p.syncPayloadLocked()
	p.mu.Unlock()

	var errs []error
	if p.submitter != nil && dirty {
		if err := p.scheduler.ForceSave(ctx, StreamSync, "changeset", payload); err != nil {
			errs = append(errs, err)
		}
	}
	if p.snapshots != nil {
		p.mu.Lock()
		snap := p.state.Snapshot(p.dirty())
		p.mu.Unlock()
		if err := p.scheduler.SaveLatest(ctx, StreamSnapshot, "snapshot", snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// discard ends the session without persisting anything still pending.
func (p *Planner) discard() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.scheduler.Stop()
}

// apply runs one engine operation. A rejected operation leaves the plan as it was.
func (p *Planner) apply(op func(*WorkingState) (*WorkingState, error)) (PlanView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return PlanView{}, ErrSessionClosed
	}

	next, err := op(p.state)
	if err != nil {
		if rej, ok := AsRejection(err); ok {
			log.Debug().Str("order_id", p.orderID).Str("operation", rej.Operation).Str("reason", string(rej.Reason)).Msg("Operation rejected")
		} else {
			log.Error().Err(err).Str("order_id", p.orderID).Msg("Operation failed")
		}
		return p.viewLocked(), err
	}
	if next == nil || next == p.state {
		return p.viewLocked(), nil
	}

	p.state = next
	p.lineItems.Update(next.LineItems())
	p.packages.Update(next.Packages())
	p.scheduleLocked()
	return p.viewLocked(), nil
}

func (p *Planner) schedule() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scheduleLocked()
}

func (p *Planner) scheduleLocked() {
	if p.snapshots != nil {
		if err := p.scheduler.Trigger(StreamSnapshot, "snapshot", p.state.Snapshot(p.dirty())); err != nil {
			log.Warn().Err(err).Str("order_id", p.orderID).Msg("Failed to schedule snapshot save")
		}
	}
	if p.submitter != nil {
		if err := p.scheduler.Trigger(StreamSync, "changeset", p.syncPayloadLocked()); err != nil {
			log.Warn().Err(err).Str("order_id", p.orderID).Msg("Failed to schedule change set sync")
		}
	}
}

func (p *Planner) syncPayloadLocked() syncPayload {
	return syncPayload{LineItems: p.state.LineItems(), Packages: p.state.Packages()}
}

func (p *Planner) dirty() bool {
	return p.lineItems.HasChanges() || p.packages.HasChanges()
}

func (p *Planner) viewLocked() PlanView {
	pool := p.state.Pool()
	packages := p.state.Packages()
	pending := 0
	if changes, err := p.Changes(); err == nil {
		pending = changes.Len()
	}
	return PlanView{
		OrderID:      p.orderID,
		Order:        p.state.Order(),
		Pool:         pool,
		Packages:     packages,
		Totals:       p.aggregator.Totals(p.state.Order(), packages, pool),
		PendingCount: pending,
		IsDirty:      pending > 0,
		LastSync:     p.LastSync(),
		AutoSave: map[string]SaveStats{
			StreamSnapshot: p.scheduler.Stats(StreamSnapshot),
			StreamSync:     p.scheduler.Stats(StreamSync),
		},
	}
}

// save is the SaveFunc of the planner's scheduler.
func (p *Planner) save(ctx context.Context, req SaveRequest) error {
	switch payload := req.Payload.(type) {
	case model.Snapshot:
		payload.IsDirty = p.snapshotDirty(payload)
		return p.snapshots.Save(ctx, payload)
	case syncPayload:
		return p.sync(ctx, payload)
	default:
		return fmt.Errorf("unexpected payload %T on stream %s", req.Payload, req.Stream)
	}
}

// sync submits the delta between the baselines and the checkpoint. Line items
// go first since packages reference them. Each confirmed collection advances
// its own baseline; a failure leaves the rest pending for the next attempt.
func (p *Planner) sync(ctx context.Context, payload syncPayload) error {
	lines, err := p.lineItems.DiffAgainst(payload.LineItems)
	if err != nil {
		return err
	}
	if !lines.IsEmpty() {
		res, err := p.submitter.SubmitLineItems(ctx, p.orderID, lines)
		if err != nil {
			return fmt.Errorf("submit line items: %w", err)
		}
		p.lineItems.MarkAsSaved(payload.LineItems)
		p.recordSync(res)
	}

	packages, err := p.packages.DiffAgainst(payload.Packages)
	if err != nil {
		return err
	}
	if !packages.IsEmpty() {
		res, err := p.submitter.SubmitPackages(ctx, p.orderID, packages)
		if err != nil {
			return fmt.Errorf("submit packages: %w", err)
		}
		p.packages.MarkAsSaved(payload.Packages)
		p.recordSync(res)
	}

	if !lines.IsEmpty() || !packages.IsEmpty() {
		log.Info().
			Str("order_id", p.orderID).
			Int("line_items", lines.Len()).
			Int("packages", packages.Len()).
			Msg("Change sets synchronized")
		p.refreshSnapshot(ctx)
	}
	return nil
}

// snapshotDirty reports whether the snapshot differs from what the backend
// confirmed, evaluated when the snapshot is written rather than when it was taken.
func (p *Planner) snapshotDirty(snap model.Snapshot) bool {
	lines := model.CloneProducts(snap.Pool)
	for _, pkg := range snap.Packages {
		lines = append(lines, pkg.Products...)
	}
	lineChanges, err := p.lineItems.DiffAgainst(lines)
	if err != nil || !lineChanges.IsEmpty() {
		return true
	}
	packageChanges, err := p.packages.DiffAgainst(snap.Packages)
	return err != nil || !packageChanges.IsEmpty()
}

// refreshSnapshot re-saves the snapshot so its dirty flag follows the sync.
func (p *Planner) refreshSnapshot(ctx context.Context) {
	if p.snapshots == nil {
		return
	}
	p.mu.Lock()
	snap := p.state.Snapshot(p.dirty())
	p.mu.Unlock()

	if err := p.scheduler.ForceSave(ctx, StreamSnapshot, "snapshot", snap); err != nil {
		log.Debug().Err(err).Str("order_id", p.orderID).Msg("Snapshot refresh skipped")
	}
}

func (p *Planner) recordSync(res model.SyncResult) {
	p.syncMu.Lock()
	defer p.syncMu.Unlock()
	p.lastSync[res.Kind] = res
}
