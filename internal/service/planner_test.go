//go:build !integration

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/repository"
	"github.com/guttosm/pallet-service/internal/snapshot"
)

// memorySnapshots is a thread-safe in-memory snapshot store.
type memorySnapshots struct {
	mu      sync.Mutex
	stored  map[string]model.Snapshot
	saves   int
	restErr error
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{stored: make(map[string]model.Snapshot)}
}

func (m *memorySnapshots) Save(_ context.Context, s model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored[s.OrderID] = s
	m.saves++
	return nil
}

func (m *memorySnapshots) Restore(_ context.Context, orderID string) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.restErr != nil {
		return nil, m.restErr
	}
	s, ok := m.stored[orderID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memorySnapshots) Delete(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stored, orderID)
	return nil
}

func (m *memorySnapshots) get(orderID string) (model.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stored[orderID]
	return s, ok
}

func (m *memorySnapshots) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// recordingSubmitter records submitted change sets and can be told to fail.
type recordingSubmitter struct {
	mu       sync.Mutex
	lines    []model.ChangeSet[model.Product]
	packages []model.ChangeSet[model.Package]
	err      error
}

func (r *recordingSubmitter) SubmitLineItems(_ context.Context, _ string, changes model.ChangeSet[model.Product]) (model.SyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return model.SyncResult{}, r.err
	}
	r.lines = append(r.lines, changes)
	return model.SyncResult{Kind: model.EntityLineItems, Upserted: len(changes.Added) + len(changes.Modified), Deleted: len(changes.Deleted), SyncedAt: time.Now()}, nil
}

func (r *recordingSubmitter) SubmitPackages(_ context.Context, _ string, changes model.ChangeSet[model.Package]) (model.SyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return model.SyncResult{}, r.err
	}
	r.packages = append(r.packages, changes)
	return model.SyncResult{Kind: model.EntityPackages, Upserted: len(changes.Added) + len(changes.Modified), Deleted: len(changes.Deleted), SyncedAt: time.Now()}, nil
}

func (r *recordingSubmitter) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *recordingSubmitter) submissions() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines), len(r.packages)
}

func (r *recordingSubmitter) lastLines() model.ChangeSet[model.Product] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lines[len(r.lines)-1]
}

func plannerConfig(snapshots repository.SnapshotRepositoryInterface, submitter repository.ChangeSetSubmitter) PlannerConfig {
	return PlannerConfig{
		Engine:           newTestEngine(),
		Snapshots:        snapshots,
		Submitter:        submitter,
		SchedulerOptions: []SchedulerOption{WithDebounce(time.Hour)},
	}
}

func testProducts() []model.Product {
	return []model.Product{
		product("A", 4, 20, 20, 20),
		product("B", 2, 60, 30, 40),
	}
}

func TestPlanner_OperationsUpdateView(t *testing.T) {
	p, err := NewPlanner(plannerConfig(nil, nil), testOrder(), testProducts())
	require.NoError(t, err)
	defer func() { _ = p.Close(context.Background()) }()

	view := p.View()
	require.Len(t, view.Pool, 2)
	require.Len(t, view.Packages, 1)
	pkgID := view.Packages[0].ID

	view, err = p.AssignPallet(pkgID, "eur")
	require.NoError(t, err)
	assert.Len(t, view.Packages, 2)
	assert.Equal(t, 1, view.Totals.Pallets)

	view, err = p.MoveFromPoolToPackage(pkgID, 0)
	require.NoError(t, err)
	assert.Len(t, view.Pool, 1)
	assert.Equal(t, "A", view.Packages[0].Products[0].ID)
	assert.True(t, view.IsDirty)
	assert.Equal(t, view.PendingCount, len(view.Pool)+len(view.Packages[0].Products)+len(view.Packages))

	view, err = p.MoveFromPackageToPool(pkgID, 0)
	require.NoError(t, err)
	assert.Len(t, view.Pool, 2)
}

func TestPlanner_RejectionKeepsState(t *testing.T) {
	p, err := NewPlanner(plannerConfig(nil, nil), testOrder(), []model.Product{product("TALL", 1, 10, 90, 10)})
	require.NoError(t, err)
	defer func() { _ = p.Close(context.Background()) }()

	pkgID := p.View().Packages[0].ID
	_, err = p.AssignPallet(pkgID, "eur")
	require.NoError(t, err)
	before := p.View()

	view, err := p.MoveFromPoolToPackage(pkgID, 0)
	require.Error(t, err)
	assert.True(t, IsRejection(err, ReasonFitFailure))
	assert.Equal(t, before.Pool, view.Pool)
	assert.Equal(t, before.Packages, view.Packages)

	_, err = p.MoveWithinPool(0, 5)
	assert.True(t, IsRejection(err, ReasonInvalidRange))
}

func TestNewPlanner_RejectsDuplicateProducts(t *testing.T) {
	_, err := NewPlanner(plannerConfig(nil, nil), testOrder(), []model.Product{product("A", 1, 1, 1, 1), product("A", 1, 1, 1, 1)})
	assert.True(t, IsRejection(err, ReasonInvalidInput))
}

func TestPlanner_SubmitSynchronizesAndAdvancesBaseline(t *testing.T) {
	ctx := context.Background()
	submitter := &recordingSubmitter{}
	p, err := NewPlanner(plannerConfig(nil, submitter), testOrder(), testProducts())
	require.NoError(t, err)
	defer func() { _ = p.Close(ctx) }()

	results, err := p.Submit(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, model.EntityLineItems, results[0].Kind)
	assert.Equal(t, 2, results[0].Upserted)
	assert.Equal(t, model.EntityPackages, results[1].Kind)
	assert.Equal(t, 1, results[1].Upserted)

	changes, err := p.Changes()
	require.NoError(t, err)
	assert.Zero(t, changes.Len())
	assert.False(t, p.View().IsDirty)

	_, err = p.DeleteProduct("B")
	require.NoError(t, err)
	_, err = p.Submit(ctx)
	require.NoError(t, err)

	lines, packages := submitter.submissions()
	assert.Equal(t, 2, lines)
	assert.Equal(t, 1, packages, "unchanged packages are not resubmitted")
	assert.Equal(t, []string{"B"}, submitter.lastLines().Deleted)
}

func TestPlanner_FailedSubmitKeepsChangesForRetry(t *testing.T) {
	ctx := context.Background()
	submitter := &recordingSubmitter{err: errors.New("backend unavailable")}
	p, err := NewPlanner(plannerConfig(nil, submitter), testOrder(), testProducts())
	require.NoError(t, err)
	defer func() { _ = p.Close(ctx) }()

	before, err := p.Changes()
	require.NoError(t, err)

	_, err = p.Submit(ctx)
	require.Error(t, err)

	after, err := p.Changes()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	submitter.setErr(nil)
	_, err = p.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.LineItems, submitter.lastLines())
}

func TestPlanner_SubmitWithoutBackend(t *testing.T) {
	p, err := NewPlanner(plannerConfig(nil, nil), testOrder(), testProducts())
	require.NoError(t, err)
	defer func() { _ = p.Close(context.Background()) }()

	_, err = p.Submit(context.Background())
	assert.ErrorIs(t, err, ErrRepositoryNotConfigured)
}

func TestPlanner_AutoSave(t *testing.T) {
	snapshots := newMemorySnapshots()
	submitter := &recordingSubmitter{}
	cfg := plannerConfig(snapshots, submitter)
	cfg.SchedulerOptions = []SchedulerOption{WithDebounce(testDebounce)}

	p, err := NewPlanner(cfg, testOrder(), testProducts())
	require.NoError(t, err)
	defer func() { _ = p.Close(context.Background()) }()

	for i := 0; i < 5; i++ {
		_, err = p.MoveWithinPool(0, 1)
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool {
		lines, packages := submitter.submissions()
		return lines == 1 && packages == 1
	}, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		s, ok := snapshots.get("ORD-1")
		return ok && !s.IsDirty
	}, time.Second, 5*time.Millisecond)

	s, _ := snapshots.get("ORD-1")
	assert.Equal(t, "A", s.Pool[1].ID, "odd number of swaps leaves B first")
}

func TestPlanner_CloseFlushesAndRejectsLaterOperations(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	p, err := NewPlanner(plannerConfig(snapshots, nil), testOrder(), testProducts())
	require.NoError(t, err)

	_, err = p.SplitProduct("A", nil)
	require.NoError(t, err)
	assert.Zero(t, snapshots.count())

	require.NoError(t, p.Close(ctx))
	stored, ok := snapshots.get("ORD-1")
	require.True(t, ok)
	assert.Len(t, stored.Pool, 3)

	_, err = p.ConsolidatePool()
	assert.ErrorIs(t, err, ErrSessionClosed)
	require.NoError(t, p.Close(ctx))
}

// gatedSubmitter holds the first line item submission until release is closed.
type gatedSubmitter struct {
	*recordingSubmitter
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedSubmitter() *gatedSubmitter {
	return &gatedSubmitter{
		recordingSubmitter: &recordingSubmitter{},
		entered:            make(chan struct{}),
		release:            make(chan struct{}),
	}
}

func (g *gatedSubmitter) SubmitLineItems(ctx context.Context, orderID string, changes model.ChangeSet[model.Product]) (model.SyncResult, error) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.recordingSubmitter.SubmitLineItems(ctx, orderID, changes)
}

func TestPlanner_ClosePersistsFinalState(t *testing.T) {
	ctx := context.Background()

	t.Run("changes made during a save", func(t *testing.T) {
		submitter := newGatedSubmitter()
		cfg := plannerConfig(nil, submitter)
		cfg.SchedulerOptions = []SchedulerOption{WithDebounce(testDebounce)}
		p, err := NewPlanner(cfg, testOrder(), testProducts())
		require.NoError(t, err)

		select {
		case <-submitter.entered:
		case <-time.After(time.Second):
			t.Fatal("first sync did not start")
		}
		_, err = p.MoveWithinPool(0, 1)
		require.NoError(t, err)
		_, err = p.AssignPallet(p.View().Packages[0].ID, "eur")
		require.NoError(t, err)
		assert.Equal(t, 2, p.scheduler.Stats(StreamSync).Dropped)

		close(submitter.release)
		assert.Eventually(t, func() bool {
			return p.scheduler.Stats(StreamSync).Saved == 1
		}, time.Second, 5*time.Millisecond)

		require.NoError(t, p.Close(ctx))
		_, packages := submitter.submissions()
		assert.Equal(t, 2, packages)
		changes, err := p.Changes()
		require.NoError(t, err)
		assert.Zero(t, changes.Len())
	})

	t.Run("restored plan that was never scheduled", func(t *testing.T) {
		submitter := &recordingSubmitter{}
		snapshots := newMemorySnapshots()
		backend := &repository.OrderState{Order: testOrder(), LineItems: testProducts()}

		p := RestorePlanner(ctx, plannerConfig(snapshots, submitter), backend)
		require.True(t, p.View().IsDirty, "the trailing empty package is not persisted yet")

		require.NoError(t, p.Close(ctx))
		_, packages := submitter.submissions()
		assert.Equal(t, 1, packages)
		stored, ok := snapshots.get("ORD-1")
		require.True(t, ok)
		assert.False(t, stored.IsDirty)
	})

	t.Run("clean plan is not resubmitted", func(t *testing.T) {
		submitter := &recordingSubmitter{}
		p, err := NewPlanner(plannerConfig(nil, submitter), testOrder(), testProducts())
		require.NoError(t, err)
		_, err = p.Submit(ctx)
		require.NoError(t, err)

		require.NoError(t, p.Close(ctx))
		lines, packages := submitter.submissions()
		assert.Equal(t, 1, lines)
		assert.Equal(t, 1, packages)
	})
}

func TestRestorePlanner(t *testing.T) {
	ctx := context.Background()
	order := testOrder()
	pallet := model.DefaultPalletTemplates()[0].Place("pal-1")
	backend := &repository.OrderState{
		Order:     order,
		LineItems: testProducts(),
		Packages: []model.Package{
			{ID: "pkg-1", OrderID: order.ID, Pallet: &pallet, Products: []model.Product{product("A", 4, 20, 20, 20)}},
		},
	}

	t.Run("uses a restorable snapshot", func(t *testing.T) {
		snapshots := newMemorySnapshots()
		snap := model.EmptySnapshot(order.ID)
		snap.Order = order
		snap.Pool = testProducts()
		require.NoError(t, snapshots.Save(ctx, snap))

		p := RestorePlanner(ctx, plannerConfig(snapshots, nil), backend)
		defer func() { _ = p.Close(ctx) }()

		view := p.View()
		assert.Len(t, view.Pool, 2)
		changes, err := p.Changes()
		require.NoError(t, err)
		assert.Equal(t, []string{"pkg-1"}, changes.Packages.Deleted)
		assert.Empty(t, changes.LineItems.Added)
	})

	t.Run("corrupt snapshot falls back to persisted packages", func(t *testing.T) {
		snapshots := newMemorySnapshots()
		snapshots.restErr = snapshot.ErrCorruptSnapshot

		p := RestorePlanner(ctx, plannerConfig(snapshots, nil), backend)
		defer func() { _ = p.Close(ctx) }()

		view := p.View()
		require.Len(t, view.Pool, 1)
		assert.Equal(t, "B", view.Pool[0].ID)
		assert.Equal(t, "pkg-1", view.Packages[0].ID)
		changes, err := p.Changes()
		require.NoError(t, err)
		assert.Empty(t, changes.LineItems.Added)
		assert.Empty(t, changes.LineItems.Modified)
		require.Len(t, changes.Packages.Added, 1, "only the trailing empty package is new")
	})

	t.Run("snapshot violating capacity falls back", func(t *testing.T) {
		snapshots := newMemorySnapshots()
		snap := model.EmptySnapshot(order.ID)
		snap.Order = order
		snap.Packages = []model.Package{{ID: "pkg-x", Pallet: &pallet, Products: []model.Product{product("HUGE", 100, 100, 40, 80)}}}
		require.NoError(t, snapshots.Save(ctx, snap))

		p := RestorePlanner(ctx, plannerConfig(snapshots, nil), backend)
		defer func() { _ = p.Close(ctx) }()
		assert.Equal(t, "pkg-1", p.View().Packages[0].ID)
	})

	t.Run("inconsistent packages fall back to line items", func(t *testing.T) {
		broken := &repository.OrderState{
			Order:     order,
			LineItems: testProducts(),
			Packages: []model.Package{
				{ID: "pkg-1", Products: []model.Product{product("A", 4, 20, 20, 20)}},
			},
		}
		p := RestorePlanner(ctx, plannerConfig(nil, nil), broken)
		defer func() { _ = p.Close(ctx) }()

		view := p.View()
		assert.Len(t, view.Pool, 2)
		require.Len(t, view.Packages, 1)
		assert.True(t, view.Packages[0].IsEmpty())
	})
}
