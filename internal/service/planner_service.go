package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/metrics"
	"github.com/guttosm/pallet-service/internal/repository"
	"github.com/guttosm/pallet-service/internal/service/cache"
	"github.com/guttosm/pallet-service/internal/snapshot"
)

const (
	// DefaultSessionCacheSize is the number of planning sessions kept in memory.
	DefaultSessionCacheSize = 1024
	// DefaultSessionTTL evicts sessions idle for longer.
	DefaultSessionTTL = 30 * time.Minute

	sessionCacheShards = 16
	evictionTimeout    = 10 * time.Second
)

// PlannerService manages the planning sessions of orders.
type PlannerService interface {
	Open(ctx context.Context, order model.Order, products []model.Product) (*Planner, error)
	Get(ctx context.Context, orderID string) (*Planner, error)
	Close(ctx context.Context, orderID string) error
	Shutdown(ctx context.Context) error
	Sessions() int
}

// PlannerServiceConfig holds the dependencies of the planner service.
type PlannerServiceConfig struct {
	// Orders is the persistence backend; nil keeps plans in snapshots only.
	Orders repository.OrderRepositoryInterface
	// Snapshots stores the local working state; nil disables snapshots.
	Snapshots        repository.SnapshotRepositoryInterface
	Templates        PalletTemplateService
	SchedulerOptions []SchedulerOption
	CacheSize        int
	SessionTTL       time.Duration
	IDGenerator      func() string
}

// PlannerServiceImpl implements PlannerService.
type PlannerServiceImpl struct {
	cfg      PlannerServiceConfig
	sessions cache.CacheWithMetrics[*Planner]
	// createMu serializes session creation so an order never gets two planners.
	createMu sync.Mutex
}

// NewPlannerService creates a new planner service.
func NewPlannerService(cfg PlannerServiceConfig) *PlannerServiceImpl {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultSessionCacheSize
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = uuid.NewString
	}
	if cfg.Templates == nil {
		cfg.Templates = NewPalletTemplateService(nil)
	}

	s := &PlannerServiceImpl{cfg: cfg}
	s.sessions = cache.NewSharded[*Planner](cfg.CacheSize, cfg.SessionTTL, sessionCacheShards, s.evicted)
	return s
}

// Open starts a new plan for the order, replacing any session it had.
func (s *PlannerServiceImpl) Open(ctx context.Context, order model.Order, products []model.Product) (*Planner, error) {
	if order.ID == "" {
		order.ID = s.cfg.IDGenerator()
	}
	order.WeightTier = model.ParseWeightTier(string(order.WeightTier))
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	if previous, ok := s.sessions.Get(order.ID); ok {
		if err := previous.Close(ctx); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID).Msg("Failed to flush replaced planning session")
		}
	}

	cfg := s.plannerConfig(ctx)
	if s.cfg.Orders != nil {
		existing, err := s.cfg.Orders.LoadOrder(ctx, order.ID)
		switch {
		case err == nil:
			cfg.Baseline = existing
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("failed to load order %s: %w", order.ID, err)
		}
	}

	planner, err := NewPlanner(cfg, order, products)
	if err != nil {
		return nil, err
	}

	if s.cfg.Orders != nil {
		if err := s.cfg.Orders.SaveOrder(ctx, order); err != nil {
			planner.discard()
			return nil, fmt.Errorf("failed to save order: %w", err)
		}
	}

	s.sessions.Set(order.ID, planner)
	metrics.SetPlannerSessions(s.sessions.Len())

	log.Info().Str("order_id", order.ID).Int("products", len(products)).Msg("Planning session opened")
	return planner, nil
}

// Get returns the live session of the order, rebuilding it from persisted state if needed.
func (s *PlannerServiceImpl) Get(ctx context.Context, orderID string) (*Planner, error) {
	if planner, ok := s.sessions.Get(orderID); ok {
		return planner, nil
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()
	if planner, ok := s.sessions.Get(orderID); ok {
		return planner, nil
	}

	backend, err := s.persistedState(ctx, orderID)
	if err != nil {
		return nil, err
	}

	planner := RestorePlanner(ctx, s.plannerConfig(ctx), backend)
	s.sessions.Set(orderID, planner)
	metrics.SetPlannerSessions(s.sessions.Len())

	log.Info().Str("order_id", orderID).Msg("Planning session restored")
	return planner, nil
}

// Close flushes and ends the session of the order.
func (s *PlannerServiceImpl) Close(ctx context.Context, orderID string) error {
	planner, ok := s.sessions.Get(orderID)
	if !ok {
		return ErrSessionNotFound
	}
	err := planner.Close(ctx)
	s.sessions.Invalidate(orderID)
	return err
}

// Shutdown flushes and ends every session.
func (s *PlannerServiceImpl) Shutdown(ctx context.Context) error {
	s.sessions.Clear()
	s.sessions.Stop()
	metrics.SetPlannerSessions(0)
	return ctx.Err()
}

// Sessions is the number of live sessions.
func (s *PlannerServiceImpl) Sessions() int {
	return s.sessions.Len()
}

// CacheMetrics returns the session cache statistics.
func (s *PlannerServiceImpl) CacheMetrics() cache.Metrics {
	return s.sessions.Metrics()
}

func (s *PlannerServiceImpl) plannerConfig(ctx context.Context) PlannerConfig {
	engine := NewEngine(
		WithIDGenerator(s.cfg.IDGenerator),
		WithPalletTemplates(s.cfg.Templates.Templates(ctx)),
	)
	cfg := PlannerConfig{
		Engine:           engine,
		Snapshots:        s.cfg.Snapshots,
		SchedulerOptions: s.cfg.SchedulerOptions,
	}
	if s.cfg.Orders != nil {
		cfg.Submitter = s.cfg.Orders
	}
	return cfg
}

// persistedState loads the baseline of an order. Without a backend the local
// snapshot is the only record of the order.
func (s *PlannerServiceImpl) persistedState(ctx context.Context, orderID string) (*repository.OrderState, error) {
	if s.cfg.Orders == nil {
		snap, found := snapshot.RestoreOrEmpty(ctx, restorer(s.cfg.Snapshots), orderID)
		if !found {
			return nil, ErrSessionNotFound
		}
		lineItems := model.CloneProducts(snap.Pool)
		for _, pkg := range snap.Packages {
			lineItems = append(lineItems, model.CloneProducts(pkg.Products)...)
		}
		return &repository.OrderState{Order: snap.Order, LineItems: lineItems, Packages: snap.Packages}, nil
	}

	state, err := s.cfg.Orders.LoadOrder(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}
	return state, nil
}

// evicted closes sessions leaving the cache so their pending saves are written.
func (s *PlannerServiceImpl) evicted(orderID string, planner *Planner) {
	ctx, cancel := context.WithTimeout(context.Background(), evictionTimeout)
	defer cancel()
	if err := planner.Close(ctx); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("Failed to flush evicted planning session")
	}
	metrics.SetPlannerSessions(s.sessions.Len())
}
