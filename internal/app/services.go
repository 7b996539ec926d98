// Package app provides service initialization.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/pallet-service/config"
	"github.com/guttosm/pallet-service/internal/importer"
	"github.com/guttosm/pallet-service/internal/repository"
	"github.com/guttosm/pallet-service/internal/service"
	"github.com/guttosm/pallet-service/internal/snapshot"
)

const seedTimeout = 5 * time.Second

// ServiceComponents holds service-related components.
type ServiceComponents struct {
	Planner   *service.PlannerServiceImpl
	Templates service.PalletTemplateService
	Importer  *importer.Importer
}

// InitializeServices initializes the planning services. db may be nil, in
// which case plans live in the session cache and the snapshot store only.
func InitializeServices(cfg config.PlannerConfig, db *DatabaseComponents) *ServiceComponents {
	var (
		orders        repository.OrderRepositoryInterface
		templatesRepo repository.PalletTemplateRepositoryInterface
	)
	if db != nil {
		orders = db.Orders
		templatesRepo = db.PalletTemplates
	}

	templates := service.NewPalletTemplateService(templatesRepo)
	if err := initializeDefaultTemplates(templates); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize default pallet templates")
	}

	planner := service.NewPlannerService(service.PlannerServiceConfig{
		Orders:     orders,
		Snapshots:  snapshotStore(cfg, db),
		Templates:  templates,
		CacheSize:  cfg.SessionCacheSize,
		SessionTTL: cfg.SessionTTL,
		SchedulerOptions: []service.SchedulerOption{
			service.WithDebounce(cfg.AutoSaveDebounce),
			service.WithSaveTimeout(cfg.AutoSaveTimeout),
		},
	})

	return &ServiceComponents{
		Planner:   planner,
		Templates: templates,
		Importer:  importer.New(),
	}
}

// snapshotStore picks where working states are kept between saves. The mongo
// backend needs a database; otherwise snapshots go to the local directory.
func snapshotStore(cfg config.PlannerConfig, db *DatabaseComponents) repository.SnapshotRepositoryInterface {
	if cfg.SnapshotBackend == config.SnapshotBackendMongo {
		if db != nil {
			return db.Snapshots
		}
		log.Warn().Msg("Mongo snapshot backend needs the database, falling back to files")
	}

	store, err := snapshot.NewFileStore(cfg.SnapshotDir)
	if err != nil {
		log.Error().Err(err).Str("dir", cfg.SnapshotDir).Msg("Snapshots disabled")
		return nil
	}
	log.Info().Str("dir", store.Dir()).Msg("Snapshots stored on disk")
	return store
}

// initializeDefaultTemplates stores the built-in pallet templates that are missing.
func initializeDefaultTemplates(templates service.PalletTemplateService) error {
	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	err := templates.Seed(ctx)
	if errors.Is(err, service.ErrRepositoryNotConfigured) {
		return nil
	}
	return err
}
