// Package app provides database initialization and setup.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/pallet-service/config"
	"github.com/guttosm/pallet-service/internal/circuitbreaker"
	"github.com/guttosm/pallet-service/internal/repository"
)

// Circuit breaker names, also reported by the readiness probe.
const (
	OrdersCircuitBreaker    = "mongodb_orders"
	SnapshotsCircuitBreaker = "mongodb_snapshots"
	TemplatesCircuitBreaker = "mongodb_pallet_templates"
)

// DatabaseComponents holds database-related components.
type DatabaseComponents struct {
	DB              *repository.MongoDB
	Orders          repository.OrderRepositoryInterface
	Snapshots       repository.SnapshotRepositoryInterface
	PalletTemplates repository.PalletTemplateRepositoryInterface
	CircuitBreakers *circuitbreaker.Registry
}

// InitializeDatabase connects to MongoDB and creates the repositories behind
// their circuit breakers. Returns nil if the database is disabled or the
// connection fails; the service then plans without persistence.
func InitializeDatabase(cfg config.DatabaseConfig) *DatabaseComponents {
	if !cfg.Enabled {
		return nil
	}

	mongoCfg := repository.DefaultMongoConfig()
	if cfg.MaxPoolSize > 0 {
		mongoCfg.MaxPoolSize = uint64(cfg.MaxPoolSize)
		mongoCfg.MinPoolSize = min(mongoCfg.MinPoolSize, mongoCfg.MaxPoolSize)
	}
	db, err := repository.NewMongoDBWithConfig(cfg.URI, cfg.DatabaseName, mongoCfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB - continuing without database")
		return nil
	}

	log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")

	if cfg.SnapshotTTL > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.SetSnapshotTTL(ctx, cfg.SnapshotTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to set snapshot TTL index")
		}
		cancel()
	}

	registry := newCircuitBreakerRegistry(cfg)

	return &DatabaseComponents{
		DB: db,
		Orders: repository.NewOrderRepositoryWithCircuitBreaker(
			repository.NewOrderRepository(db), registry.Get(OrdersCircuitBreaker)),
		Snapshots: repository.NewSnapshotRepositoryWithCircuitBreaker(
			repository.NewSnapshotRepository(db), registry.Get(SnapshotsCircuitBreaker)),
		PalletTemplates: repository.NewPalletTemplateRepositoryWithCircuitBreaker(
			repository.NewPalletTemplateRepository(db), registry.Get(TemplatesCircuitBreaker)),
		CircuitBreakers: registry,
	}
}

// newCircuitBreakerRegistry builds the breakers shared by the repositories.
// Not-found and cancelled calls are answers, not outages.
func newCircuitBreakerRegistry(cfg config.DatabaseConfig) *circuitbreaker.Registry {
	return circuitbreaker.NewRegistry(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Ignore:           repository.IsBenign,
	})
}

// Close disconnects from MongoDB.
func (d *DatabaseComponents) Close(ctx context.Context) error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close(ctx)
}
