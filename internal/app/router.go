// Package app provides router configuration.
package app

import (
	"github.com/guttosm/pallet-service/config"
	"github.com/guttosm/pallet-service/internal/http"
)

// RouterComponents holds router-related components.
type RouterComponents struct {
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
}

// InitializeRouter initializes the health handler and router configuration.
func InitializeRouter(services *ServiceComponents, dbComponents *DatabaseComponents, cfg config.Config) *RouterComponents {
	healthHandler := http.NewHealthHandler()

	// Register dependencies for readiness monitoring
	if dbComponents != nil {
		if dbComponents.DB != nil {
			healthHandler.RegisterChecker("mongodb", dbComponents.DB)
		}
		healthHandler.RegisterCircuitBreakers(dbComponents.CircuitBreakers)
	}

	routerCfg := http.RouterConfig{
		RateLimit:         cfg.Server.RateLimit,
		RateWindow:        cfg.Server.RateWindow,
		RequestTimeout:    cfg.Server.RequestTimeout,
		EnableIdempotency: cfg.Server.EnableIdempotency,
		CORSOrigins:       cfg.Server.CORSOrigins,
		SwaggerUser:       cfg.Server.SwaggerUser,
		SwaggerPass:       cfg.Server.SwaggerPass,
		MaxUploadSize:     cfg.Server.MaxUploadSize,
	}

	if services != nil {
		healthHandler.RegisterSessionCounter(services.Planner.Sessions)
		routerCfg.Planner = services.Planner
		routerCfg.Templates = services.Templates
		routerCfg.Importer = services.Importer
	}

	return &RouterComponents{
		HealthHandler: healthHandler,
		Config:        routerCfg,
	}
}
