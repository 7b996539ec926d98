// Package app provides application initialization and dependency injection.
package app

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/guttosm/pallet-service/config"
	"github.com/guttosm/pallet-service/internal/http"
)

// App holds the wired application.
type App struct {
	Router   *gin.Engine
	Services *ServiceComponents
	Database *DatabaseComponents
}

// InitializeApp creates and wires all application dependencies.
// This is the main orchestration function that initializes all components.
func InitializeApp(cfg config.Config) *App {
	// Initialize logger first (needed by other components)
	InitializeLogger(cfg.Log)

	// Initialize database components (MongoDB repositories behind circuit breakers)
	dbComponents := InitializeDatabase(cfg.Database)

	// Initialize planning services
	serviceComponents := InitializeServices(cfg.Planner, dbComponents)

	// Initialize router components (health checks and configuration)
	routerComponents := InitializeRouter(serviceComponents, dbComponents, cfg)

	return &App{
		Router:   http.NewRouter(routerComponents.HealthHandler, routerComponents.Config),
		Services: serviceComponents,
		Database: dbComponents,
	}
}

// Shutdown flushes the open planning sessions and closes the database.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Services != nil && a.Services.Planner != nil {
		log.Info().Int("sessions", a.Services.Planner.Sessions()).Msg("Flushing planning sessions")
		if err := a.Services.Planner.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.Database.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
