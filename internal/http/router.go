package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/pallet-service/internal/importer"
	"github.com/guttosm/pallet-service/internal/metrics"
	"github.com/guttosm/pallet-service/internal/middleware"
	"github.com/guttosm/pallet-service/internal/service"
)

// RouterConfig holds router configuration options.
type RouterConfig struct {
	RateLimit         int
	RateWindow        time.Duration
	RequestTimeout    time.Duration
	EnableIdempotency bool
	CORSOrigins       []string
	SwaggerUser       string
	SwaggerPass       string
	MaxUploadSize     int64
	Planner           service.PlannerService
	Templates         service.PalletTemplateService
	Importer          *importer.Importer
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit:         100,
		RateWindow:        time.Minute,
		RequestTimeout:    30 * time.Second,
		EnableIdempotency: true,
		MaxUploadSize:     DefaultMaxUploadSize,
	}
}

// NewRouter creates and configures the Gin router for the pallet service.
func NewRouter(healthHandler *HealthHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Configure global middleware
	configureGlobalMiddleware(router, &cfg)

	// Register infrastructure routes (health, metrics, swagger)
	registerInfrastructureRoutes(router, healthHandler, &cfg)

	// Configure API routes
	api := router.Group("/api")
	configureAPIMiddleware(api, &cfg)

	for _, group := range routeGroups(&cfg) {
		group.RegisterRoutes(api, &cfg)
	}

	return router
}

// configureGlobalMiddleware sets up middleware applied to all routes.
func configureGlobalMiddleware(router *gin.Engine, cfg *RouterConfig) {
	router.Use(middleware.CORS(cfg.CORSOrigins))

	// Core middleware stack
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression("/metrics"),
		middleware.RequestLogger(),
		middleware.ErrorHandler(),
	)

	// Rate limiting per client, scoped to the order on plan routes
	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		router.Use(limiter.OrderRateLimit())
	}
}

// registerInfrastructureRoutes registers health, metrics, and documentation routes.
func registerInfrastructureRoutes(router *gin.Engine, healthHandler *HealthHandler, cfg *RouterConfig) {
	if healthHandler == nil {
		healthHandler = NewHealthHandler()
	}
	healthHandler.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger with optional basic auth
	if cfg.SwaggerUser != "" && cfg.SwaggerPass != "" {
		authorized := router.Group("/swagger", gin.BasicAuth(gin.Accounts{
			cfg.SwaggerUser: cfg.SwaggerPass,
		}))
		authorized.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	} else {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}

// configureAPIMiddleware sets up middleware for the API group.
func configureAPIMiddleware(api *gin.RouterGroup, cfg *RouterConfig) {
	if cfg.RequestTimeout > 0 {
		api.Use(middleware.Timeout(middleware.TimeoutConfig{
			Timeout: cfg.RequestTimeout,
			Skip:    []string{ExportPath},
		}))
	}

	if cfg.EnableIdempotency {
		api.Use(middleware.Idempotency(middleware.DefaultIdempotencyConfig()))
	}
}

// routeGroups returns the API route groups the configuration has services for.
func routeGroups(cfg *RouterConfig) []RouteGroup {
	var groups []RouteGroup
	if cfg.Planner != nil {
		handler := NewPlannerHandler(cfg.Planner,
			WithImporter(cfg.Importer),
			WithMaxUploadSize(cfg.MaxUploadSize),
		)
		groups = append(groups, NewPlannerRoutes(handler))
	}
	if cfg.Templates != nil {
		groups = append(groups, NewPalletRoutes(NewPalletHandler(cfg.Templates)))
	}
	return groups
}
