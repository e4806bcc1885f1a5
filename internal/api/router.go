// Package api provides the HTTP API for SafeWalk.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/api/handler"
	"github.com/safewalk/safewalk/internal/api/middleware"
	"github.com/safewalk/safewalk/internal/corridor"
	"github.com/safewalk/safewalk/internal/hazard"
	"github.com/safewalk/safewalk/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version         string
	BuildTime       string
	Logger          zerolog.Logger
	ServiceName     string
	Metrics         *middleware.Metrics
	Planner         handler.RoutePlanner
	HazardService   *hazard.Service
	CorridorService *corridor.Service
	Registry        *resilience.Registry
	ReadyCheck      handler.ReadyCheck
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "safewalk-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.ReadyCheck)
	planHandler := handler.NewPlanHandler(cfg.Planner, cfg.HazardService, cfg.CorridorService, cfg.Logger)
	hazardHandler := handler.NewHazardHandler(cfg.HazardService)
	corridorHandler := handler.NewCorridorHandler(cfg.CorridorService)

	// Create rate limit middleware for different endpoint categories
	reportRateLimit := middleware.RateLimitByIP(middleware.ReportRateLimit)       // 20 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Route planning - expensive compute, strict rate limiting
		r.With(expensiveRateLimit).Post("/routes:plan", planHandler.PlanRoutes)

		// Hazard reports - intake is rate limited more tightly than reads
		r.Route("/hazards", func(r chi.Router) {
			r.With(reportRateLimit).Post("/", hazardHandler.CreateReport)
			r.With(standardRateLimit).Get("/", hazardHandler.ListReports)
			r.With(standardRateLimit).Get("/{hazardId}", hazardHandler.GetReport)
			r.With(reportRateLimit).Post("/{hazardId}:resolve", hazardHandler.ResolveReport)
		})

		// Admin endpoints - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(standardRateLimit)

			// Corridor management
			r.Route("/corridors", func(r chi.Router) {
				r.Get("/", corridorHandler.ListCorridors)
				r.Post("/", corridorHandler.CreateCorridor)
				r.Route("/{corridorId}", func(r chi.Router) {
					r.Put("/", corridorHandler.UpdateCorridor)
					r.Delete("/", corridorHandler.DeleteCorridor)
				})
			})
		})
	})

	return r
}
