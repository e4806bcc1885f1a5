// Package main provides the entrypoint for the SafeWalk API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/api"
	"github.com/safewalk/safewalk/internal/api/middleware"
	"github.com/safewalk/safewalk/internal/corridor"
	"github.com/safewalk/safewalk/internal/database"
	"github.com/safewalk/safewalk/internal/hazard"
	"github.com/safewalk/safewalk/internal/planner"
	"github.com/safewalk/safewalk/internal/provider/resilience"
	"github.com/safewalk/safewalk/internal/risk"
	"github.com/safewalk/safewalk/internal/routing"
	"github.com/safewalk/safewalk/internal/routing/openrouteservice"
	"github.com/safewalk/safewalk/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "safewalk-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SafeWalk API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Provider health registry
	registry := resilience.NewRegistry()

	// Initialize the routing source
	orsKey := os.Getenv("ORS_API_KEY")
	if orsKey == "" {
		log.Warn().Msg("ORS_API_KEY not set - route planning will fail")
	}

	orsClient := openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey:   orsKey,
		BaseURL:  os.Getenv("ORS_BASE_URL"),
		Registry: registry,
		Logger:   log,
	})

	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	routingService := routing.NewService(routing.ServiceConfig{
		Provider: orsClient,
		Logger:   log,
		Metrics:  providerMetrics,
	})
	log.Info().Msg("routing service initialized")

	// Initialize hazard repository and service
	hazardRepo := hazard.NewPostgresRepository(pool)
	hazardService := hazard.NewService(hazard.ServiceConfig{
		Repository: hazardRepo,
		Logger:     log,
	})
	log.Info().Msg("hazard service initialized")

	// Initialize corridor repository and service
	corridorRepo := corridor.NewPostgresRepository(pool)
	corridorService := corridor.NewService(corridor.ServiceConfig{
		Repository: corridorRepo,
		Logger:     log,
	})
	log.Info().Msg("corridor service initialized")

	// Initialize the planner
	plannerService := planner.NewService(planner.ServiceConfig{
		Routes: routingService,
		Scorer: risk.NewScorer(risk.ScorerConfigFromEnv()),
		Logger: log,
	})
	log.Info().Msg("planner service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		Planner:         plannerService,
		HazardService:   hazardService,
		CorridorService: corridorService,
		Registry:        registry,
		ReadyCheck:      pool.Ping,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
