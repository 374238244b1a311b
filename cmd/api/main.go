package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mirada-interiors/cms-api/internal/di"
	"github.com/mirada-interiors/cms-api/internal/handlers"
	"github.com/mirada-interiors/cms-api/internal/platform/config"
	"github.com/mirada-interiors/cms-api/internal/platform/observability"
	"github.com/mirada-interiors/cms-api/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to assemble dependencies", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := container.Close(closeCtx); err != nil {
			logger.Warn("container close error", zap.Error(err))
		}
	}()

	seeded, err := container.Services.Blueprints.SeedSystemBlueprints(ctx)
	if err != nil {
		logger.Fatal("failed to seed system blueprints", zap.Error(err))
	}
	if seeded > 0 {
		logger.Info("seeded system blueprints", zap.Int("count", seeded))
	}

	// Finish any cascade interrupted by a previous crash before serving.
	recovered, err := container.Services.Composition.RecoverPendingCascades(ctx)
	if err != nil {
		logger.Fatal("failed to recover pending cascades", zap.Error(err))
	}
	if recovered > 0 {
		logger.Info("recovered pending cascades", zap.Int("count", recovered))
	}

	projectID := cfg.Firestore.ProjectID
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID),
	}
	if cfg.RateLimit.Enabled() {
		middlewares = append(middlewares, handlers.RateLimitMiddleware(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	blueprintHandlers := handlers.NewBlueprintHandlers(
		handlers.WithBlueprintService(container.Services.Blueprints),
		handlers.WithBlueprintCompositionService(container.Services.Composition),
	)

	health := handlers.NewHealthHandlers(
		handlers.WithReadinessCheck("storage", func(ctx context.Context) error {
			_, err := container.Services.Blueprints.List(ctx, services.BlueprintFilter{})
			return err
		}),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(health),
		handlers.WithBlueprintRoutes(blueprintHandlers.Routes),
		handlers.WithTemplateRoutes(handlers.NewTemplateHandlers(container.Catalog).Routes),
		handlers.WithPageRoutes(handlers.NewPageHandlers(container.Services.Composition).Routes),
		handlers.WithBlockRoutes(handlers.NewBlockHandlers(container.Services.Composition).Routes),
		handlers.WithContentRoutes(handlers.NewContentHandlers(container.Services.Composition).Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("cms api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
