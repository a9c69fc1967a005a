// @title           RecycleHub Ledger API
// @version         1.0.0
// @description     Points, daily challenges and reward redemption for the recycling rewards app

// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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

	"recyclehub/internal/appinfo"
	"recyclehub/internal/config"
	"recyclehub/internal/database"
	"recyclehub/internal/middleware"
	"recyclehub/internal/response"
	"recyclehub/internal/router"
	"recyclehub/internal/scheduler"
	"recyclehub/internal/services"
	"recyclehub/internal/upload"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := appinfo.NewLogger(cfg.Server.Environment, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting RecycleHub ledger",
		zap.String("version", appinfo.GetVersion()),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
	logger.Info("Application shutdown completed")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// Initialize database
	dbManager, err := database.InitDB(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			logger.Error("Failed to close database connections", zap.Error(err))
		} else {
			logger.Info("Database connections closed successfully")
		}
	}()

	// Database health check
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	healthStatus := dbManager.Health(ctx)
	cancel()
	if healthStatus.Status != database.StatusHealthy {
		return fmt.Errorf("database is %s: %v", healthStatus.Status, healthStatus.Errors)
	}
	logger.Info("Database health check passed",
		zap.String("driver", string(dbManager.Dialect())),
		zap.Duration("response_time", healthStatus.ResponseTime),
	)

	// Initialize services
	serviceCollection, err := services.NewServiceCollection(dbManager, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()
	if err := serviceCollection.Start(appCtx); err != nil {
		return err
	}

	// Upload backend is optional; submissions can carry any image URL
	storage, err := upload.New(appCtx, &cfg.Upload, logger.Named("upload"))
	switch {
	case errors.Is(err, upload.ErrDisabled):
		logger.Info("Image uploads disabled")
		storage = nil
	case err != nil:
		logger.Warn("Upload backend initialization failed, uploads disabled", zap.Error(err))
		storage = nil
	default:
		logger.Info("Upload backend initialized", zap.String("provider", cfg.Upload.Provider))
	}

	// Voucher expiry sweep
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(serviceCollection.Redemptions, cfg.Scheduler.VoucherSweepEvery, logger.Named("scheduler"))
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		sched.Start()
	}

	// Response builder for API controllers
	responseConfig := response.DefaultConfig()
	responseConfig.PrettyJSON = !cfg.IsProduction()
	responseConfig.MaskInternalErrors = cfg.IsProduction()
	responseBuilder := response.NewBuilder(responseConfig, logger)

	authMiddleware, err := middleware.NewAuthMiddleware(&cfg.Auth, responseBuilder, logger.Named("auth"))
	if err != nil {
		return fmt.Errorf("failed to create auth middleware: %w", err)
	}

	handler := router.SetupRouter(&router.Dependencies{
		Services:        serviceCollection,
		Auth:            authMiddleware,
		Storage:         storage,
		ResponseBuilder: responseBuilder,
		CORSOrigins:     cfg.Server.CORSOrigins,
		MaxUploadSize:   cfg.Upload.MaxFileSize,
		Logger:          logger,
	})

	// HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("🚀 Starting HTTP server",
			zap.String("address", server.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/", cfg.Server.Port)),
			zap.Bool("scheduler", sched != nil),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case sig := <-quit:
		logger.Info("Shutting down application...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("Server shutdown completed")
	}

	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			logger.Warn("Scheduler did not stop cleanly", zap.Error(err))
		}
	}

	if err := serviceCollection.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Services did not stop cleanly", zap.Error(err))
	}
	return runErr
}
