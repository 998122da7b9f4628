package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"comanda-pos/internal/config"
	"comanda-pos/internal/database"
	"comanda-pos/internal/handler"
	"comanda-pos/internal/repository"
	"comanda-pos/internal/router"
	"comanda-pos/internal/seed"
	"comanda-pos/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting comanda POS API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Create the schema if it does not exist yet
	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(pool, logger)
	tabRepo := repository.NewTabRepository(pool, logger)
	reportRepo := repository.NewReportRepository(pool, logger)

	// Initialize services
	catalogService := service.NewCatalogService(catalogRepo, logger)
	ledgerService := service.NewLedgerService(tabRepo, catalogRepo, logger)
	reportService := service.NewReportService(reportRepo, logger)

	// Seed the catalogue from S3 or the local file system when enabled
	if cfg.Seed.Enabled {
		if err := seedCatalog(ctx, cfg.Seed, catalogService, logger); err != nil {
			return fmt.Errorf("failed to seed catalogue: %w", err)
		}
	}

	// Initialize HTTP handlers
	catalogHandler := handler.NewCatalogHandler(catalogService, logger)
	tabHandler := handler.NewTabHandler(ledgerService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)

	// Initialize router
	mux := router.New(catalogHandler, tabHandler, reportHandler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// seedCatalog loads the configured seed file, preferring S3 with a fallback
// to the local file system, and applies it through the catalogue service.
func seedCatalog(ctx context.Context, cfg config.SeedConfig, catalog service.CatalogService, logger zerolog.Logger) error {
	var (
		loader seed.Loader
		source string
	)

	if cfg.S3Bucket != "" {
		s3Loader, err := seed.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
		if err != nil {
			if cfg.File == "" {
				return err
			}
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 seed loader, falling back to local file system")
			loader, source = seed.NewFileLoader(logger), cfg.File
		} else {
			loader, source = s3Loader, cfg.S3Key
		}
	} else {
		loader, source = seed.NewFileLoader(logger), cfg.File
		logger.Info().Msg("using local file system for catalogue seed file")
	}

	items, err := loader.Load(ctx, source)
	if err != nil {
		return err
	}

	return seed.Apply(ctx, catalog, items, logger)
}
