package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"

	"github.com/merxlabs/merx/internal/common"
	"github.com/merxlabs/merx/internal/handlers"
	"github.com/merxlabs/merx/internal/interfaces"
	"github.com/merxlabs/merx/internal/services/catalog"
	"github.com/merxlabs/merx/internal/services/enrich"
	"github.com/merxlabs/merx/internal/services/events"
	"github.com/merxlabs/merx/internal/services/jobs"
	"github.com/merxlabs/merx/internal/services/scheduler"
	"github.com/merxlabs/merx/internal/services/scrape"
	"github.com/merxlabs/merx/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	EventService   interfaces.EventService
	Schemas        *catalog.Registry
	Fetcher        *scrape.Fetcher
	Enricher       interfaces.EnrichmentService
	JobService     *jobs.Service
	Scheduler      *scheduler.Service

	ItemHandler   *handlers.ItemHandler
	JobHandler    *handlers.JobHandler
	StatusHandler *handlers.StatusHandler
	WSHandler     *handlers.WebSocketHandler

	wsWriter *handlers.WebSocketWriter
}

// New wires the application together. Jobs orphaned by a previous
// process are failed before the service accepts new work, so the store
// never claims an active job nothing is executing.
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	// Storage
	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = storageManager

	// Startup recovery before anything can submit jobs
	if err := scheduler.RecoverOrphans(ctx, storageManager.JobStorage(), logger); err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to recover orphaned jobs: %w", err)
	}

	// Events
	a.EventService = events.NewService(logger)

	// Websocket push channel, wired as an extra log writer so service
	// logs stream to connected dashboard clients. Everything built
	// after this point logs through it.
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, &config.WebSocket, logger)
	wsWriter, err := handlers.NewWebSocketWriter(a.WSHandler, arbormodels.WriterConfiguration{
		Type: arbormodels.LogWriterTypeConsole,
	}, &config.WebSocket)
	if err != nil {
		logger.Warn().Err(err).Msg("WebSocket log writer disabled")
	} else {
		a.wsWriter = wsWriter
		logger = logger.WithWriters([]writers.IWriter{wsWriter})
		a.Logger = logger
	}

	// Category schemas: built-ins plus any overrides on disk
	a.Schemas = catalog.NewRegistry(logger)
	if config.Catalog.SchemasDir != "" {
		if err := a.Schemas.LoadDir(config.Catalog.SchemasDir); err != nil {
			a.close()
			return nil, fmt.Errorf("failed to load category schemas: %w", err)
		}
	}

	// Source fetching and enrichment
	a.Fetcher = scrape.NewFetcher(&config.Fetcher, logger)

	enricher, err := enrich.NewService(ctx, &config.Enrichment, a.Fetcher, a.Schemas, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize enrichment provider: %w", err)
	}
	a.Enricher = enricher

	// Job coordination
	a.JobService = jobs.NewService(storageManager, enricher, a.EventService, &config.Jobs, logger)

	// Stale-job sweeper
	a.Scheduler = scheduler.NewService(storageManager.JobStorage(), a.JobService, &config.Scheduler, logger)
	if err := a.Scheduler.Start(); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	// HTTP handlers
	a.ItemHandler = handlers.NewItemHandler(storageManager.ItemStorage(), a.Schemas, logger)
	a.JobHandler = handlers.NewJobHandler(a.JobService, logger)
	a.StatusHandler = handlers.NewStatusHandler(storageManager, a.JobService, a.Schemas, enricher.Provider(), logger)

	logger.Info().
		Str("provider", enricher.Provider()).
		Int("categories", len(a.Schemas.Categories())).
		Msg("Application initialized")

	return a, nil
}

// Close shuts the application down in dependency order: stop accepting
// scheduled work, drain running jobs, then release the event and
// storage layers.
func (a *App) Close() error {
	a.Logger.Info().Msg("Shutting down application")
	a.close()
	a.Logger.Info().Msg("Application shutdown complete")
	return nil
}

func (a *App) close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.JobService != nil {
		a.JobService.Shutdown()
	}
	if a.wsWriter != nil {
		a.wsWriter.Close()
	}
	if a.EventService != nil {
		a.EventService.Close()
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close storage")
		}
	}
}
