package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/contre95/monkeypress/src/features/catalog"
	"github.com/contre95/monkeypress/src/features/config"
	"github.com/contre95/monkeypress/src/features/editorial"
	"github.com/contre95/monkeypress/src/features/entities"
	"github.com/contre95/monkeypress/src/features/fixtures"
	"github.com/contre95/monkeypress/src/features/hosting"
	"github.com/contre95/monkeypress/src/features/listing"
	"github.com/contre95/monkeypress/src/features/logging"
	"github.com/contre95/monkeypress/src/features/metrics"
	"github.com/contre95/monkeypress/src/features/relations"
	"github.com/contre95/monkeypress/src/infra/database"
)

const configPath = "config.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfgManager, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	// Create the content store
	store, err := database.NewSqliteStore(cfgManager.Get().Database.Path)
	if err != nil {
		log.Fatalf("failed to open content store: %v", err)
	}
	defer store.Close()

	// Metrics and the dangling link reporter are shared by every feature
	collector := metrics.NewCollector()
	reporter := editorial.NewReporter(collector)

	relationsService := relations.NewService(store, reporter, collector)
	entitiesService := entities.NewService(store, reporter)
	catalogService := catalog.NewService(store)
	listingService := listing.NewService(store, relationsService, cfgManager, collector)
	editorialService := editorial.NewService(store, collector)
	metricsService := metrics.NewService(store, collector)

	// Seed the demo catalog into an empty store
	if cfgManager.Get().Demo {
		demo, err := fixtures.Demo()
		if err != nil {
			log.Fatalf("failed to read demo fixtures: %v", err)
		}
		if _, err := fixtures.Seed(ctx, store, entitiesService, catalogService, demo); err != nil {
			slog.Error("Failed to seed demo fixtures", "error", err)
		}
	}

	// Reload the configuration when the file changes on disk
	stopWatch, err := config.Watch(ctx, configPath, cfgManager)
	if err != nil {
		slog.Warn("Configuration changes will need a restart", "error", err)
	} else {
		defer stopWatch()
	}

	// Create and start the Telegram bot if enabled
	var telegramBot *hosting.TelegramBot
	if cfgManager.Get().Telegram.Enabled {
		telegramBot, err = hosting.NewTelegramBot(cfgManager, editorialService, metricsService)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			reporter.Attach(telegramBot)
			go telegramBot.Start()
			slog.Info("Telegram bot started")
		}
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, configPath, hosting.Services{
		Entities:  entitiesService,
		Relations: relationsService,
		Catalog:   catalogService,
		Listing:   listingService,
		Editorial: editorialService,
		Metrics:   metricsService,
	})
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Server stopped", "error", err)
			stop()
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	<-ctx.Done()
	slog.Info("Shutting down server...")

	// Shutdown the Telegram bot
	if telegramBot != nil {
		telegramBot.Stop()
		slog.Info("Telegram bot stopped")
	}

	// Shutdown the server
	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
