package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finbot/internal/amqp"
	"finbot/internal/bot"
	"finbot/internal/config"
	"finbot/internal/fetch"
	applog "finbot/internal/log"
	"finbot/internal/storage"
	"finbot/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting finbot-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize fetch backend", applog.FieldError, err)
		os.Exit(1)
	}
	if fetcher == nil {
		logger.Error("No dataset source configured - set DATASET_URL or DRIVE_FILE_ID")
		os.Exit(1)
	}
	refresher := fetch.NewRefresher(fetcher, cfg.DatasetPath, logger)

	// Audit log is optional for the worker too.
	var audit *storage.SQLiteRepository
	if cfg.SQLiteDBPath != "" {
		audit, err = storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize audit log", applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer audit.Close()
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// The requesting chat hears back through the same bot account.
	notifier, err := bot.NewNotifier(cfg.TelegramBotToken, logger)
	if err != nil {
		logger.Error("Failed to initialize Telegram notifier", applog.FieldError, err)
		os.Exit(1)
	}

	refreshWorker := worker.NewRefreshWorker(refresher, audit, notifier, logger)

	go func() {
		if err := amqpClient.ConsumeRefreshRequests(ctx, refreshWorker.HandleRefreshRequest); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", applog.FieldError, err)
			}
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Worker stopped")
}

// newFetcher picks the refresh source from the configuration. A nil
// fetcher with nil error means no source is configured.
func newFetcher(ctx context.Context, cfg *config.Config) (fetch.Fetcher, error) {
	switch cfg.FetchBackend {
	case config.FetchDrive:
		return fetch.NewDriveFetcherFromEnv(ctx, cfg.DriveFileID)
	default:
		if cfg.DatasetURL == "" {
			return nil, nil
		}
		return fetch.NewHTTPFetcher(cfg.DatasetURL), nil
	}
}
