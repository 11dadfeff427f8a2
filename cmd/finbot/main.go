package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finbot/internal/amqp"
	"finbot/internal/bot"
	"finbot/internal/cache"
	"finbot/internal/config"
	"finbot/internal/dataset"
	"finbot/internal/fetch"
	applog "finbot/internal/log"
	"finbot/internal/report"
	"finbot/internal/services"
	"finbot/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting finbot")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Dataset loader, optionally wrapped with the table cache.
	var loader dataset.Loader = dataset.NewFileLoader(cfg.DatasetPath)
	var cacheManager *cache.Manager
	if cfg.ReportCacheTTL > 0 {
		caching := dataset.NewCachingLoader(loader, cfg.DatasetPath, cfg.ReportCacheTTL, logger)
		cacheManager = cache.NewManager()
		cacheManager.Register(caching)
		cacheManager.StartCleanup(cfg.ReportCacheTTL)
		defer cacheManager.Stop()
		loader = caching
		logger.Info("Table cache enabled", "ttl", cfg.ReportCacheTTL.String())
	}

	engine := report.NewEngine(loader, logger)

	// Refresh source for the in-process /update path.
	fetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize fetch backend", applog.FieldError, err)
		os.Exit(1)
	}
	var refresher *fetch.Refresher
	if fetcher != nil {
		refresher = fetch.NewRefresher(fetcher, cfg.DatasetPath, logger)
	} else {
		logger.Info("Refresh disabled - no dataset source configured")
	}

	// AMQP hands the refresh to the worker when configured.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		logger.Info("AMQP refresh queue enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	// Audit log is optional.
	var audit *storage.SQLiteRepository
	if cfg.SQLiteDBPath != "" {
		audit, err = storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize audit log", applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Audit log enabled", "path", cfg.SQLiteDBPath)
	}

	svc := services.NewReportService(engine, refresher, amqpClient, audit, logger)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close report service", applog.FieldError, err)
		}
	}()

	limiter := bot.NewLimiter(cfg.RateLimitPerMinute)
	defer limiter.Stop()

	tgBot, err := bot.New(cfg.TelegramBotToken, svc, limiter, logger)
	if err != nil {
		logger.Error("Failed to initialize Telegram bot", applog.FieldError, err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return tgBot.Run(gctx)
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Bot stopped with error", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Bot stopped gracefully")
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
