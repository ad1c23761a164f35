package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-market-scanner/internal/scanner/config"
	"golang-market-scanner/internal/scanner/repository"
	"golang-market-scanner/internal/scanner/service"
	"golang-market-scanner/pkg/logger"
	"golang-market-scanner/pkg/postgres"
	"golang-market-scanner/pkg/redis"
	"golang-market-scanner/pkg/retry"
	"golang-market-scanner/pkg/telegram"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var configPath string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Runs a single market scan and exits",
	Run:   runScan,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs market scans on the configured cron schedule",
	Run:   runServe,
}

func runScan(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner, _, appLogger, cleanup := buildScanner()
	defer cleanup()

	if _, err := scanner.Scan(ctx); err != nil {
		appLogger.Fatal("Scan failed", logger.ErrorField(err))
	}
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner, cfg, appLogger, cleanup := buildScanner()
	defer cleanup()

	c := cron.New()
	_, err := c.AddFunc(cfg.Scheduler.CronSpec, func() {
		if _, err := scanner.Scan(ctx); err != nil {
			appLogger.Error("Scheduled scan failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		appLogger.Fatal("Invalid cron spec", logger.ErrorField(err))
	}

	appLogger.Info("Scheduler started", logger.StringField("cron", cfg.Scheduler.CronSpec))
	c.Start()

	<-ctx.Done()

	appLogger.Info("Shutting down scheduler...")
	shutdownCtx := c.Stop()
	select {
	case <-shutdownCtx.Done():
	case <-time.After(30 * time.Second):
		appLogger.Warn("Timed out waiting for running scan to finish")
	}
	appLogger.Info("Scheduler exiting")
}

// buildScanner wires the full dependency graph from configuration. The
// persistence sink, stream publisher, and notifier are optional and
// only constructed when configured.
func buildScanner() (service.ScannerService, *config.Config, *logger.Logger, func()) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger.Info("Starting Market Scanner", logger.Field("name", cfg.App.Name))

	cleanups := []func(){func() { _ = appLogger.Sync() }}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	marketData := repository.NewYahooFinanceRepository(cfg, appLogger)

	var newsProviders []repository.NewsRepository
	if cfg.News.AlphaVantageAPIKey != "" {
		newsProviders = append(newsProviders, repository.NewAlphaVantageNewsRepository(cfg, appLogger))
	}
	if cfg.News.FinnhubAPIKey != "" {
		newsProviders = append(newsProviders, repository.NewFinnhubNewsRepository(cfg, appLogger))
	}
	if cfg.News.RSSEnabled {
		newsProviders = append(newsProviders, repository.NewYahooRSSNewsRepository(cfg, appLogger))
	}
	if len(newsProviders) == 0 {
		appLogger.Warn("No news providers configured, scan results will have no news analysis")
	}

	retryPolicy := retry.Policy{MaxAttempts: cfg.Retry.MaxAttempts, Delay: cfg.Retry.Delay}

	var indexSources []repository.IndexRepository
	for _, src := range cfg.Universe {
		switch {
		case src.URL != "":
			indexSources = append(indexSources,
				repository.NewWikipediaIndexRepository(src.Name, src.URL, appLogger, retryPolicy))
		case len(src.Symbols) > 0:
			indexSources = append(indexSources, repository.NewStaticIndexRepository(src.Name, src.Symbols))
		default:
			appLogger.Warn("Skipping universe source with no URL or symbols",
				logger.StringField("name", src.Name))
		}
	}
	if len(indexSources) == 0 {
		appLogger.Fatal("No usable universe sources configured")
	}

	var profileRepo repository.StockProfileRepository
	if cfg.Database.Host != "" {
		db, err := postgres.NewDB(postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			cleanups = append(cleanups, func() { _ = sqlDB.Close() })
		}
		profileRepo = repository.NewStockProfileRepository(db.DB)
	}

	var redisClient *goRedis.Client
	if cfg.Redis.Host != "" {
		client, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		cleanups = append(cleanups, func() { _ = client.Close() })
		redisClient = client.Client
	}

	var notifier telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	universe := service.NewUniverseService(appLogger, indexSources)
	newsAggregator := service.NewNewsAggregatorService(cfg, appLogger, newsProviders)
	scanner := service.NewScannerService(cfg, appLogger, marketData, universe, newsAggregator,
		profileRepo, redisClient, notifier)

	return scanner, cfg, appLogger, cleanup
}

func main() {
	rootCmd := &cobra.Command{Use: "scanner-service"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-scanner.yaml", "Path to the configuration file")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing scanner-service CLI: %s\n", err)
		os.Exit(1)
	}
}
