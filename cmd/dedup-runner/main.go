package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/basetide/activity-marts/internal/adapter"
	"github.com/basetide/activity-marts/internal/config"
	"github.com/basetide/activity-marts/internal/jobs"
	"github.com/basetide/activity-marts/internal/logger"
	"github.com/basetide/activity-marts/internal/registry"
	"github.com/basetide/activity-marts/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	source     = flag.String("source", "", "Dedup source name from the registry (default from config)")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadDedupConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "dedup-runner",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting dedup runner")

	// Cancel the run on shutdown signals; the ledger keeps the aborted
	// run as failed
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.WarnCtx(ctx, "Received shutdown signal, canceling run", zap.String("signal", sig.String()))
		cancel()
	}()

	// Connect to database
	db, err := store.ConnectWithRetry(ctx, cfg.Database.DSN())
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	// Route plain reads through the replica when one is configured; ledger
	// and guard reads still pin themselves to the primary
	if cfg.Database.ReadHost != "" {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas:          []gorm.Dialector{postgres.Open(cfg.Database.ReadDSN())},
			TraceResolverMode: true,
		}))
		if err != nil {
			logger.FatalCtx(ctx, "Failed to register read replica", zap.Error(err), zap.String("read_host", cfg.Database.ReadHost))
		}
		logger.InfoCtx(ctx, "Registered read replica", zap.String("read_host", cfg.Database.ReadHost))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize clock adapter
	clock := adapter.NewClock()

	// Load the dedup source registry
	sources, err := registry.LoadDedupSources(cfg.Dedup.SourcesPath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load dedup sources", zap.Error(err), zap.String("path", cfg.Dedup.SourcesPath))
	}

	sourceName := *source
	if sourceName == "" {
		sourceName = cfg.Dedup.Source
	}
	if sourceName == "" {
		logger.FatalCtx(ctx, "No dedup source given; pass -source or set dedup.source", zap.Strings("known_sources", sources.Names()))
	}

	runner := jobs.NewDedupRunner(dataStore, sources, clock)
	result, err := runner.Run(ctx, sourceName)
	if err != nil {
		logger.FatalCtx(ctx, "Dedup run failed", zap.Error(err), zap.String("source", sourceName))
	}

	logger.InfoCtx(ctx, "Dedup runner finished",
		zap.String("source", result.Source),
		zap.String("target", result.Target),
		zap.Int64("rows", result.Rows),
		zap.Duration("duration", result.Duration),
	)
}
