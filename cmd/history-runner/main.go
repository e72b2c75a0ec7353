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
	"github.com/basetide/activity-marts/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	year       = flag.Int("year", 0, "Year to apply incrementally")
	backfill   = flag.Bool("backfill", false, "Rebuild the whole history from the work feed")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadHistoryConfig(*configFile, *envPath)
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
			"service": "history-runner",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting history runner")

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

	builder := jobs.NewHistoryBuilder(dataStore, clock, cfg.History.BoundedEnd)

	var result *jobs.HistoryResult
	switch {
	case *backfill && *year != 0:
		logger.FatalCtx(ctx, "-backfill cannot be combined with -year")
	case *backfill:
		result, err = builder.RunBackfill(ctx)
	case *year != 0:
		result, err = builder.RunYear(ctx, *year)
	default:
		logger.FatalCtx(ctx, "Either -year or -backfill is required")
	}
	if err != nil {
		logger.FatalCtx(ctx, "History run failed", zap.Error(err))
	}
	if result == nil {
		// Backfill over an empty work feed has nothing to rebuild
		logger.InfoCtx(ctx, "History runner finished with nothing to do")
		return
	}

	logger.InfoCtx(ctx, "History runner finished",
		zap.String("mode", string(result.Mode)),
		zap.Int("year", result.Year),
		zap.Int("creators", result.Creators),
		zap.Int("new", result.New),
		zap.Int("changed", result.Changed),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("revised", result.Revised),
		zap.Int("rows", result.Rows),
		zap.Duration("duration", result.Duration),
	)
}
