package main

import (
	"context"
	"errors"
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
	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/jobs"
	"github.com/basetide/activity-marts/internal/logger"
	"github.com/basetide/activity-marts/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	date       = flag.String("date", "", "Day to apply (YYYY-MM-DD, default yesterday)")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadMonthlyConfig(*configFile, *envPath)
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
			"service": "monthly-runner",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting monthly runner")

	// Cancel the run on shutdown signals. The append transaction either
	// commits whole or not at all, so a canceled day can be rerun
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

	day := domain.DateOf(clock.Now().UTC()).Prev()
	if *date != "" {
		day, err = domain.ParseDate(*date)
		if err != nil {
			logger.FatalCtx(ctx, "Invalid -date", zap.Error(err), zap.String("date", *date))
		}
	}

	reducer := jobs.NewMonthlyReducer(dataStore, clock)
	result, err := reducer.RunDay(ctx, day)
	if err != nil {
		// A repeated day means a double-fired schedule, not data damage;
		// say so instead of dumping a bare error
		if errors.Is(err, domain.ErrDateAlreadyApplied) {
			logger.FatalCtx(ctx, "Day was already applied to the monthly mart; refusing to double-append",
				zap.String("date", day.String()))
		}
		if errors.Is(err, domain.ErrOutOfOrderDate) {
			logger.FatalCtx(ctx, "Day is out of order for the monthly mart; apply missing days first",
				zap.Error(err), zap.String("date", day.String()))
		}
		logger.FatalCtx(ctx, "Monthly run failed", zap.Error(err), zap.String("date", day.String()))
	}

	logger.InfoCtx(ctx, "Monthly runner finished",
		zap.String("date", result.Day.String()),
		zap.String("month", result.Month),
		zap.Int("hosts", result.Hosts),
		zap.Duration("duration", result.Duration),
	)
}
