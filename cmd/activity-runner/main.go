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
	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/jobs"
	"github.com/basetide/activity-marts/internal/logger"
	"github.com/basetide/activity-marts/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	date       = flag.String("date", "", "Day to process (YYYY-MM-DD, default yesterday)")
	fromDate   = flag.String("from", "", "First day of a range to process (YYYY-MM-DD)")
	toDate     = flag.String("to", "", "Last day of a range to process (YYYY-MM-DD)")
	backfill   = flag.Bool("backfill", false, "Process every day covered by the event stream")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadActivityConfig(*configFile, *envPath)
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
			"service": "activity-runner",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting activity runner")

	// Cancel the run on shutdown signals; merges are idempotent so an
	// aborted day can simply be rerun
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

	updater := jobs.NewActivityUpdater(dataStore, clock)

	var results []*jobs.ActivityResult
	switch {
	case *backfill:
		if *date != "" || *fromDate != "" || *toDate != "" {
			logger.FatalCtx(ctx, "-backfill cannot be combined with -date, -from or -to")
		}
		results, err = updater.RunBackfill(ctx)
	case *fromDate != "" || *toDate != "":
		if *date != "" {
			logger.FatalCtx(ctx, "-date cannot be combined with -from and -to")
		}
		from, parseErr := domain.ParseDate(*fromDate)
		if parseErr != nil {
			logger.FatalCtx(ctx, "Invalid -from date", zap.Error(parseErr), zap.String("from", *fromDate))
		}
		to, parseErr := domain.ParseDate(*toDate)
		if parseErr != nil {
			logger.FatalCtx(ctx, "Invalid -to date", zap.Error(parseErr), zap.String("to", *toDate))
		}
		if to.Before(from) {
			logger.FatalCtx(ctx, "-to precedes -from", zap.String("from", *fromDate), zap.String("to", *toDate))
		}
		results, err = updater.RunRange(ctx, from, to)
	default:
		day := domain.DateOf(clock.Now().UTC()).Prev()
		if *date != "" {
			var parseErr error
			day, parseErr = domain.ParseDate(*date)
			if parseErr != nil {
				logger.FatalCtx(ctx, "Invalid -date", zap.Error(parseErr), zap.String("date", *date))
			}
		}
		var result *jobs.ActivityResult
		result, err = updater.RunDay(ctx, day)
		if result != nil {
			results = []*jobs.ActivityResult{result}
		}
	}
	if err != nil {
		logger.FatalCtx(ctx, "Activity run failed", zap.Error(err))
	}

	var devices, hosts int
	for _, r := range results {
		devices += r.Devices
		hosts += r.Hosts
	}
	logger.InfoCtx(ctx, "Activity runner finished",
		zap.Int("days", len(results)),
		zap.Int("devices", devices),
		zap.Int("hosts", hosts),
	)
}
