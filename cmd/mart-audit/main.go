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
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAuditConfig(*configFile, *envPath)
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
			"service": "mart-audit",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting mart audit")

	// Cancel the sweep on shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.WarnCtx(ctx, "Received shutdown signal, canceling sweep", zap.String("signal", sig.String()))
		cancel()
	}()

	// Connect to database
	db, err := store.ConnectWithRetry(ctx, cfg.Database.DSN())
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	// The audit is read-heavy, so a configured replica takes most of its
	// load; only the ledger and the findings write hit the primary
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

	auditor := jobs.NewMartAuditor(&jobs.AuditConfig{
		WorkerPoolSize:  cfg.Audit.Worker.WorkerPoolSize,
		WorkerQueueSize: cfg.Audit.Worker.WorkerQueueSize,
		PageSize:        cfg.Audit.PageSize,
	}, dataStore, clock)

	result, err := auditor.Run(ctx)
	if err != nil {
		logger.FatalCtx(ctx, "Mart audit failed", zap.Error(err))
	}

	logger.InfoCtx(ctx, "Mart audit finished",
		zap.String("run_id", result.RunID),
		zap.Int64("checked", result.Checked),
		zap.Int("findings", result.Findings),
		zap.Duration("duration", result.Duration),
	)

	if result.Findings > 0 && cfg.Audit.FailOnBad {
		reportFindings(ctx, dataStore, result.RunID)
		logger.ErrorCtx(ctx, fmt.Errorf("mart audit found %d invariant violations", result.Findings),
			zap.String("run_id", result.RunID),
		)
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}
}

// maxReportedFindings caps the per-run log spam; the full set stays
// queryable in audit_findings by run ID
const maxReportedFindings = 20

func reportFindings(ctx context.Context, dataStore store.Store, runID string) {
	findings, err := dataStore.GetAuditFindings(ctx, runID)
	if err != nil {
		logger.WarnCtx(ctx, "Could not load findings for the report", zap.Error(err), zap.String("run_id", runID))
		return
	}

	for i, f := range findings {
		if i == maxReportedFindings {
			logger.WarnCtx(ctx, "Further findings omitted from log", zap.Int("omitted", len(findings)-maxReportedFindings))
			break
		}
		logger.WarnCtx(ctx, "Invariant violation",
			zap.String("mart", f.Mart),
			zap.String("check", f.CheckName),
			zap.String("entity", f.EntityKey),
			zap.String("detail", f.Detail),
		)
	}
}
