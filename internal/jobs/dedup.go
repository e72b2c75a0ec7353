package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/basetide/activity-marts/internal/adapter"
	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/logger"
	"github.com/basetide/activity-marts/internal/registry"
	"github.com/basetide/activity-marts/internal/store"
)

// DedupResult summarizes one dedup materialization
type DedupResult struct {
	Source   string
	Target   string
	Rows     int64
	Duration time.Duration
}

// DedupRunner materializes deduplicated snapshots of registered raw tables.
// For every composite key the most recent row wins, recency ties broken by
// the configured tie-break column. The source table is only read; the winner
// set lands in a freshly created target table.
type DedupRunner struct {
	store    store.Store
	registry registry.DedupSourceRegistry
	clock    adapter.Clock
}

// NewDedupRunner creates a new dedup runner
func NewDedupRunner(st store.Store, reg registry.DedupSourceRegistry, clk adapter.Clock) *DedupRunner {
	return &DedupRunner{
		store:    st,
		registry: reg,
		clock:    clk,
	}
}

// Run materializes the named source. The source schema is validated against
// the registered definition and the key space is checked for ambiguity
// before anything is written; either failure aborts the run with the target
// untouched.
func (r *DedupRunner) Run(ctx context.Context, sourceName string) (*DedupResult, error) {
	src, err := r.registry.Get(sourceName)
	if err != nil {
		return nil, err
	}

	start := r.clock.Now()
	logger.InfoCtx(ctx, "Starting dedup run",
		zap.String("source", src.SourceTable),
		zap.String("target", src.TargetTable),
	)

	var result *DedupResult
	err = recordRun(ctx, r.store, r.clock, domain.JobDedup, src.Name, func(ctx context.Context, _ string) (map[string]any, error) {
		exists, err := r.store.TableExists(ctx, src.SourceTable)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("source table %s does not exist: %w", src.SourceTable, domain.ErrSourceSchemaMismatch)
		}

		missing, err := r.store.MissingColumns(ctx, src.SourceTable, src.Columns())
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("source table %s is missing columns %v: %w", src.SourceTable, missing, domain.ErrSourceSchemaMismatch)
		}

		ambiguous, err := r.store.CountAmbiguousKeys(ctx, src)
		if err != nil {
			return nil, err
		}
		if ambiguous > 0 {
			return nil, fmt.Errorf("%d keys have no deterministic winner in %s: %w", ambiguous, src.SourceTable, domain.ErrAmbiguousDedupKey)
		}

		rows, err := r.store.MaterializeDedup(ctx, src)
		if err != nil {
			return nil, err
		}

		result = &DedupResult{
			Source:   src.SourceTable,
			Target:   src.TargetTable,
			Rows:     rows,
			Duration: r.clock.Since(start),
		}

		return map[string]any{
			"source": src.SourceTable,
			"target": src.TargetTable,
			"rows":   rows,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Dedup run completed",
		zap.String("source", result.Source),
		zap.String("target", result.Target),
		zap.Int64("rows", result.Rows),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}
