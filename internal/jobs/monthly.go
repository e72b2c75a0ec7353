package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/basetide/activity-marts/internal/adapter"
	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/logger"
	"github.com/basetide/activity-marts/internal/store"
)

// MonthlyResult summarizes one day appended to the monthly mart
type MonthlyResult struct {
	Day      domain.Date
	Month    string
	Hosts    int
	Duration time.Duration
}

// MonthlyReducer appends one day of per-host hit and visitor counts to the
// monthly arrays. The append is NOT idempotent: every load grows each array
// of the month by exactly one element, so array position i always means the
// day first_date + i. The run ledger is what keeps that true; a day with a
// completed run is rejected, as is any same-month day that is not the direct
// successor of the last applied one.
type MonthlyReducer struct {
	store store.Store
	clock adapter.Clock
}

// NewMonthlyReducer creates a new monthly reducer
func NewMonthlyReducer(st store.Store, clk adapter.Clock) *MonthlyReducer {
	return &MonthlyReducer{
		store: st,
		clock: clk,
	}
}

// RunDay appends one day's counts to the day's month. The ledger guard runs
// before any write happens.
func (r *MonthlyReducer) RunDay(ctx context.Context, day domain.Date) (*MonthlyResult, error) {
	start := r.clock.Now()

	var result *MonthlyResult
	err := recordRun(ctx, r.store, r.clock, domain.JobHostMonthly, day.String(), func(ctx context.Context, _ string) (map[string]any, error) {
		if err := r.guard(ctx, day); err != nil {
			return nil, err
		}

		stats, err := r.store.GetHostStatsForDate(ctx, day)
		if err != nil {
			return nil, err
		}

		// Even a day without traffic must run: every existing row of the
		// month gets its zero element appended
		if err := r.store.AppendDailyHostMetrics(ctx, day, stats); err != nil {
			return nil, err
		}

		result = &MonthlyResult{
			Day:      day,
			Month:    day.MonthKey(),
			Hosts:    len(stats),
			Duration: r.clock.Since(start),
		}

		return map[string]any{
			"month": day.MonthKey(),
			"hosts": len(stats),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Monthly day appended",
		zap.String("day", day.String()),
		zap.String("month", result.Month),
		zap.Int("hosts", result.Hosts),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

// guard rejects a day the ledger has already seen and any day that would
// break the positional alignment of the month's arrays
func (r *MonthlyReducer) guard(ctx context.Context, day domain.Date) error {
	applied, err := r.store.HasCompletedRun(ctx, domain.JobHostMonthly, day.String())
	if err != nil {
		return err
	}
	if applied {
		return fmt.Errorf("day %s: %w", day, domain.ErrDateAlreadyApplied)
	}

	last, err := r.store.GetLastCompletedRun(ctx, domain.JobHostMonthly)
	if err != nil {
		return err
	}
	if last == nil {
		return nil
	}

	lastDay, err := domain.ParseDate(last.PartitionKey)
	if err != nil {
		return fmt.Errorf("failed to parse last applied day %q: %w", last.PartitionKey, err)
	}

	if !day.After(lastDay) {
		return fmt.Errorf("day %s is not after the last applied day %s: %w", day, lastDay, domain.ErrOutOfOrderDate)
	}
	// Within a month days must be consecutive; a new month may start on any day
	if day.SameMonth(lastDay) && day != lastDay.Next() {
		return fmt.Errorf("day %s skips days after %s within the month: %w", day, lastDay, domain.ErrOutOfOrderDate)
	}

	return nil
}
