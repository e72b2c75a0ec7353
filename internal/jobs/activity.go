package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/basetide/activity-marts/internal/adapter"
	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/logger"
	"github.com/basetide/activity-marts/internal/store"
)

// ActivityResult summarizes one processed day of the cumulative marts
type ActivityResult struct {
	Day      domain.Date
	Devices  int
	Hosts    int
	Duration time.Duration
}

// ActivityUpdater maintains the two cumulative activity marts: per-device
// and per-host date lists. Merging is idempotent, so a day can be replayed
// at any time without changing the outcome.
type ActivityUpdater struct {
	store store.Store
	clock adapter.Clock
}

// NewActivityUpdater creates a new activity updater
func NewActivityUpdater(st store.Store, clk adapter.Clock) *ActivityUpdater {
	return &ActivityUpdater{
		store: st,
		clock: clk,
	}
}

// RunDay merges one day of events into both cumulative marts. Each mart is
// its own transaction and its own ledger entry.
func (u *ActivityUpdater) RunDay(ctx context.Context, day domain.Date) (*ActivityResult, error) {
	start := u.clock.Now()
	result := &ActivityResult{Day: day}

	err := recordRun(ctx, u.store, u.clock, domain.JobDeviceActivity, day.String(), func(ctx context.Context, _ string) (map[string]any, error) {
		devices, err := u.store.GetDeviceActivityForDate(ctx, day)
		if err != nil {
			return nil, err
		}
		if err := u.store.MergeDeviceActivityDates(ctx, day, devices); err != nil {
			return nil, err
		}
		result.Devices = len(devices)
		return map[string]any{"devices": len(devices)}, nil
	})
	if err != nil {
		return nil, err
	}

	err = recordRun(ctx, u.store, u.clock, domain.JobHostActivity, day.String(), func(ctx context.Context, _ string) (map[string]any, error) {
		stats, err := u.store.GetHostStatsForDate(ctx, day)
		if err != nil {
			return nil, err
		}
		hosts := make([]string, 0, len(stats))
		for _, st := range stats {
			hosts = append(hosts, st.Host)
		}
		if err := u.store.MergeHostActivityDates(ctx, day, hosts); err != nil {
			return nil, err
		}
		result.Hosts = len(hosts)
		return map[string]any{"hosts": len(hosts)}, nil
	})
	if err != nil {
		return nil, err
	}

	result.Duration = u.clock.Since(start)
	logger.InfoCtx(ctx, "Activity day merged",
		zap.String("day", day.String()),
		zap.Int("devices", result.Devices),
		zap.Int("hosts", result.Hosts),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

// RunRange merges every day in the inclusive [from, to] range, oldest first
func (u *ActivityUpdater) RunRange(ctx context.Context, from, to domain.Date) ([]*ActivityResult, error) {
	var results []*ActivityResult
	for day := from; !day.After(to); day = day.Next() {
		result, err := u.RunDay(ctx, day)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}

// RunBackfill merges the entire event stream, bounded by the oldest and
// newest event days. Safe to run on a populated mart because merging is
// idempotent.
func (u *ActivityUpdater) RunBackfill(ctx context.Context) ([]*ActivityResult, error) {
	dateRange, err := u.store.GetEventDateRange(ctx)
	if err != nil {
		return nil, err
	}
	if dateRange == nil {
		logger.InfoCtx(ctx, "No events to backfill")
		return nil, nil
	}

	logger.InfoCtx(ctx, "Backfilling activity marts",
		zap.String("from", dateRange.Min.String()),
		zap.String("to", dateRange.Max.String()),
	)

	return u.RunRange(ctx, dateRange.Min, dateRange.Max)
}
