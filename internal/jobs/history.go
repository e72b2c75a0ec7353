package jobs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/basetide/activity-marts/internal/adapter"
	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/logger"
	"github.com/basetide/activity-marts/internal/store"
	"github.com/basetide/activity-marts/internal/store/schema"
)

// HistoryResult summarizes one quality history build
type HistoryResult struct {
	Mode      domain.HistoryMode
	Year      int
	Creators  int
	New       int
	Changed   int
	Unchanged int
	Revised   int
	Rows      int
	Duration  time.Duration
}

// HistoryBuilder maintains the SCD2 quality history of creators. Incremental
// mode folds one year's aggregates into the existing rows; backfill mode
// rebuilds the whole table from every known year. With boundedEnd the
// current rows carry the next period as their end instead of staying open.
type HistoryBuilder struct {
	store      store.Store
	clock      adapter.Clock
	boundedEnd bool
}

// NewHistoryBuilder creates a new history builder
func NewHistoryBuilder(st store.Store, clk adapter.Clock, boundedEnd bool) *HistoryBuilder {
	return &HistoryBuilder{
		store:      st,
		clock:      clk,
		boundedEnd: boundedEnd,
	}
}

// RunYear applies one year's aggregates on top of the current history.
// Reapplying the most recent year revises its rows in place; applying an
// older year is rejected because closed intervals never reopen.
func (b *HistoryBuilder) RunYear(ctx context.Context, year int) (*HistoryResult, error) {
	start := b.clock.Now()

	var result *HistoryResult
	err := recordRun(ctx, b.store, b.clock, domain.JobQualityHistory, strconv.Itoa(year), func(ctx context.Context, _ string) (map[string]any, error) {
		last, err := b.store.GetLastCompletedRun(ctx, domain.JobQualityHistory)
		if err != nil {
			return nil, err
		}
		if last != nil {
			lastYear, err := strconv.Atoi(last.PartitionKey)
			if err != nil {
				return nil, fmt.Errorf("failed to parse last applied year %q: %w", last.PartitionKey, err)
			}
			if year < lastYear {
				return nil, fmt.Errorf("year %d precedes the last applied year %d: %w", year, lastYear, domain.ErrOutOfOrderDate)
			}
		}

		aggregates, err := b.store.GetCreatorPeriodAggregates(ctx, year)
		if err != nil {
			return nil, err
		}
		signals := toSignals(aggregates)

		currentRows, err := b.store.GetCurrentCreatorHistories(ctx)
		if err != nil {
			return nil, err
		}
		states := make([]domain.CreatorState, 0, len(currentRows))
		for _, row := range currentRows {
			states = append(states, domain.CreatorState{
				CreatorID: row.CreatorID,
				Class:     row.QualityClass,
				Active:    row.IsActive,
				StartYear: row.StartYear,
			})
		}

		transitions := domain.BuildQualityTransitions(states, signals, year)
		if err := b.store.ApplyQualityTransitions(ctx, year, transitions, b.boundedEnd); err != nil {
			return nil, err
		}

		result = &HistoryResult{
			Mode:     domain.HistoryModeIncremental,
			Year:     year,
			Creators: len(transitions),
			Duration: b.clock.Since(start),
		}
		for _, t := range transitions {
			switch t.Kind {
			case domain.TransitionNew:
				result.New++
			case domain.TransitionChanged:
				result.Changed++
			case domain.TransitionUnchanged:
				result.Unchanged++
			case domain.TransitionRevised:
				result.Revised++
			}
		}

		return map[string]any{
			"creators":  result.Creators,
			"new":       result.New,
			"changed":   result.Changed,
			"unchanged": result.Unchanged,
			"revised":   result.Revised,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Quality history year applied",
		zap.Int("year", result.Year),
		zap.Int("creators", result.Creators),
		zap.Int("new", result.New),
		zap.Int("changed", result.Changed),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("revised", result.Revised),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

// RunBackfill rebuilds the whole history table from every year in the works
// feed. The ledger entry carries the latest rebuilt year so a later
// incremental run continues from the right place.
func (b *HistoryBuilder) RunBackfill(ctx context.Context) (*HistoryResult, error) {
	start := b.clock.Now()

	yearRange, err := b.store.GetWorkYearRange(ctx)
	if err != nil {
		return nil, err
	}
	if yearRange == nil {
		logger.InfoCtx(ctx, "No works to backfill")
		return nil, nil
	}

	var result *HistoryResult
	err = recordRun(ctx, b.store, b.clock, domain.JobQualityHistory, strconv.Itoa(yearRange.Max), func(ctx context.Context, _ string) (map[string]any, error) {
		aggregates, err := b.store.GetAllCreatorPeriodAggregates(ctx)
		if err != nil {
			return nil, err
		}
		signals := toSignals(aggregates)

		historyRows := domain.BuildHistoryRows(signals, yearRange.Max, b.boundedEnd)
		rows := make([]schema.CreatorQualityHistory, 0, len(historyRows))
		for _, hr := range historyRows {
			rows = append(rows, schema.CreatorQualityHistory{
				CreatorID:    hr.CreatorID,
				QualityClass: hr.Class,
				IsActive:     hr.Active,
				StartYear:    hr.StartYear,
				EndYear:      hr.EndYear,
				IsCurrent:    hr.Current,
			})
		}

		if err := b.store.ReplaceCreatorHistories(ctx, rows); err != nil {
			return nil, err
		}

		creators := make(map[string]bool)
		for _, hr := range historyRows {
			creators[hr.CreatorID] = true
		}

		result = &HistoryResult{
			Mode:     domain.HistoryModeBackfill,
			Year:     yearRange.Max,
			Creators: len(creators),
			Rows:     len(rows),
			Duration: b.clock.Since(start),
		}

		return map[string]any{
			"creators":    result.Creators,
			"rows":        result.Rows,
			"latest_year": yearRange.Max,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Quality history rebuilt",
		zap.Int("latest_year", result.Year),
		zap.Int("creators", result.Creators),
		zap.Int("rows", result.Rows),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

func toSignals(aggregates []store.PeriodAggregate) []domain.PeriodSignal {
	signals := make([]domain.PeriodSignal, 0, len(aggregates))
	for _, agg := range aggregates {
		signals = append(signals, domain.PeriodSignal{
			CreatorID: agg.CreatorID,
			Year:      agg.Year,
			AvgRating: agg.AvgRating,
		})
	}
	return signals
}
