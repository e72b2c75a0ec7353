package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/registry"
	"github.com/basetide/activity-marts/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

// buildTestEvent creates a deduplicated web event
func buildTestEvent(userID, browserType, host string, eventTime time.Time) schema.WebEvent {
	return schema.WebEvent{
		UserID:      userID,
		BrowserType: browserType,
		Host:        host,
		URL:         "/index",
		EventTime:   eventTime,
	}
}

// buildTestWork creates a works-feed row
func buildTestWork(creatorID, workID string, year int, rating float64, votes int64) schema.CreatorWork {
	return schema.CreatorWork{
		CreatorID: creatorID,
		WorkID:    workID,
		Title:     workID,
		Year:      year,
		Rating:    rating,
		Votes:     votes,
	}
}

// buildTestRun creates a running ledger row
func buildTestRun(id string, job domain.JobName, partitionKey string) *schema.JobRun {
	return &schema.JobRun{
		ID:           id,
		Job:          job,
		PartitionKey: partitionKey,
		Status:       domain.JobRunRunning,
		StartedAt:    time.Now().UTC(),
	}
}

func buildEventsDedupSource() registry.DedupSource {
	return registry.DedupSource{
		Name:           "web_events",
		SourceTable:    "web_events_raw",
		TargetTable:    "web_events_dedup",
		KeyColumns:     []string{"user_id", "browser_type", "host", "url", "event_time"},
		RecencyColumn:  "collected_at",
		TiebreakColumn: "batch_seq",
	}
}

func intPtr(v int) *int {
	return &v
}

// rawDB exposes the test transaction for seeding tables the Store interface
// never writes, such as the raw dedup sources
func rawDB(t *testing.T, st Store) *gorm.DB {
	pg, ok := st.(*pgStore)
	require.True(t, ok, "raw table seeding needs the PG store")
	return pg.db
}

// =============================================================================
// Event Stream
// =============================================================================

func testCreateWebEventsAndDateRange(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("empty stream has no date range", func(t *testing.T) {
		dateRange, err := store.GetEventDateRange(ctx)
		require.NoError(t, err)
		assert.Nil(t, dateRange)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		require.NoError(t, store.CreateWebEvents(ctx, nil))
	})

	t.Run("range spans the oldest and newest event", func(t *testing.T) {
		events := []schema.WebEvent{
			buildTestEvent("u1", "Chrome", "alpha.example", time.Date(2024, 1, 30, 14, 0, 0, 0, time.UTC)),
			buildTestEvent("u2", "Firefox", "beta.example", time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC)),
			buildTestEvent("u1", "Chrome", "alpha.example", time.Date(2024, 2, 1, 23, 59, 59, 0, time.UTC)),
		}
		require.NoError(t, store.CreateWebEvents(ctx, events))

		dateRange, err := store.GetEventDateRange(ctx)
		require.NoError(t, err)
		require.NotNil(t, dateRange)
		assert.Equal(t, domain.MustParseDate("2024-01-30"), dateRange.Min)
		assert.Equal(t, domain.MustParseDate("2024-02-01"), dateRange.Max)
	})
}

func testDeviceActivityForDate(t *testing.T, store Store) {
	ctx := context.Background()
	day := domain.MustParseDate("2024-02-01")

	events := []schema.WebEvent{
		buildTestEvent("u1", "Chrome", "alpha.example", time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)),
		buildTestEvent("u1", "Chrome", "alpha.example", time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)),
		buildTestEvent("u1", "Firefox", "alpha.example", time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)),
		buildTestEvent("u2", "Chrome", "beta.example", time.Date(2024, 2, 1, 23, 59, 59, 0, time.UTC)),
		// Outside the half-open day window
		buildTestEvent("u3", "Chrome", "alpha.example", time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)),
		buildTestEvent("u4", "Chrome", "alpha.example", time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)),
	}
	require.NoError(t, store.CreateWebEvents(ctx, events))

	t.Run("collapses duplicate pairs and respects the day window", func(t *testing.T) {
		devices, err := store.GetDeviceActivityForDate(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, []DeviceDayActivity{
			{UserID: "u1", BrowserType: "Chrome"},
			{UserID: "u1", BrowserType: "Firefox"},
			{UserID: "u2", BrowserType: "Chrome"},
		}, devices)
	})

	t.Run("quiet day has no devices", func(t *testing.T) {
		devices, err := store.GetDeviceActivityForDate(ctx, domain.MustParseDate("2024-03-15"))
		require.NoError(t, err)
		assert.Empty(t, devices)
	})
}

func testHostStatsForDate(t *testing.T, store Store) {
	ctx := context.Background()
	day := domain.MustParseDate("2024-02-01")

	events := []schema.WebEvent{
		buildTestEvent("u1", "Chrome", "alpha.example", time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)),
		buildTestEvent("u1", "Chrome", "alpha.example", time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)),
		buildTestEvent("u2", "Firefox", "alpha.example", time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)),
		buildTestEvent("u1", "Chrome", "beta.example", time.Date(2024, 2, 1, 11, 0, 0, 0, time.UTC)),
		// Previous day must not leak into the rollup
		buildTestEvent("u9", "Chrome", "alpha.example", time.Date(2024, 1, 31, 11, 0, 0, 0, time.UTC)),
	}
	require.NoError(t, store.CreateWebEvents(ctx, events))

	t.Run("counts hits and distinct visitors per host", func(t *testing.T) {
		stats, err := store.GetHostStatsForDate(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, []HostDayStats{
			{Host: "alpha.example", Hits: 3, Visitors: 2},
			{Host: "beta.example", Hits: 1, Visitors: 1},
		}, stats)
	})

	t.Run("quiet day has no stats", func(t *testing.T) {
		stats, err := store.GetHostStatsForDate(ctx, domain.MustParseDate("2024-03-15"))
		require.NoError(t, err)
		assert.Empty(t, stats)
	})
}

// =============================================================================
// Cumulative Activity Marts
// =============================================================================

func testMergeDeviceActivityDates(t *testing.T, store Store) {
	ctx := context.Background()
	day0 := domain.MustParseDate("2024-01-31")
	day1 := domain.MustParseDate("2024-02-01")
	day2 := domain.MustParseDate("2024-02-02")

	devices := []DeviceDayActivity{
		{UserID: "u1", BrowserType: "Chrome"},
		{UserID: "u2", BrowserType: "Safari"},
	}

	t.Run("first merge creates rows", func(t *testing.T) {
		require.NoError(t, store.MergeDeviceActivityDates(ctx, day1, devices))

		row, err := store.GetDeviceActivity(ctx, "u1", "Chrome")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, []domain.Date{day1}, []domain.Date(row.ActivityDates))
		assert.Equal(t, []int32{20240201}, []int32(row.ActivityDateInts))

		row, err = store.GetDeviceActivity(ctx, "u2", "Safari")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, []domain.Date{day1}, []domain.Date(row.ActivityDates))
	})

	t.Run("new day extends only the merged devices", func(t *testing.T) {
		require.NoError(t, store.MergeDeviceActivityDates(ctx, day2, devices[:1]))

		row, err := store.GetDeviceActivity(ctx, "u1", "Chrome")
		require.NoError(t, err)
		assert.Equal(t, []domain.Date{day1, day2}, []domain.Date(row.ActivityDates))
		assert.Equal(t, []int32{20240201, 20240202}, []int32(row.ActivityDateInts))

		row, err = store.GetDeviceActivity(ctx, "u2", "Safari")
		require.NoError(t, err)
		assert.Equal(t, []domain.Date{day1}, []domain.Date(row.ActivityDates))
	})

	t.Run("replaying a day changes nothing", func(t *testing.T) {
		require.NoError(t, store.MergeDeviceActivityDates(ctx, day1, devices))

		row, err := store.GetDeviceActivity(ctx, "u1", "Chrome")
		require.NoError(t, err)
		assert.Equal(t, []domain.Date{day1, day2}, []domain.Date(row.ActivityDates))

		row, err = store.GetDeviceActivity(ctx, "u2", "Safari")
		require.NoError(t, err)
		assert.Equal(t, []domain.Date{day1}, []domain.Date(row.ActivityDates))
	})

	t.Run("an earlier day lands in order", func(t *testing.T) {
		require.NoError(t, store.MergeDeviceActivityDates(ctx, day0, devices[:1]))

		row, err := store.GetDeviceActivity(ctx, "u1", "Chrome")
		require.NoError(t, err)
		assert.Equal(t, []domain.Date{day0, day1, day2}, []domain.Date(row.ActivityDates))
		assert.Equal(t, []int32{20240131, 20240201, 20240202}, []int32(row.ActivityDateInts))
	})

	t.Run("same user on another browser is a separate device", func(t *testing.T) {
		require.NoError(t, store.MergeDeviceActivityDates(ctx, day1, []DeviceDayActivity{{UserID: "u1", BrowserType: "Safari"}}))

		row, err := store.GetDeviceActivity(ctx, "u1", "Safari")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, []domain.Date{day1}, []domain.Date(row.ActivityDates))

		row, err = store.GetDeviceActivity(ctx, "u1", "Chrome")
		require.NoError(t, err)
		assert.Len(t, row.ActivityDates, 3)
	})

	t.Run("absent device reads as nil", func(t *testing.T) {
		row, err := store.GetDeviceActivity(ctx, "ghost", "Chrome")
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		require.NoError(t, store.MergeDeviceActivityDates(ctx, day2, nil))
	})

	t.Run("listing pages in device order", func(t *testing.T) {
		rows, err := store.ListDeviceActivities(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Chrome", rows[0].BrowserType)
		assert.Equal(t, "u1", rows[0].UserID)
		assert.Equal(t, "Safari", rows[1].BrowserType)
		assert.Equal(t, "u1", rows[1].UserID)
		assert.Equal(t, "u2", rows[2].UserID)

		page, err := store.ListDeviceActivities(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "Safari", page[0].BrowserType)
		assert.Equal(t, "u2", page[1].UserID)
	})
}

func testMergeHostActivityDates(t *testing.T, store Store) {
	ctx := context.Background()
	day1 := domain.MustParseDate("2024-02-01")
	day2 := domain.MustParseDate("2024-02-02")

	t.Run("first merge creates rows", func(t *testing.T) {
		require.NoError(t, store.MergeHostActivityDates(ctx, day1, []string{"alpha.example", "beta.example"}))

		row, err := store.GetHostActivity(ctx, "alpha.example")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, []domain.Date{day1}, []domain.Date(row.ActivityDates))
		assert.Equal(t, []int32{20240201}, []int32(row.ActivityDateInts))
	})

	t.Run("new day extends only the merged hosts", func(t *testing.T) {
		require.NoError(t, store.MergeHostActivityDates(ctx, day2, []string{"alpha.example"}))

		row, err := store.GetHostActivity(ctx, "alpha.example")
		require.NoError(t, err)
		assert.Equal(t, []domain.Date{day1, day2}, []domain.Date(row.ActivityDates))

		row, err = store.GetHostActivity(ctx, "beta.example")
		require.NoError(t, err)
		assert.Equal(t, []domain.Date{day1}, []domain.Date(row.ActivityDates))
	})

	t.Run("replaying a day changes nothing", func(t *testing.T) {
		require.NoError(t, store.MergeHostActivityDates(ctx, day1, []string{"alpha.example", "beta.example"}))

		row, err := store.GetHostActivity(ctx, "alpha.example")
		require.NoError(t, err)
		assert.Equal(t, []domain.Date{day1, day2}, []domain.Date(row.ActivityDates))
	})

	t.Run("absent host reads as nil", func(t *testing.T) {
		row, err := store.GetHostActivity(ctx, "ghost.example")
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("listing pages in host order", func(t *testing.T) {
		rows, err := store.ListHostActivities(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "alpha.example", rows[0].Host)
		assert.Equal(t, "beta.example", rows[1].Host)

		page, err := store.ListHostActivities(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "beta.example", page[0].Host)
	})
}

// =============================================================================
// Monthly Mart
// =============================================================================

func testAppendDailyHostMetrics(t *testing.T, store Store) {
	ctx := context.Background()
	jan31 := domain.MustParseDate("2024-01-31")
	feb1 := domain.MustParseDate("2024-02-01")
	feb2 := domain.MustParseDate("2024-02-02")
	feb3 := domain.MustParseDate("2024-02-03")
	feb4 := domain.MustParseDate("2024-02-04")

	t.Run("first day of a month creates single-element rows", func(t *testing.T) {
		require.NoError(t, store.AppendDailyHostMetrics(ctx, jan31, []HostDayStats{
			{Host: "alpha.example", Hits: 1, Visitors: 1},
		}))
		require.NoError(t, store.AppendDailyHostMetrics(ctx, feb1, []HostDayStats{
			{Host: "alpha.example", Hits: 5, Visitors: 3},
			{Host: "beta.example", Hits: 2, Visitors: 1},
		}))

		row, err := store.GetHostMonthlyActivity(ctx, "2024-02", "alpha.example")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, feb1, row.FirstDate)
		assert.Equal(t, []int64{5}, []int64(row.HitCounts))
		assert.Equal(t, []int64{3}, []int64(row.VisitorCounts))
	})

	t.Run("quiet hosts receive zeros", func(t *testing.T) {
		require.NoError(t, store.AppendDailyHostMetrics(ctx, feb2, []HostDayStats{
			{Host: "alpha.example", Hits: 7, Visitors: 4},
		}))

		row, err := store.GetHostMonthlyActivity(ctx, "2024-02", "beta.example")
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 0}, []int64(row.HitCounts))
		assert.Equal(t, []int64{1, 0}, []int64(row.VisitorCounts))
	})

	t.Run("a host first seen mid-month anchors at its first day", func(t *testing.T) {
		require.NoError(t, store.AppendDailyHostMetrics(ctx, feb3, []HostDayStats{
			{Host: "gamma.example", Hits: 9, Visitors: 9},
		}))

		row, err := store.GetHostMonthlyActivity(ctx, "2024-02", "gamma.example")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, feb3, row.FirstDate)
		assert.Equal(t, []int64{9}, []int64(row.HitCounts))

		row, err = store.GetHostMonthlyActivity(ctx, "2024-02", "alpha.example")
		require.NoError(t, err)
		assert.Equal(t, []int64{5, 7, 0}, []int64(row.HitCounts))
	})

	t.Run("a day without traffic appends zeros everywhere", func(t *testing.T) {
		require.NoError(t, store.AppendDailyHostMetrics(ctx, feb4, nil))

		row, err := store.GetHostMonthlyActivity(ctx, "2024-02", "alpha.example")
		require.NoError(t, err)
		assert.Equal(t, []int64{5, 7, 0, 0}, []int64(row.HitCounts))
		assert.Equal(t, []int64{3, 4, 0, 0}, []int64(row.VisitorCounts))
		assert.Equal(t, feb1, row.FirstDate)

		row, err = store.GetHostMonthlyActivity(ctx, "2024-02", "gamma.example")
		require.NoError(t, err)
		assert.Equal(t, []int64{9, 0}, []int64(row.HitCounts))
	})

	t.Run("other months stay untouched", func(t *testing.T) {
		row, err := store.GetHostMonthlyActivity(ctx, "2024-01", "alpha.example")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, jan31, row.FirstDate)
		assert.Equal(t, []int64{1}, []int64(row.HitCounts))
	})

	t.Run("absent row reads as nil", func(t *testing.T) {
		row, err := store.GetHostMonthlyActivity(ctx, "2024-02", "ghost.example")
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("listing pages by month and host", func(t *testing.T) {
		rows, err := store.ListHostMonthlyActivities(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "2024-01", rows[0].Month)
		assert.Equal(t, "alpha.example", rows[1].Host)
		assert.Equal(t, "beta.example", rows[2].Host)
		assert.Equal(t, "gamma.example", rows[3].Host)

		page, err := store.ListHostMonthlyActivities(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "alpha.example", page[0].Host)
		assert.Equal(t, "2024-02", page[0].Month)
		assert.Equal(t, "beta.example", page[1].Host)
	})
}

// =============================================================================
// Works Feed and Aggregates
// =============================================================================

func testCreatorWorksAggregates(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("empty feed has no year range", func(t *testing.T) {
		yearRange, err := store.GetWorkYearRange(ctx)
		require.NoError(t, err)
		assert.Nil(t, yearRange)

		aggregates, err := store.GetAllCreatorPeriodAggregates(ctx)
		require.NoError(t, err)
		assert.Empty(t, aggregates)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		require.NoError(t, store.CreateCreatorWorks(ctx, nil))
	})

	works := []schema.CreatorWork{
		buildTestWork("c1", "w1", 2020, 9.0, 100),
		buildTestWork("c1", "w2", 2020, 8.5, 50),
		buildTestWork("c1", "w3", 2021, 6.0, 10),
		buildTestWork("c2", "w1", 2020, 4.0, 5),
	}

	t.Run("aggregates average per creator and year", func(t *testing.T) {
		require.NoError(t, store.CreateCreatorWorks(ctx, works))

		aggregates, err := store.GetCreatorPeriodAggregates(ctx, 2020)
		require.NoError(t, err)
		require.Len(t, aggregates, 2)
		assert.Equal(t, "c1", aggregates[0].CreatorID)
		assert.Equal(t, 2020, aggregates[0].Year)
		assert.InDelta(t, 8.75, aggregates[0].AvgRating, 0.001)
		assert.Equal(t, int64(150), aggregates[0].TotalVotes)
		assert.Equal(t, int64(2), aggregates[0].WorkCount)
		assert.Equal(t, "c2", aggregates[1].CreatorID)
		assert.InDelta(t, 4.0, aggregates[1].AvgRating, 0.001)
	})

	t.Run("all-years aggregates cover the whole feed", func(t *testing.T) {
		aggregates, err := store.GetAllCreatorPeriodAggregates(ctx)
		require.NoError(t, err)
		require.Len(t, aggregates, 3)
		assert.Equal(t, 2020, aggregates[0].Year)
		assert.Equal(t, 2021, aggregates[1].Year)
		assert.Equal(t, "c2", aggregates[2].CreatorID)
	})

	t.Run("year range spans the feed", func(t *testing.T) {
		yearRange, err := store.GetWorkYearRange(ctx)
		require.NoError(t, err)
		require.NotNil(t, yearRange)
		assert.Equal(t, 2020, yearRange.Min)
		assert.Equal(t, 2021, yearRange.Max)
	})

	t.Run("re-ingesting a work updates it in place", func(t *testing.T) {
		require.NoError(t, store.CreateCreatorWorks(ctx, []schema.CreatorWork{
			buildTestWork("c1", "w2", 2020, 9.5, 80),
		}))

		aggregates, err := store.GetCreatorPeriodAggregates(ctx, 2020)
		require.NoError(t, err)
		require.Len(t, aggregates, 2)
		assert.InDelta(t, 9.25, aggregates[0].AvgRating, 0.001)
		assert.Equal(t, int64(180), aggregates[0].TotalVotes)
		assert.Equal(t, int64(2), aggregates[0].WorkCount)
	})
}

// =============================================================================
// Quality History
// =============================================================================

func testApplyQualityTransitions(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("first year inserts open current rows", func(t *testing.T) {
		require.NoError(t, store.ApplyQualityTransitions(ctx, 2020, []domain.QualityTransition{
			{CreatorID: "c1", Class: domain.QualityStar, Active: true, Kind: domain.TransitionNew},
			{CreatorID: "c2", Class: domain.QualityGood, Active: true, Kind: domain.TransitionNew},
		}, false))

		current, err := store.GetCurrentCreatorHistories(ctx)
		require.NoError(t, err)
		require.Len(t, current, 2)
		for _, row := range current {
			assert.Equal(t, 2020, row.StartYear)
			assert.Nil(t, row.EndYear)
			assert.True(t, row.IsCurrent)
		}
		assert.Equal(t, domain.QualityStar, current[0].QualityClass)
		assert.Equal(t, domain.QualityGood, current[1].QualityClass)
	})

	t.Run("changed creator closes its row and opens a new one", func(t *testing.T) {
		require.NoError(t, store.ApplyQualityTransitions(ctx, 2022, []domain.QualityTransition{
			{CreatorID: "c1", Class: domain.QualityGood, Active: true, Kind: domain.TransitionChanged},
			{CreatorID: "c2", Class: domain.QualityGood, Active: true, Kind: domain.TransitionUnchanged},
			{CreatorID: "c3", Class: domain.QualityBad, Active: true, Kind: domain.TransitionNew},
		}, false))

		chain, err := store.GetCreatorHistories(ctx, "c1")
		require.NoError(t, err)
		require.Len(t, chain, 2)
		assert.Equal(t, domain.QualityStar, chain[0].QualityClass)
		assert.Equal(t, 2020, chain[0].StartYear)
		require.NotNil(t, chain[0].EndYear)
		assert.Equal(t, 2022, *chain[0].EndYear)
		assert.False(t, chain[0].IsCurrent)
		assert.Equal(t, domain.QualityGood, chain[1].QualityClass)
		assert.Equal(t, 2022, chain[1].StartYear)
		assert.Nil(t, chain[1].EndYear)
		assert.True(t, chain[1].IsCurrent)

		chain, err = store.GetCreatorHistories(ctx, "c2")
		require.NoError(t, err)
		require.Len(t, chain, 1)
		assert.Nil(t, chain[0].EndYear)

		chain, err = store.GetCreatorHistories(ctx, "c3")
		require.NoError(t, err)
		require.Len(t, chain, 1)
		assert.Equal(t, 2022, chain[0].StartYear)
	})

	t.Run("same-year revision rewrites the current row in place", func(t *testing.T) {
		require.NoError(t, store.ApplyQualityTransitions(ctx, 2022, []domain.QualityTransition{
			{CreatorID: "c1", Class: domain.QualityStar, Active: true, Kind: domain.TransitionRevised},
		}, false))

		chain, err := store.GetCreatorHistories(ctx, "c1")
		require.NoError(t, err)
		require.Len(t, chain, 2)
		assert.Equal(t, domain.QualityStar, chain[1].QualityClass)
		assert.Equal(t, 2022, chain[1].StartYear)
		assert.Nil(t, chain[1].EndYear)
		assert.True(t, chain[1].IsCurrent)
	})

	t.Run("double applying a changed year fails loudly", func(t *testing.T) {
		err := store.ApplyQualityTransitions(ctx, 2022, []domain.QualityTransition{
			{CreatorID: "c1", Class: domain.QualityGood, Active: true, Kind: domain.TransitionChanged},
		}, false)
		require.Error(t, err)

		// The failed transaction must leave the chain intact
		chain, err := store.GetCreatorHistories(ctx, "c1")
		require.NoError(t, err)
		require.Len(t, chain, 2)
		assert.Equal(t, domain.QualityStar, chain[1].QualityClass)
		assert.Nil(t, chain[1].EndYear)
		assert.True(t, chain[1].IsCurrent)
	})

	t.Run("bounded end stamps the next year", func(t *testing.T) {
		require.NoError(t, store.ApplyQualityTransitions(ctx, 2023, []domain.QualityTransition{
			{CreatorID: "c1", Class: domain.QualityAverage, Active: true, Kind: domain.TransitionChanged},
			{CreatorID: "c2", Class: domain.QualityGood, Active: true, Kind: domain.TransitionUnchanged},
			{CreatorID: "c3", Class: domain.QualityBad, Active: true, Kind: domain.TransitionUnchanged},
		}, true))

		chain, err := store.GetCreatorHistories(ctx, "c1")
		require.NoError(t, err)
		require.Len(t, chain, 3)
		require.NotNil(t, chain[1].EndYear)
		assert.Equal(t, 2023, *chain[1].EndYear)
		assert.False(t, chain[1].IsCurrent)
		assert.Equal(t, domain.QualityAverage, chain[2].QualityClass)
		assert.Equal(t, 2023, chain[2].StartYear)
		require.NotNil(t, chain[2].EndYear)
		assert.Equal(t, 2024, *chain[2].EndYear)
		assert.True(t, chain[2].IsCurrent)

		// Unchanged creators only advance their bounded end
		chain, err = store.GetCreatorHistories(ctx, "c2")
		require.NoError(t, err)
		require.Len(t, chain, 1)
		require.NotNil(t, chain[0].EndYear)
		assert.Equal(t, 2024, *chain[0].EndYear)
		assert.True(t, chain[0].IsCurrent)
	})

	t.Run("empty transitions are a no-op", func(t *testing.T) {
		require.NoError(t, store.ApplyQualityTransitions(ctx, 2024, nil, false))
	})

	t.Run("creator listings page in order", func(t *testing.T) {
		ids, err := store.ListCreatorIDsWithHistory(ctx, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"c1", "c2"}, ids)

		ids, err = store.ListCreatorIDsWithHistory(ctx, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"c3"}, ids)

		rows, err := store.GetCreatorHistoriesByIDs(ctx, []string{"c3", "c1"})
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "c1", rows[0].CreatorID)
		assert.Equal(t, "c3", rows[3].CreatorID)

		rows, err = store.GetCreatorHistoriesByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func testReplaceCreatorHistories(t *testing.T, store Store) {
	ctx := context.Background()

	rows := []schema.CreatorQualityHistory{
		{CreatorID: "c1", QualityClass: domain.QualityStar, IsActive: true, StartYear: 2019, EndYear: intPtr(2021), IsCurrent: false},
		{CreatorID: "c1", QualityClass: domain.QualityGood, IsActive: true, StartYear: 2021, IsCurrent: true},
		{CreatorID: "c2", QualityClass: domain.QualityBad, IsActive: true, StartYear: 2020, IsCurrent: true},
	}

	t.Run("replace fills an empty table", func(t *testing.T) {
		require.NoError(t, store.ReplaceCreatorHistories(ctx, rows))

		chain, err := store.GetCreatorHistories(ctx, "c1")
		require.NoError(t, err)
		require.Len(t, chain, 2)
		assert.Equal(t, 2019, chain[0].StartYear)
		require.NotNil(t, chain[0].EndYear)
		assert.Equal(t, 2021, *chain[0].EndYear)
	})

	t.Run("replace discards previous rows wholesale", func(t *testing.T) {
		require.NoError(t, store.ReplaceCreatorHistories(ctx, []schema.CreatorQualityHistory{
			{CreatorID: "c9", QualityClass: domain.QualityAverage, IsActive: false, StartYear: 2018, IsCurrent: true},
		}))

		chain, err := store.GetCreatorHistories(ctx, "c1")
		require.NoError(t, err)
		assert.Empty(t, chain)

		current, err := store.GetCurrentCreatorHistories(ctx)
		require.NoError(t, err)
		require.Len(t, current, 1)
		assert.Equal(t, "c9", current[0].CreatorID)
	})

	t.Run("replace with nothing empties the table", func(t *testing.T) {
		require.NoError(t, store.ReplaceCreatorHistories(ctx, nil))

		current, err := store.GetCurrentCreatorHistories(ctx)
		require.NoError(t, err)
		assert.Empty(t, current)
	})
}

// =============================================================================
// Job Run Ledger
// =============================================================================

func testJobRunLedger(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("no completed runs yet", func(t *testing.T) {
		run, err := store.GetLastCompletedRun(ctx, domain.JobHostMonthly)
		require.NoError(t, err)
		assert.Nil(t, run)

		done, err := store.HasCompletedRun(ctx, domain.JobHostMonthly, "2024-02-01")
		require.NoError(t, err)
		assert.False(t, done)
	})

	t.Run("finishing a run stores status and detail", func(t *testing.T) {
		run := buildTestRun("00000000-0000-0000-0000-000000000001", domain.JobHostMonthly, "2024-02-01")
		require.NoError(t, store.CreateJobRun(ctx, run))
		require.NoError(t, store.FinishJobRun(ctx, run.ID, domain.JobRunCompleted, map[string]any{"hosts": 3}))

		last, err := store.GetLastCompletedRun(ctx, domain.JobHostMonthly)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.Equal(t, run.ID, last.ID)
		assert.Equal(t, "2024-02-01", last.PartitionKey)
		assert.Equal(t, domain.JobRunCompleted, last.Status)
		require.NotNil(t, last.FinishedAt)

		var detail map[string]any
		require.NoError(t, json.Unmarshal(last.Detail, &detail))
		assert.Equal(t, float64(3), detail["hosts"])
	})

	t.Run("running and failed runs don't count", func(t *testing.T) {
		run := buildTestRun("00000000-0000-0000-0000-000000000002", domain.JobHostMonthly, "2024-02-02")
		require.NoError(t, store.CreateJobRun(ctx, run))

		last, err := store.GetLastCompletedRun(ctx, domain.JobHostMonthly)
		require.NoError(t, err)
		assert.Equal(t, "2024-02-01", last.PartitionKey)

		require.NoError(t, store.FinishJobRun(ctx, run.ID, domain.JobRunFailed, map[string]any{"error": "boom"}))

		last, err = store.GetLastCompletedRun(ctx, domain.JobHostMonthly)
		require.NoError(t, err)
		assert.Equal(t, "2024-02-01", last.PartitionKey)

		done, err := store.HasCompletedRun(ctx, domain.JobHostMonthly, "2024-02-02")
		require.NoError(t, err)
		assert.False(t, done)

		done, err = store.HasCompletedRun(ctx, domain.JobHostMonthly, "2024-02-01")
		require.NoError(t, err)
		assert.True(t, done)
	})

	t.Run("newest completed partition wins", func(t *testing.T) {
		run := buildTestRun("00000000-0000-0000-0000-000000000003", domain.JobHostMonthly, "2024-02-02")
		require.NoError(t, store.CreateJobRun(ctx, run))
		require.NoError(t, store.FinishJobRun(ctx, run.ID, domain.JobRunCompleted, nil))

		run = buildTestRun("00000000-0000-0000-0000-000000000004", domain.JobHostMonthly, "2024-02-10")
		require.NoError(t, store.CreateJobRun(ctx, run))
		require.NoError(t, store.FinishJobRun(ctx, run.ID, domain.JobRunCompleted, nil))

		last, err := store.GetLastCompletedRun(ctx, domain.JobHostMonthly)
		require.NoError(t, err)
		assert.Equal(t, "2024-02-10", last.PartitionKey)
	})

	t.Run("ledger streams are independent per job", func(t *testing.T) {
		run := buildTestRun("00000000-0000-0000-0000-000000000005", domain.JobDeviceActivity, "2024-03-05")
		require.NoError(t, store.CreateJobRun(ctx, run))
		require.NoError(t, store.FinishJobRun(ctx, run.ID, domain.JobRunCompleted, nil))

		last, err := store.GetLastCompletedRun(ctx, domain.JobHostMonthly)
		require.NoError(t, err)
		assert.Equal(t, "2024-02-10", last.PartitionKey)
	})
}

// =============================================================================
// Audit Findings
// =============================================================================

func testAuditFindings(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("empty batch is a no-op", func(t *testing.T) {
		require.NoError(t, store.CreateAuditFindings(ctx, nil))
	})

	t.Run("findings come back per run in discovery order", func(t *testing.T) {
		// Inserted out of order on purpose; ULID ids define the ordering
		findings := []schema.AuditFinding{
			{ID: "01HQ3ZDJGW000000000000000B", RunID: "run-a", Mart: "host_activity", CheckName: "dates_strictly_ascending", EntityKey: "alpha.example", Detail: "dates out of order"},
			{ID: "01HQ3ZDJGW000000000000000A", RunID: "run-a", Mart: "device_activity", CheckName: "dates_not_empty", EntityKey: "u1/Chrome", Detail: "empty list"},
			{ID: "01HQ3ZDJGW000000000000000C", RunID: "run-b", Mart: "creator_quality_history", CheckName: "one_current_row", EntityKey: "c1", Detail: "2 current rows"},
		}
		require.NoError(t, store.CreateAuditFindings(ctx, findings))

		got, err := store.GetAuditFindings(ctx, "run-a")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "device_activity", got[0].Mart)
		assert.Equal(t, "host_activity", got[1].Mart)
		assert.Equal(t, "dates out of order", got[1].Detail)
	})

	t.Run("unknown run has no findings", func(t *testing.T) {
		got, err := store.GetAuditFindings(ctx, "run-z")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

// =============================================================================
// Schema Introspection and Dedup
// =============================================================================

func testSchemaIntrospection(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("table existence", func(t *testing.T) {
		exists, err := store.TableExists(ctx, "web_events")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = store.TableExists(ctx, "no_such_table")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("all columns present", func(t *testing.T) {
		missing, err := store.MissingColumns(ctx, "web_events_raw", []string{"user_id", "collected_at", "batch_seq"})
		require.NoError(t, err)
		assert.Empty(t, missing)
	})

	t.Run("missing columns keep the requested order", func(t *testing.T) {
		missing, err := store.MissingColumns(ctx, "web_events_raw", []string{"user_id", "flux_capacitor", "batch_seq", "warp_core"})
		require.NoError(t, err)
		assert.Equal(t, []string{"flux_capacitor", "warp_core"}, missing)
	})

	t.Run("absent table misses every column", func(t *testing.T) {
		missing, err := store.MissingColumns(ctx, "no_such_table", []string{"user_id"})
		require.NoError(t, err)
		assert.Equal(t, []string{"user_id"}, missing)
	})
}

func testDedupMaterialization(t *testing.T, store Store) {
	ctx := context.Background()
	db := rawDB(t, store)
	src := buildEventsDedupSource()

	eventTime := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	c10 := time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)
	c11 := time.Date(2024, 2, 5, 11, 0, 0, 0, time.UTC)

	seedRaw := func(userID, referrer string, collectedAt any, batchSeq int64) {
		err := db.Exec(
			`INSERT INTO web_events_raw (user_id, browser_type, host, url, referrer, event_time, collected_at, batch_seq)
			 VALUES (?, 'Chrome', 'alpha.example', '/x', ?, ?, ?, ?)`,
			userID, referrer, eventTime, collectedAt, batchSeq,
		).Error
		require.NoError(t, err)
	}

	// u1: recency decides; u2: recency ties, batch_seq decides;
	// u4: a null recency loses to any set one
	seedRaw("u1", "stale", c10, 1)
	seedRaw("u1", "fresh", c11, 1)
	seedRaw("u2", "seq1", c10, 1)
	seedRaw("u2", "seq2", c10, 2)
	seedRaw("u4", "nullrec", nil, 7)
	seedRaw("u4", "hasrec", c10, 1)

	winner := func(userID string) string {
		var referrer string
		err := db.Raw(`SELECT referrer FROM web_events_dedup WHERE user_id = ?`, userID).Scan(&referrer).Error
		require.NoError(t, err)
		return referrer
	}

	t.Run("clean source has no ambiguous keys", func(t *testing.T) {
		count, err := store.CountAmbiguousKeys(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("materialization picks deterministic winners", func(t *testing.T) {
		rows, err := store.MaterializeDedup(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, int64(3), rows)

		exists, err := store.TableExists(ctx, src.TargetTable)
		require.NoError(t, err)
		assert.True(t, exists)

		assert.Equal(t, "fresh", winner("u1"))
		assert.Equal(t, "seq2", winner("u2"))
		assert.Equal(t, "hasrec", winner("u4"))

		// The source is read, never touched
		var sourceRows int64
		require.NoError(t, db.Raw(`SELECT COUNT(*) FROM web_events_raw`).Scan(&sourceRows).Error)
		assert.Equal(t, int64(6), sourceRows)
	})

	t.Run("existing target is refused", func(t *testing.T) {
		_, err := store.MaterializeDedup(ctx, src)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrTargetTableExists))
	})

	t.Run("replace rebuilds the target", func(t *testing.T) {
		c12 := time.Date(2024, 2, 5, 12, 0, 0, 0, time.UTC)
		seedRaw("u1", "freshest", c12, 1)

		replaceSrc := src
		replaceSrc.Replace = true
		rows, err := store.MaterializeDedup(ctx, replaceSrc)
		require.NoError(t, err)
		assert.Equal(t, int64(3), rows)
		assert.Equal(t, "freshest", winner("u1"))
	})

	t.Run("fully tied rows are ambiguous", func(t *testing.T) {
		seedRaw("u3", "twinA", c10, 5)
		seedRaw("u3", "twinB", c10, 5)
		// A tie below the winning position is harmless
		seedRaw("u5", "lone", c11, 1)
		seedRaw("u5", "tieA", c10, 3)
		seedRaw("u5", "tieB", c10, 3)

		count, err := store.CountAmbiguousKeys(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

// =============================================================================
// Suite Runner
// =============================================================================

// RunStoreTests runs all store tests against the given implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"CreateWebEventsAndDateRange", testCreateWebEventsAndDateRange},
		{"DeviceActivityForDate", testDeviceActivityForDate},
		{"HostStatsForDate", testHostStatsForDate},
		{"MergeDeviceActivityDates", testMergeDeviceActivityDates},
		{"MergeHostActivityDates", testMergeHostActivityDates},
		{"AppendDailyHostMetrics", testAppendDailyHostMetrics},
		{"CreatorWorksAggregates", testCreatorWorksAggregates},
		{"ApplyQualityTransitions", testApplyQualityTransitions},
		{"ReplaceCreatorHistories", testReplaceCreatorHistories},
		{"JobRunLedger", testJobRunLedger},
		{"AuditFindings", testAuditFindings},
		{"SchemaIntrospection", testSchemaIntrospection},
		{"DedupMaterialization", testDedupMaterialization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
