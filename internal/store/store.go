package store

import (
	"context"

	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/registry"
	"github.com/basetide/activity-marts/internal/store/schema"
)

// DeviceDayActivity is one (user, browser) pair observed on a processing day
type DeviceDayActivity struct {
	UserID      string `gorm:"column:user_id"`
	BrowserType string `gorm:"column:browser_type"`
}

// HostDayStats is one host's single-day traffic rollup
type HostDayStats struct {
	Host     string `gorm:"column:host"`
	Hits     int64  `gorm:"column:hits"`
	Visitors int64  `gorm:"column:visitors"`
}

// PeriodAggregate is one creator's yearly rollup of the works feed
type PeriodAggregate struct {
	CreatorID  string  `gorm:"column:creator_id"`
	Year       int     `gorm:"column:year"`
	AvgRating  float64 `gorm:"column:avg_rating"`
	TotalVotes int64   `gorm:"column:total_votes"`
	WorkCount  int64   `gorm:"column:work_count"`
}

// DateRange is the inclusive [Min, Max] day span of the event stream
type DateRange struct {
	Min domain.Date
	Max domain.Date
}

// YearRange is the inclusive [Min, Max] year span of the works feed
type YearRange struct {
	Min int
	Max int
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// CreateWebEvents inserts raw web events in batches
	CreateWebEvents(ctx context.Context, events []schema.WebEvent) error
	// CreateCreatorWorks upserts raw works-feed rows in batches, refreshing
	// rows whose (creator_id, work_id) arrived before
	CreateCreatorWorks(ctx context.Context, works []schema.CreatorWork) error
	// GetEventDateRange returns the day span covered by the event stream,
	// or nil when there are no events
	GetEventDateRange(ctx context.Context) (*DateRange, error)
	// GetDeviceActivityForDate returns the distinct (user, browser) pairs
	// observed on the given day
	GetDeviceActivityForDate(ctx context.Context, day domain.Date) ([]DeviceDayActivity, error)
	// GetHostStatsForDate returns per-host hits and distinct visitors for
	// the given day
	GetHostStatsForDate(ctx context.Context, day domain.Date) ([]HostDayStats, error)

	// MergeDeviceActivityDates merges the day into each device's cumulative
	// date list inside a single transaction
	MergeDeviceActivityDates(ctx context.Context, day domain.Date, devices []DeviceDayActivity) error
	// MergeHostActivityDates merges the day into each host's cumulative
	// date list inside a single transaction
	MergeHostActivityDates(ctx context.Context, day domain.Date, hosts []string) error
	// GetDeviceActivity retrieves one device's cumulative activity, nil if absent
	GetDeviceActivity(ctx context.Context, userID, browserType string) (*schema.DeviceActivity, error)
	// GetHostActivity retrieves one host's cumulative activity, nil if absent
	GetHostActivity(ctx context.Context, host string) (*schema.HostActivity, error)
	// ListDeviceActivities pages through the device activity mart
	ListDeviceActivities(ctx context.Context, offset, limit int) ([]schema.DeviceActivity, error)
	// ListHostActivities pages through the host activity mart
	ListHostActivities(ctx context.Context, offset, limit int) ([]schema.HostActivity, error)

	// AppendDailyHostMetrics appends the day's hit and visitor counts to
	// every (month, host) row of the day's month inside a single
	// transaction. Rows for hosts quiet on the day receive zeros; hosts
	// seen for the first time get fresh single-element rows. The caller
	// must have verified ordering via the job run ledger first.
	AppendDailyHostMetrics(ctx context.Context, day domain.Date, stats []HostDayStats) error
	// GetHostMonthlyActivity retrieves one (month, host) row, nil if absent
	GetHostMonthlyActivity(ctx context.Context, month, host string) (*schema.HostMonthlyActivity, error)
	// ListHostMonthlyActivities pages through the monthly activity mart
	ListHostMonthlyActivities(ctx context.Context, offset, limit int) ([]schema.HostMonthlyActivity, error)

	// GetCreatorPeriodAggregates computes the per-creator aggregates for one year
	GetCreatorPeriodAggregates(ctx context.Context, year int) ([]PeriodAggregate, error)
	// GetAllCreatorPeriodAggregates computes the per-creator aggregates for
	// every year in the works feed
	GetAllCreatorPeriodAggregates(ctx context.Context) ([]PeriodAggregate, error)
	// GetWorkYearRange returns the year span of the works feed, or nil when
	// the feed is empty
	GetWorkYearRange(ctx context.Context) (*YearRange, error)
	// GetCurrentCreatorHistories returns every creator's current history row
	GetCurrentCreatorHistories(ctx context.Context) ([]schema.CreatorQualityHistory, error)
	// GetCreatorHistories returns one creator's history rows ordered by start year
	GetCreatorHistories(ctx context.Context, creatorID string) ([]schema.CreatorQualityHistory, error)
	// GetCreatorHistoriesByIDs returns the history rows of the given creators
	GetCreatorHistoriesByIDs(ctx context.Context, creatorIDs []string) ([]schema.CreatorQualityHistory, error)
	// ListCreatorIDsWithHistory pages through the distinct creators present
	// in the history table
	ListCreatorIDsWithHistory(ctx context.Context, offset, limit int) ([]string, error)
	// ApplyQualityTransitions applies one year's classification transitions
	// inside a single transaction: changed creators get their current row
	// closed and a new open row inserted, new creators get a fresh open
	// row, and revised creators have their current row rewritten in place.
	// With boundedEnd the current rows carry year+1 instead of an open end,
	// and unchanged creators have their end bumped.
	ApplyQualityTransitions(ctx context.Context, year int, transitions []domain.QualityTransition, boundedEnd bool) error
	// ReplaceCreatorHistories atomically replaces the whole history table
	// with freshly built rows
	ReplaceCreatorHistories(ctx context.Context, rows []schema.CreatorQualityHistory) error

	// CreateJobRun records the start of a batch run
	CreateJobRun(ctx context.Context, run *schema.JobRun) error
	// FinishJobRun closes a run with its final status and detail counters
	FinishJobRun(ctx context.Context, runID string, status domain.JobRunStatus, detail map[string]any) error
	// GetLastCompletedRun returns the completed run with the highest
	// partition key for a job, nil if the job never completed
	GetLastCompletedRun(ctx context.Context, job domain.JobName) (*schema.JobRun, error)
	// HasCompletedRun reports whether a job already completed for a partition
	HasCompletedRun(ctx context.Context, job domain.JobName, partitionKey string) (bool, error)

	// CreateAuditFindings persists audit findings in batches
	CreateAuditFindings(ctx context.Context, findings []schema.AuditFinding) error
	// GetAuditFindings returns the findings recorded by one audit run,
	// in discovery order
	GetAuditFindings(ctx context.Context, runID string) ([]schema.AuditFinding, error)

	// TableExists reports whether a table exists in the current schema
	TableExists(ctx context.Context, table string) (bool, error)
	// MissingColumns returns the subset of columns absent from the table,
	// preserving the requested order
	MissingColumns(ctx context.Context, table string, columns []string) ([]string, error)
	// CountAmbiguousKeys counts key groups whose rows tie on recency and
	// tie-break, making the dedup winner non-deterministic
	CountAmbiguousKeys(ctx context.Context, src registry.DedupSource) (int64, error)
	// MaterializeDedup creates the target table holding one winning row per
	// key and returns the number of materialized rows
	MaterializeDedup(ctx context.Context, src registry.DedupSource) (int64, error)
}
