package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"github.com/basetide/activity-marts/internal/logger"

	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/registry"
	"github.com/basetide/activity-marts/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

func hasDBResolver(db *gorm.DB) bool {
	return db != nil && db.Callback().Query().Get("gorm:db_resolver") != nil
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConnectWithRetry opens a database connection with exponential backoff,
// for runners that start before the database accepts connections
func ConnectWithRetry(ctx context.Context, dsn string) (*gorm.DB, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 5 * time.Minute
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5 // Add jitter to prevent thundering herd

	var db *gorm.DB
	operation := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		return err
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Database connection failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError); err != nil {
		return nil, fmt.Errorf("failed to connect after %d attempts: %w", attemptCount+1, err)
	}
	return db, nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	// Set defaults if not provided
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize computes the optimal batch size for bulk inserts to avoid
// PostgreSQL's "extended protocol limited to 65535 parameters" error.
//
// PostgreSQL's extended protocol has a hard limit of 65535 parameters per query.
// When doing batch inserts with GORM, each record consumes multiple parameters
// (one per field being inserted), and ON CONFLICT clauses may add additional parameters.
//
// Parameters:
//   - totalRecords: total number of records to insert
//   - fieldsPerRecord: number of fields/parameters per record
//
// Returns the safe batch size that won't exceed the parameter limit.
//
// The function uses a total headroom to account for batch-level overhead:
//   - GORM-added timestamp fields (created_at, updated_at) across all records
//   - ON CONFLICT clause parameters (can be significant with multi-column conflicts)
//   - Query metadata and internal GORM bookkeeping
//
// Total headroom is more accurate than per-record overhead because some costs
// are fixed per batch, not scaled per record.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000 // Total parameter headroom for batch-level overhead

	// Reserve headroom from total available parameters
	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return totalRecords
	}

	return safeBatchSize
}

// CreateWebEvents inserts raw web events in batches
func (s *pgStore) CreateWebEvents(ctx context.Context, events []schema.WebEvent) error {
	if len(events) == 0 {
		return nil
	}

	// WebEvent has 6 data fields: user_id, browser_type, host, url, referrer, event_time
	batchSize := calculateSafeBatchSize(len(events), 6)

	err := s.db.WithContext(ctx).CreateInBatches(events, batchSize).Error
	if err != nil {
		return fmt.Errorf("failed to create web events: %w", err)
	}

	return nil
}

// CreateCreatorWorks upserts works-feed rows in batches, refreshing the
// mutable feed columns when a (creator_id, work_id) row arrives again
func (s *pgStore) CreateCreatorWorks(ctx context.Context, works []schema.CreatorWork) error {
	if len(works) == 0 {
		return nil
	}

	// CreatorWork has 6 data fields: creator_id, work_id, title, year, rating, votes
	batchSize := calculateSafeBatchSize(len(works), 6)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "creator_id"}, {Name: "work_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "year", "rating", "votes", "ingested_at"}),
	}).CreateInBatches(works, batchSize).Error
	if err != nil {
		return fmt.Errorf("failed to create creator works: %w", err)
	}

	return nil
}

// GetEventDateRange returns the day span covered by the event stream
func (s *pgStore) GetEventDateRange(ctx context.Context) (*DateRange, error) {
	var bounds struct {
		MinTime *time.Time `gorm:"column:min_time"`
		MaxTime *time.Time `gorm:"column:max_time"`
	}

	err := s.db.WithContext(ctx).
		Model(&schema.WebEvent{}).
		Select("MIN(event_time) AS min_time, MAX(event_time) AS max_time").
		Scan(&bounds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get event date range: %w", err)
	}

	if bounds.MinTime == nil || bounds.MaxTime == nil {
		return nil, nil
	}

	return &DateRange{
		Min: domain.DateOf(*bounds.MinTime),
		Max: domain.DateOf(*bounds.MaxTime),
	}, nil
}

// GetDeviceActivityForDate returns the distinct (user, browser) pairs observed on the given day
func (s *pgStore) GetDeviceActivityForDate(ctx context.Context, day domain.Date) ([]DeviceDayActivity, error) {
	var devices []DeviceDayActivity
	err := s.db.WithContext(ctx).
		Model(&schema.WebEvent{}).
		Select("DISTINCT user_id, browser_type").
		Where("event_time >= ? AND event_time < ?", day.Time(), day.Next().Time()).
		Order("user_id, browser_type").
		Scan(&devices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get device activity for date: %w", err)
	}

	return devices, nil
}

// GetHostStatsForDate returns per-host hits and distinct visitors for the given day
func (s *pgStore) GetHostStatsForDate(ctx context.Context, day domain.Date) ([]HostDayStats, error) {
	var stats []HostDayStats
	err := s.db.WithContext(ctx).
		Model(&schema.WebEvent{}).
		Select("host, COUNT(*) AS hits, COUNT(DISTINCT user_id) AS visitors").
		Where("event_time >= ? AND event_time < ?", day.Time(), day.Next().Time()).
		Group("host").
		Order("host").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get host stats for date: %w", err)
	}

	return stats, nil
}

// MergeDeviceActivityDates merges the day into each device's cumulative date list
func (s *pgStore) MergeDeviceActivityDates(ctx context.Context, day domain.Date, devices []DeviceDayActivity) error {
	if len(devices) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userIDs := make([]string, 0, len(devices))
		seen := make(map[string]bool, len(devices))
		for _, d := range devices {
			if !seen[d.UserID] {
				seen[d.UserID] = true
				userIDs = append(userIDs, d.UserID)
			}
		}

		var existing []schema.DeviceActivity
		if err := tx.Where("user_id IN ?", userIDs).Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to get existing device activity: %w", err)
		}

		// user_id IN over-fetches other browsers of the same users; key the
		// lookup on the full composite
		current := make(map[string]schema.DeviceActivity, len(existing))
		for _, row := range existing {
			current[row.UserID+"\x00"+row.BrowserType] = row
		}

		now := time.Now()
		rows := make([]schema.DeviceActivity, 0, len(devices))
		for _, d := range devices {
			var dates []domain.Date
			if row, ok := current[d.UserID+"\x00"+d.BrowserType]; ok {
				dates = row.ActivityDates
			}
			merged := domain.MergeDates(dates, day)
			rows = append(rows, schema.DeviceActivity{
				UserID:           d.UserID,
				BrowserType:      d.BrowserType,
				ActivityDates:    datatypes.NewJSONSlice(merged),
				ActivityDateInts: datatypes.NewJSONSlice(domain.DateInts(merged)),
				UpdatedAt:        now,
			})
		}

		// DeviceActivity has 4 data fields: user_id, browser_type, activity_dates, activity_date_ints
		batchSize := calculateSafeBatchSize(len(rows), 4)

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "browser_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"activity_dates", "activity_date_ints", "updated_at"}),
		}).CreateInBatches(rows, batchSize).Error; err != nil {
			return fmt.Errorf("failed to upsert device activity: %w", err)
		}

		return nil
	})
}

// MergeHostActivityDates merges the day into each host's cumulative date list
func (s *pgStore) MergeHostActivityDates(ctx context.Context, day domain.Date, hosts []string) error {
	if len(hosts) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []schema.HostActivity
		if err := tx.Where("host IN ?", hosts).Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to get existing host activity: %w", err)
		}

		current := make(map[string]schema.HostActivity, len(existing))
		for _, row := range existing {
			current[row.Host] = row
		}

		now := time.Now()
		rows := make([]schema.HostActivity, 0, len(hosts))
		for _, host := range hosts {
			var dates []domain.Date
			if row, ok := current[host]; ok {
				dates = row.ActivityDates
			}
			merged := domain.MergeDates(dates, day)
			rows = append(rows, schema.HostActivity{
				Host:             host,
				ActivityDates:    datatypes.NewJSONSlice(merged),
				ActivityDateInts: datatypes.NewJSONSlice(domain.DateInts(merged)),
				UpdatedAt:        now,
			})
		}

		// HostActivity has 3 data fields: host, activity_dates, activity_date_ints
		batchSize := calculateSafeBatchSize(len(rows), 3)

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "host"}},
			DoUpdates: clause.AssignmentColumns([]string{"activity_dates", "activity_date_ints", "updated_at"}),
		}).CreateInBatches(rows, batchSize).Error; err != nil {
			return fmt.Errorf("failed to upsert host activity: %w", err)
		}

		return nil
	})
}

// GetDeviceActivity retrieves one device's cumulative activity
func (s *pgStore) GetDeviceActivity(ctx context.Context, userID, browserType string) (*schema.DeviceActivity, error) {
	var activity schema.DeviceActivity

	query := func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Where("user_id = ? AND browser_type = ?", userID, browserType).
			First(&activity).Error
	}

	err := query(s.db)
	if err == nil {
		return &activity, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get device activity: %w", err)
	}
	if !hasDBResolver(s.db) {
		return nil, nil
	}

	// Replica can lag behind primary; retry on primary before returning nil.
	err = query(s.db.Clauses(dbresolver.Write))
	if err == nil {
		return &activity, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get device activity: %w", err)
}

// GetHostActivity retrieves one host's cumulative activity
func (s *pgStore) GetHostActivity(ctx context.Context, host string) (*schema.HostActivity, error) {
	var activity schema.HostActivity

	query := func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Where("host = ?", host).
			First(&activity).Error
	}

	err := query(s.db)
	if err == nil {
		return &activity, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get host activity: %w", err)
	}
	if !hasDBResolver(s.db) {
		return nil, nil
	}

	// Replica can lag behind primary; retry on primary before returning nil.
	err = query(s.db.Clauses(dbresolver.Write))
	if err == nil {
		return &activity, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get host activity: %w", err)
}

// ListDeviceActivities pages through the device activity mart
func (s *pgStore) ListDeviceActivities(ctx context.Context, offset, limit int) ([]schema.DeviceActivity, error) {
	var activities []schema.DeviceActivity
	err := s.db.WithContext(ctx).
		Order("user_id, browser_type").
		Offset(offset).
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list device activities: %w", err)
	}

	return activities, nil
}

// ListHostActivities pages through the host activity mart
func (s *pgStore) ListHostActivities(ctx context.Context, offset, limit int) ([]schema.HostActivity, error) {
	var activities []schema.HostActivity
	err := s.db.WithContext(ctx).
		Order("host").
		Offset(offset).
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list host activities: %w", err)
	}

	return activities, nil
}

// AppendDailyHostMetrics appends the day's counts to every (month, host) row
// of the day's month in a single transaction. Every existing row of the month
// grows by exactly one element per array, zeros for hosts without traffic, so
// array position i stays the day first_date + i.
func (s *pgStore) AppendDailyHostMetrics(ctx context.Context, day domain.Date, stats []HostDayStats) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		month := day.MonthKey()

		var existing []schema.HostMonthlyActivity
		if err := tx.Where("month = ?", month).Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to get monthly activity: %w", err)
		}

		statsByHost := make(map[string]HostDayStats, len(stats))
		for _, st := range stats {
			statsByHost[st.Host] = st
		}

		now := time.Now()
		rows := make([]schema.HostMonthlyActivity, 0, len(existing)+len(stats))
		for _, row := range existing {
			var hits, visitors int64
			if st, ok := statsByHost[row.Host]; ok {
				hits, visitors = st.Hits, st.Visitors
				delete(statsByHost, row.Host)
			}
			rows = append(rows, schema.HostMonthlyActivity{
				Month:         row.Month,
				Host:          row.Host,
				FirstDate:     row.FirstDate,
				HitCounts:     datatypes.NewJSONSlice(append(row.HitCounts, hits)),
				VisitorCounts: datatypes.NewJSONSlice(append(row.VisitorCounts, visitors)),
				UpdatedAt:     now,
			})
		}

		// Hosts first seen mid-month start their arrays at the current day
		for _, st := range stats {
			if _, ok := statsByHost[st.Host]; !ok {
				continue
			}
			rows = append(rows, schema.HostMonthlyActivity{
				Month:         month,
				Host:          st.Host,
				FirstDate:     day,
				HitCounts:     datatypes.NewJSONSlice([]int64{st.Hits}),
				VisitorCounts: datatypes.NewJSONSlice([]int64{st.Visitors}),
				UpdatedAt:     now,
			})
		}

		if len(rows) == 0 {
			return nil
		}

		// HostMonthlyActivity has 5 data fields: month, host, first_date, hit_counts, visitor_counts
		batchSize := calculateSafeBatchSize(len(rows), 5)

		// first_date is fixed at insert and never part of the update set
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "month"}, {Name: "host"}},
			DoUpdates: clause.AssignmentColumns([]string{"hit_counts", "visitor_counts", "updated_at"}),
		}).CreateInBatches(rows, batchSize).Error; err != nil {
			return fmt.Errorf("failed to upsert monthly activity: %w", err)
		}

		return nil
	})
}

// GetHostMonthlyActivity retrieves one (month, host) row of the monthly mart
func (s *pgStore) GetHostMonthlyActivity(ctx context.Context, month, host string) (*schema.HostMonthlyActivity, error) {
	var activity schema.HostMonthlyActivity

	query := func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Where("month = ? AND host = ?", month, host).
			First(&activity).Error
	}

	err := query(s.db)
	if err == nil {
		return &activity, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get monthly activity: %w", err)
	}
	if !hasDBResolver(s.db) {
		return nil, nil
	}

	// Replica can lag behind primary; retry on primary before returning nil.
	err = query(s.db.Clauses(dbresolver.Write))
	if err == nil {
		return &activity, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get monthly activity: %w", err)
}

// ListHostMonthlyActivities pages through the monthly activity mart
func (s *pgStore) ListHostMonthlyActivities(ctx context.Context, offset, limit int) ([]schema.HostMonthlyActivity, error) {
	var activities []schema.HostMonthlyActivity
	err := s.db.WithContext(ctx).
		Order("month, host").
		Offset(offset).
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly activities: %w", err)
	}

	return activities, nil
}

// GetCreatorPeriodAggregates computes the per-creator aggregates for one year
func (s *pgStore) GetCreatorPeriodAggregates(ctx context.Context, year int) ([]PeriodAggregate, error) {
	var aggregates []PeriodAggregate
	err := s.db.WithContext(ctx).
		Model(&schema.CreatorWork{}).
		Select("creator_id, year, AVG(rating) AS avg_rating, SUM(votes) AS total_votes, COUNT(*) AS work_count").
		Where("year = ?", year).
		Group("creator_id, year").
		Order("creator_id").
		Scan(&aggregates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get creator period aggregates: %w", err)
	}

	return aggregates, nil
}

// GetAllCreatorPeriodAggregates computes the per-creator aggregates for every year in the feed
func (s *pgStore) GetAllCreatorPeriodAggregates(ctx context.Context) ([]PeriodAggregate, error) {
	var aggregates []PeriodAggregate
	err := s.db.WithContext(ctx).
		Model(&schema.CreatorWork{}).
		Select("creator_id, year, AVG(rating) AS avg_rating, SUM(votes) AS total_votes, COUNT(*) AS work_count").
		Group("creator_id, year").
		Order("creator_id, year").
		Scan(&aggregates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get creator period aggregates: %w", err)
	}

	return aggregates, nil
}

// GetWorkYearRange returns the year span of the works feed
func (s *pgStore) GetWorkYearRange(ctx context.Context) (*YearRange, error) {
	var bounds struct {
		MinYear *int `gorm:"column:min_year"`
		MaxYear *int `gorm:"column:max_year"`
	}

	err := s.db.WithContext(ctx).
		Model(&schema.CreatorWork{}).
		Select("MIN(year) AS min_year, MAX(year) AS max_year").
		Scan(&bounds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get work year range: %w", err)
	}

	if bounds.MinYear == nil || bounds.MaxYear == nil {
		return nil, nil
	}

	return &YearRange{Min: *bounds.MinYear, Max: *bounds.MaxYear}, nil
}

// GetCurrentCreatorHistories returns every creator's current history row.
// These rows feed the next transition write, so the read always goes to the
// primary; a lagging replica here would produce wrong transitions.
func (s *pgStore) GetCurrentCreatorHistories(ctx context.Context) ([]schema.CreatorQualityHistory, error) {
	var histories []schema.CreatorQualityHistory
	err := s.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("is_current = ?", true).
		Order("creator_id").
		Find(&histories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get current creator histories: %w", err)
	}

	return histories, nil
}

// GetCreatorHistories returns one creator's history rows ordered by start year
func (s *pgStore) GetCreatorHistories(ctx context.Context, creatorID string) ([]schema.CreatorQualityHistory, error) {
	var histories []schema.CreatorQualityHistory
	err := s.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("start_year").
		Find(&histories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get creator histories: %w", err)
	}

	return histories, nil
}

// GetCreatorHistoriesByIDs returns the history rows of the given creators
func (s *pgStore) GetCreatorHistoriesByIDs(ctx context.Context, creatorIDs []string) ([]schema.CreatorQualityHistory, error) {
	if len(creatorIDs) == 0 {
		return []schema.CreatorQualityHistory{}, nil
	}

	var histories []schema.CreatorQualityHistory
	err := s.db.WithContext(ctx).
		Where("creator_id IN ?", creatorIDs).
		Order("creator_id, start_year").
		Find(&histories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get creator histories by IDs: %w", err)
	}

	return histories, nil
}

// ListCreatorIDsWithHistory pages through the distinct creators present in the history table
func (s *pgStore) ListCreatorIDsWithHistory(ctx context.Context, offset, limit int) ([]string, error) {
	var creatorIDs []string
	err := s.db.WithContext(ctx).
		Model(&schema.CreatorQualityHistory{}).
		Select("DISTINCT creator_id").
		Order("creator_id").
		Offset(offset).
		Limit(limit).
		Find(&creatorIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list creator IDs: %w", err)
	}

	return creatorIDs, nil
}

// ApplyQualityTransitions applies one year's classification transitions in a
// single transaction: close-and-insert for changed creators, insert for new
// ones, rewrite in place for same-year revisions. With boundedEnd the open
// rows carry year+1 instead of NULL and unchanged creators get their end
// bumped to the next period.
func (s *pgStore) ApplyQualityTransitions(ctx context.Context, year int, transitions []domain.QualityTransition, boundedEnd bool) error {
	if len(transitions) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		var changedIDs, unchangedIDs []string
		var inserts []schema.CreatorQualityHistory
		var revisions []domain.QualityTransition
		for _, t := range transitions {
			switch t.Kind {
			case domain.TransitionChanged:
				changedIDs = append(changedIDs, t.CreatorID)
			case domain.TransitionUnchanged:
				unchangedIDs = append(unchangedIDs, t.CreatorID)
			case domain.TransitionRevised:
				revisions = append(revisions, t)
			}
		}

		// 1. Close the current row of every changed creator
		if len(changedIDs) > 0 {
			err := tx.Model(&schema.CreatorQualityHistory{}).
				Where("creator_id IN ? AND is_current = ?", changedIDs, true).
				Updates(map[string]interface{}{
					"end_year":   year,
					"is_current": false,
					"updated_at": now,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to close changed histories: %w", err)
			}
		}

		// 2. Insert a fresh open row for changed and new creators
		var endYear *int
		if boundedEnd {
			next := year + 1
			endYear = &next
		}
		for _, t := range transitions {
			if t.Kind != domain.TransitionChanged && t.Kind != domain.TransitionNew {
				continue
			}
			inserts = append(inserts, schema.CreatorQualityHistory{
				CreatorID:    t.CreatorID,
				QualityClass: t.Class,
				IsActive:     t.Active,
				StartYear:    year,
				EndYear:      endYear,
				IsCurrent:    true,
				UpdatedAt:    now,
			})
		}
		if len(inserts) > 0 {
			// CreatorQualityHistory has 6 data fields: creator_id, quality_class, is_active, start_year, end_year, is_current
			batchSize := calculateSafeBatchSize(len(inserts), 6)

			// No ON CONFLICT: the (creator_id, start_year) unique index turns
			// a double-applied year into a loud failure instead of silent drift
			if err := tx.CreateInBatches(inserts, batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert open histories: %w", err)
			}
		}

		// 3. Rewrite current rows whose start year is the processed year
		for _, t := range revisions {
			err := tx.Model(&schema.CreatorQualityHistory{}).
				Where("creator_id = ? AND is_current = ?", t.CreatorID, true).
				Updates(map[string]interface{}{
					"quality_class": t.Class,
					"is_active":     t.Active,
					"updated_at":    now,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to revise history for creator %s: %w", t.CreatorID, err)
			}
		}

		// 4. Under the bounded-end convention unchanged creators advance their end
		if boundedEnd && len(unchangedIDs) > 0 {
			err := tx.Model(&schema.CreatorQualityHistory{}).
				Where("creator_id IN ? AND is_current = ?", unchangedIDs, true).
				Updates(map[string]interface{}{
					"end_year":   year + 1,
					"updated_at": now,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to bump unchanged histories: %w", err)
			}
		}

		return nil
	})
}

// ReplaceCreatorHistories atomically replaces the whole history table with
// freshly built rows
func (s *pgStore) ReplaceCreatorHistories(ctx context.Context, rows []schema.CreatorQualityHistory) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&schema.CreatorQualityHistory{}).Error
		if err != nil {
			return fmt.Errorf("failed to clear creator histories: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}

		// CreatorQualityHistory has 6 data fields: creator_id, quality_class, is_active, start_year, end_year, is_current
		batchSize := calculateSafeBatchSize(len(rows), 6)

		if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert creator histories: %w", err)
		}

		return nil
	})
}

// CreateJobRun records the start of a batch run
func (s *pgStore) CreateJobRun(ctx context.Context, run *schema.JobRun) error {
	err := s.db.WithContext(ctx).Create(run).Error
	if err != nil {
		return fmt.Errorf("failed to create job run: %w", err)
	}

	return nil
}

// FinishJobRun closes a run with its final status and detail counters
func (s *pgStore) FinishJobRun(ctx context.Context, runID string, status domain.JobRunStatus, detail map[string]any) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":      status,
		"finished_at": now,
	}
	if detail != nil {
		raw, err := json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("failed to marshal run detail: %w", err)
		}
		updates["detail"] = datatypes.JSON(raw)
	}

	err := s.db.WithContext(ctx).
		Model(&schema.JobRun{}).
		Where("id = ?", runID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to finish job run: %w", err)
	}

	return nil
}

// GetLastCompletedRun returns the completed run with the highest partition
// key for a job. Ledger reads gate mart writes, so they always go to the
// primary; a lagging replica must not answer them.
func (s *pgStore) GetLastCompletedRun(ctx context.Context, job domain.JobName) (*schema.JobRun, error) {
	var run schema.JobRun
	err := s.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("job = ? AND status = ?", job, domain.JobRunCompleted).
		Order("partition_key DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last completed run: %w", err)
	}

	return &run, nil
}

// HasCompletedRun reports whether a job already completed for a partition.
// Like GetLastCompletedRun this read gates writes and always hits the primary.
func (s *pgStore) HasCompletedRun(ctx context.Context, job domain.JobName, partitionKey string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Model(&schema.JobRun{}).
		Where("job = ? AND partition_key = ? AND status = ?", job, partitionKey, domain.JobRunCompleted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check completed run: %w", err)
	}

	return count > 0, nil
}

// CreateAuditFindings persists audit findings in batches
func (s *pgStore) CreateAuditFindings(ctx context.Context, findings []schema.AuditFinding) error {
	if len(findings) == 0 {
		return nil
	}

	// AuditFinding has 6 data fields: id, run_id, mart, check_name, entity_key, detail
	batchSize := calculateSafeBatchSize(len(findings), 6)

	err := s.db.WithContext(ctx).CreateInBatches(findings, batchSize).Error
	if err != nil {
		return fmt.Errorf("failed to create audit findings: %w", err)
	}

	return nil
}

// GetAuditFindings returns the findings recorded by one audit run.
// ULID primary keys make the id ordering the discovery ordering.
func (s *pgStore) GetAuditFindings(ctx context.Context, runID string) ([]schema.AuditFinding, error) {
	var findings []schema.AuditFinding
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id").
		Find(&findings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get audit findings: %w", err)
	}
	return findings, nil
}

// TableExists reports whether a table exists in the current schema
func (s *pgStore) TableExists(ctx context.Context, table string) (bool, error) {
	return tableExists(s.db.WithContext(ctx), table)
}

// MissingColumns returns the subset of columns absent from the table,
// preserving the requested order
func (s *pgStore) MissingColumns(ctx context.Context, table string, columns []string) ([]string, error) {
	var present []string
	err := s.db.WithContext(ctx).Raw(`
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = ?
	`, table).Scan(&present).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
	}

	have := make(map[string]bool, len(present))
	for _, c := range present {
		have[c] = true
	}

	var missing []string
	for _, c := range columns {
		if !have[c] {
			missing = append(missing, c)
		}
	}

	return missing, nil
}

// CountAmbiguousKeys counts key groups whose winner is not unique even after
// the tie-break: the top-ranked row under (recency DESC, tie-break DESC) is
// tied by at least one other row
func (s *pgStore) CountAmbiguousKeys(ctx context.Context, src registry.DedupSource) (int64, error) {
	// Identifiers are validated by the source registry, never user input
	order := fmt.Sprintf("%s DESC NULLS LAST, %s DESC NULLS LAST", src.RecencyColumn, src.TiebreakColumn)
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM (
			SELECT 1 FROM (
				SELECT
					ROW_NUMBER() OVER (PARTITION BY %s ORDER BY %s) AS rn,
					RANK() OVER (PARTITION BY %s ORDER BY %s) AS rk
				FROM %s
			) ranked
			WHERE rn = 2 AND rk = 1
		) ambiguous
	`, strings.Join(src.KeyColumns, ", "), order, strings.Join(src.KeyColumns, ", "), order, src.SourceTable)

	var count int64
	err := s.db.WithContext(ctx).Raw(query).Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count ambiguous keys: %w", err)
	}

	return count, nil
}

// MaterializeDedup creates the target table holding the most recent row per
// key and returns the number of materialized rows. The source is only read,
// never modified.
func (s *pgStore) MaterializeDedup(ctx context.Context, src registry.DedupSource) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := tableExists(tx, src.TargetTable)
		if err != nil {
			return err
		}
		if exists {
			if !src.Replace {
				return fmt.Errorf("target table %s: %w", src.TargetTable, domain.ErrTargetTableExists)
			}
			logger.WarnCtx(ctx, "Replacing existing dedup target", zap.String("table", src.TargetTable))
			if err := tx.Exec(fmt.Sprintf("DROP TABLE %s", src.TargetTable)).Error; err != nil {
				return fmt.Errorf("failed to drop target table %s: %w", src.TargetTable, err)
			}
		}

		// DISTINCT ON keeps the first row per key under the deterministic
		// order, so the target carries the source schema with no rank column
		query := fmt.Sprintf(`
			CREATE TABLE %s AS
			SELECT DISTINCT ON (%s) * FROM %s
			ORDER BY %s, %s DESC NULLS LAST, %s DESC NULLS LAST
		`, src.TargetTable, strings.Join(src.KeyColumns, ", "), src.SourceTable,
			strings.Join(src.KeyColumns, ", "), src.RecencyColumn, src.TiebreakColumn)
		if err := tx.Exec(query).Error; err != nil {
			return fmt.Errorf("failed to materialize dedup target %s: %w", src.TargetTable, err)
		}

		if err := tx.Table(src.TargetTable).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count materialized rows: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func tableExists(tx *gorm.DB, table string) (bool, error) {
	var exists bool
	err := tx.Raw(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = ?
		)
	`, table).Scan(&exists).Error
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}

	return exists, nil
}
