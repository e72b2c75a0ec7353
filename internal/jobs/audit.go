package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/basetide/activity-marts/internal/adapter"
	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/logger"
	"github.com/basetide/activity-marts/internal/store"
	"github.com/basetide/activity-marts/internal/store/schema"
)

// Mart names stamped on audit findings
const (
	MartDeviceActivity = "device_activity"
	MartHostActivity   = "host_activity"
	MartHostMonthly    = "host_monthly_activity"
	MartQualityHistory = "creator_quality_history"
)

// AuditConfig holds configuration for the mart auditor
type AuditConfig struct {
	WorkerPoolSize  int // Concurrent check workers
	WorkerQueueSize int // Pending page capacity
	PageSize        int // Rows fetched per page
}

// AuditResult summarizes one audit sweep
type AuditResult struct {
	RunID    string
	Checked  int64
	Findings int
	Duration time.Duration
}

// MartAuditor walks the four marts and verifies the invariants their load
// jobs are supposed to maintain: strictly ascending date lists with derived
// ints, month-aligned metric arrays sized to the run ledger, and gap-free
// history chains. Violations become audit findings tied to the ledger run
// that discovered them; the auditor never repairs rows.
type MartAuditor struct {
	config *AuditConfig
	store  store.Store
	clock  adapter.Clock
}

// NewMartAuditor creates a new mart auditor
func NewMartAuditor(config *AuditConfig, st store.Store, clk adapter.Clock) *MartAuditor {
	return &MartAuditor{
		config: config,
		store:  st,
		clock:  clk,
	}
}

// Run sweeps all marts once and persists any findings
func (a *MartAuditor) Run(ctx context.Context) (*AuditResult, error) {
	start := a.clock.Now()
	result := &AuditResult{}

	err := recordRun(ctx, a.store, a.clock, domain.JobMartAudit, start.UTC().Format(time.RFC3339), func(ctx context.Context, runID string) (map[string]any, error) {
		result.RunID = runID

		logger.InfoCtx(ctx, "Starting mart audit",
			zap.String("run_id", runID),
			zap.Int("worker_pool_size", a.config.WorkerPoolSize),
			zap.Int("page_size", a.config.PageSize),
		)

		collector := newFindingCollector(a.clock, runID)
		pool := pond.NewPool(
			a.config.WorkerPoolSize,
			pond.WithQueueSize(a.config.WorkerQueueSize),
			pond.WithContext(ctx),
		)

		var checked atomic.Int64
		sweepErr := a.sweepAll(ctx, pool, collector, &checked)

		// Wait for in-flight checks even when a sweep failed, so the
		// collector is quiescent before we read it
		pool.StopAndWait()
		if sweepErr != nil {
			return nil, sweepErr
		}

		findings := collector.rows()
		if len(findings) > 0 {
			if err := a.store.CreateAuditFindings(ctx, findings); err != nil {
				return nil, fmt.Errorf("failed to persist audit findings: %w", err)
			}
		}

		result.Checked = checked.Load()
		result.Findings = len(findings)
		return map[string]any{
			"checked":  result.Checked,
			"findings": result.Findings,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	result.Duration = a.clock.Since(start)
	logger.InfoCtx(ctx, "Mart audit completed",
		zap.String("run_id", result.RunID),
		zap.Int64("checked", result.Checked),
		zap.Int("findings", result.Findings),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// sweepAll pages through every mart, stopping at the first read failure
func (a *MartAuditor) sweepAll(ctx context.Context, pool pond.Pool, c *findingCollector, checked *atomic.Int64) error {
	if err := a.sweepDeviceActivity(ctx, pool, c, checked); err != nil {
		return err
	}
	if err := a.sweepHostActivity(ctx, pool, c, checked); err != nil {
		return err
	}
	if err := a.sweepHostMonthly(ctx, pool, c, checked); err != nil {
		return err
	}
	return a.sweepQualityHistory(ctx, pool, c, checked)
}

func (a *MartAuditor) sweepDeviceActivity(ctx context.Context, pool pond.Pool, c *findingCollector, checked *atomic.Int64) error {
	for offset := 0; ; offset += a.config.PageSize {
		rows, err := a.store.ListDeviceActivities(ctx, offset, a.config.PageSize)
		if err != nil {
			return fmt.Errorf("failed to list device activities: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		pool.Submit(func() {
			for _, row := range rows {
				checkDateList(c, MartDeviceActivity, row.UserID+"/"+row.BrowserType, row.ActivityDates, row.ActivityDateInts)
				checked.Add(1)
			}
		})
		if len(rows) < a.config.PageSize {
			return nil
		}
	}
}

func (a *MartAuditor) sweepHostActivity(ctx context.Context, pool pond.Pool, c *findingCollector, checked *atomic.Int64) error {
	for offset := 0; ; offset += a.config.PageSize {
		rows, err := a.store.ListHostActivities(ctx, offset, a.config.PageSize)
		if err != nil {
			return fmt.Errorf("failed to list host activities: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		pool.Submit(func() {
			for _, row := range rows {
				checkDateList(c, MartHostActivity, row.Host, row.ActivityDates, row.ActivityDateInts)
				checked.Add(1)
			}
		})
		if len(rows) < a.config.PageSize {
			return nil
		}
	}
}

func (a *MartAuditor) sweepHostMonthly(ctx context.Context, pool pond.Pool, c *findingCollector, checked *atomic.Int64) error {
	lastDay, haveLastDay, err := a.lastMonthlyDay(ctx)
	if err != nil {
		return err
	}
	for offset := 0; ; offset += a.config.PageSize {
		rows, err := a.store.ListHostMonthlyActivities(ctx, offset, a.config.PageSize)
		if err != nil {
			return fmt.Errorf("failed to list host monthly activities: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		pool.Submit(func() {
			for _, row := range rows {
				checkMonthlyRow(c, row, lastDay, haveLastDay)
				checked.Add(1)
			}
		})
		if len(rows) < a.config.PageSize {
			return nil
		}
	}
}

// lastMonthlyDay reads the newest day the monthly job completed, so rows in
// that month can be checked against the number of loaded days
func (a *MartAuditor) lastMonthlyDay(ctx context.Context) (domain.Date, bool, error) {
	run, err := a.store.GetLastCompletedRun(ctx, domain.JobHostMonthly)
	if err != nil {
		return domain.Date{}, false, fmt.Errorf("failed to get last monthly run: %w", err)
	}
	if run == nil {
		return domain.Date{}, false, nil
	}
	day, err := domain.ParseDate(run.PartitionKey)
	if err != nil {
		logger.WarnCtx(ctx, "Monthly ledger partition key is not a date, skipping ledger length checks",
			zap.String("partition_key", run.PartitionKey),
		)
		return domain.Date{}, false, nil
	}
	return day, true, nil
}

func (a *MartAuditor) sweepQualityHistory(ctx context.Context, pool pond.Pool, c *findingCollector, checked *atomic.Int64) error {
	for offset := 0; ; offset += a.config.PageSize {
		creatorIDs, err := a.store.ListCreatorIDsWithHistory(ctx, offset, a.config.PageSize)
		if err != nil {
			return fmt.Errorf("failed to list creator IDs: %w", err)
		}
		if len(creatorIDs) == 0 {
			return nil
		}

		histories, err := a.store.GetCreatorHistoriesByIDs(ctx, creatorIDs)
		if err != nil {
			return fmt.Errorf("failed to get creator histories: %w", err)
		}

		// Rows arrive ordered by creator and start year, so grouping
		// keeps each chain in chronological order
		byCreator := make(map[string][]schema.CreatorQualityHistory, len(creatorIDs))
		for _, row := range histories {
			byCreator[row.CreatorID] = append(byCreator[row.CreatorID], row)
		}

		pool.Submit(func() {
			for _, creatorID := range creatorIDs {
				checkCreatorHistory(c, creatorID, byCreator[creatorID])
				checked.Add(1)
			}
		})
		if len(creatorIDs) < a.config.PageSize {
			return nil
		}
	}
}

// checkDateList verifies a cumulative mart row: a non-empty strictly
// ascending date list whose int column is derived from it
func checkDateList(c *findingCollector, mart, key string, dates []domain.Date, ints []int32) {
	if len(dates) == 0 {
		c.add(mart, "dates_not_empty", key, "activity date list is empty")
	}
	if !domain.DatesStrictlyAscending(dates) {
		c.add(mart, "dates_strictly_ascending", key, "activity dates are not sorted strictly ascending")
	}
	if len(ints) != len(dates) {
		c.add(mart, "date_ints_derived", key, fmt.Sprintf("date list has %d entries but int list has %d", len(dates), len(ints)))
		return
	}
	for i, d := range dates {
		if ints[i] != d.Int() {
			c.add(mart, "date_ints_derived", key, fmt.Sprintf("int %d at position %d does not match date %s", ints[i], i, d))
			return
		}
	}
}

// checkMonthlyRow verifies a monthly mart row: equal-length non-empty
// arrays anchored at a first date inside the row's month, never running
// past the end of that month, and sized to the days the ledger has loaded
func checkMonthlyRow(c *findingCollector, row schema.HostMonthlyActivity, lastDay domain.Date, haveLastDay bool) {
	key := row.Month + "/" + row.Host
	if len(row.HitCounts) == 0 {
		c.add(MartHostMonthly, "arrays_not_empty", key, "metric arrays are empty")
	}
	if len(row.HitCounts) != len(row.VisitorCounts) {
		c.add(MartHostMonthly, "array_lengths_equal", key, fmt.Sprintf("hit_counts has %d elements but visitor_counts has %d", len(row.HitCounts), len(row.VisitorCounts)))
	}
	if row.FirstDate.MonthKey() != row.Month {
		c.add(MartHostMonthly, "first_date_in_month", key, fmt.Sprintf("first_date %s falls outside month %s", row.FirstDate, row.Month))
		return
	}
	// Position i is the day FirstDate + i, so the last element must still
	// land inside the month
	if n := len(row.HitCounts); n > 0 {
		if last := row.FirstDate.AddDays(n - 1); last.MonthKey() != row.Month {
			c.add(MartHostMonthly, "arrays_within_month", key, fmt.Sprintf("%d elements starting at %s run past the month into %s", n, row.FirstDate, last))
		}
	}
	// In the month named by the ledger, a row holds exactly one element per
	// day loaded since its first date
	if haveLastDay && row.Month == lastDay.MonthKey() && !row.FirstDate.After(lastDay) {
		if expected := lastDay.DaysSince(row.FirstDate) + 1; len(row.HitCounts) != expected {
			c.add(MartHostMonthly, "arrays_match_ledger", key, fmt.Sprintf("%d elements but the ledger loaded %d days since %s", len(row.HitCounts), expected, row.FirstDate))
		}
	}
}

// checkCreatorHistory verifies one creator's history chain: valid classes,
// closed intervals tiling into the next start year, and exactly one open
// current row at the end
func checkCreatorHistory(c *findingCollector, creatorID string, rows []schema.CreatorQualityHistory) {
	if len(rows) == 0 {
		c.add(MartQualityHistory, "history_not_empty", creatorID, "creator has no history rows")
		return
	}

	currents := 0
	for i, row := range rows {
		if !domain.IsValidQualityClass(row.QualityClass) {
			c.add(MartQualityHistory, "quality_class_valid", creatorID, fmt.Sprintf("row starting %d has unknown class %q", row.StartYear, row.QualityClass))
		}
		if row.IsCurrent {
			currents++
			if i != len(rows)-1 {
				c.add(MartQualityHistory, "current_row_is_last", creatorID, fmt.Sprintf("current row starting %d is followed by a row starting %d", row.StartYear, rows[i+1].StartYear))
			}
		}
		if row.EndYear != nil && *row.EndYear <= row.StartYear {
			c.add(MartQualityHistory, "interval_not_inverted", creatorID, fmt.Sprintf("row starting %d ends at %d", row.StartYear, *row.EndYear))
		}
		if i == 0 {
			continue
		}
		prev := rows[i-1]
		if prev.EndYear == nil {
			c.add(MartQualityHistory, "closed_rows_have_end", creatorID, fmt.Sprintf("non-final row starting %d has no end year", prev.StartYear))
		} else if *prev.EndYear != row.StartYear {
			c.add(MartQualityHistory, "intervals_tile", creatorID, fmt.Sprintf("row ending %d is followed by a row starting %d", *prev.EndYear, row.StartYear))
		}
		if prev.QualityClass == row.QualityClass && prev.IsActive == row.IsActive {
			c.add(MartQualityHistory, "adjacent_rows_differ", creatorID, fmt.Sprintf("rows starting %d and %d repeat class %q", prev.StartYear, row.StartYear, row.QualityClass))
		}
	}
	if currents != 1 {
		c.add(MartQualityHistory, "one_current_row", creatorID, fmt.Sprintf("creator has %d current rows", currents))
	}
}

// findingCollector accumulates findings from concurrent check workers
type findingCollector struct {
	clock adapter.Clock
	runID string
	mu    sync.Mutex
	found []schema.AuditFinding
}

func newFindingCollector(clk adapter.Clock, runID string) *findingCollector {
	return &findingCollector{clock: clk, runID: runID}
}

func (c *findingCollector) add(mart, checkName, entityKey, detail string) {
	id := ulid.MustNewDefault(c.clock.Now()).String()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.found = append(c.found, schema.AuditFinding{
		ID:        id,
		RunID:     c.runID,
		Mart:      mart,
		CheckName: checkName,
		EntityKey: entityKey,
		Detail:    detail,
	})
}

func (c *findingCollector) rows() []schema.AuditFinding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.found
}
