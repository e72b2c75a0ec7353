package domain

// QualityClass represents the quality tier derived from a creator's average
// yearly rating
type QualityClass string

const (
	QualityStar    QualityClass = "star"
	QualityGood    QualityClass = "good"
	QualityAverage QualityClass = "average"
	QualityBad     QualityClass = "bad"
)

// IsValidQualityClass checks if a quality class is valid
func IsValidQualityClass(c QualityClass) bool {
	return c == QualityStar ||
		c == QualityGood ||
		c == QualityAverage ||
		c == QualityBad
}

// ClassifyQuality maps an average rating to its quality class. The
// breakpoints are strictly greater-than, so an average of exactly 8 is
// "good" and exactly 6 is "bad".
func ClassifyQuality(avgRating float64) QualityClass {
	switch {
	case avgRating > 8:
		return QualityStar
	case avgRating > 7:
		return QualityGood
	case avgRating > 6:
		return QualityAverage
	default:
		return QualityBad
	}
}

// JobName identifies a ledger stream in the job_runs table
type JobName string

const (
	JobDedup          JobName = "dedup"
	JobDeviceActivity JobName = "device-activity"
	JobHostActivity   JobName = "host-activity"
	JobHostMonthly    JobName = "host-monthly"
	JobQualityHistory JobName = "quality-history"
	JobMartAudit      JobName = "mart-audit"
)

// JobRunStatus represents the lifecycle state of a recorded job run
type JobRunStatus string

const (
	JobRunRunning   JobRunStatus = "running"
	JobRunCompleted JobRunStatus = "completed"
	JobRunFailed    JobRunStatus = "failed"
)

// HistoryMode selects how the history builder runs
type HistoryMode string

const (
	// HistoryModeIncremental applies a single new year on top of the
	// existing history rows.
	HistoryModeIncremental HistoryMode = "incremental"

	// HistoryModeBackfill rebuilds the whole history table from every
	// known period aggregate.
	HistoryModeBackfill HistoryMode = "backfill"
)

// IsValidHistoryMode checks if a history mode is valid
func IsValidHistoryMode(m HistoryMode) bool {
	return m == HistoryModeIncremental || m == HistoryModeBackfill
}
