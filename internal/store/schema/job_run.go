package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/basetide/activity-marts/internal/domain"
)

// JobRun represents the job_runs table - the ledger of batch runs. Besides
// observability it is the caller-side guard for the monthly updater: the
// ledger is what makes repeated or out-of-order dates detectable before any
// write happens.
type JobRun struct {
	// ID is the run identifier (UUID)
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`
	// Job is the ledger stream this run belongs to
	Job domain.JobName `gorm:"column:job;not null;type:text;index:idx_job_runs_job_partition,priority:1"`
	// PartitionKey identifies the slice processed: a date, a year, or a
	// dedup source name depending on the job
	PartitionKey string `gorm:"column:partition_key;not null;type:text;index:idx_job_runs_job_partition,priority:2"`
	// Status is running, completed, or failed
	Status domain.JobRunStatus `gorm:"column:status;not null;type:text"`
	// Detail carries run counters and the failure reason as JSON
	Detail datatypes.JSON `gorm:"column:detail;type:jsonb"`
	// StartedAt is when the run began
	StartedAt time.Time `gorm:"column:started_at;not null;type:timestamptz"`
	// FinishedAt is when the run ended, NULL while running
	FinishedAt *time.Time `gorm:"column:finished_at;type:timestamptz"`
}

// TableName specifies the table name for the JobRun model
func (JobRun) TableName() string {
	return "job_runs"
}
