package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/basetide/activity-marts/internal/domain"
)

// HostMonthlyActivity represents the host_monthly_activity table - the
// reduced per-month fact holding one array element per processed day.
// Array position i corresponds to the day FirstDate + i; loads for days the
// host was quiet append zeros, so the arrays stay aligned as long as days
// are applied once each and in order.
type HostMonthlyActivity struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Month is the YYYY-MM month bucket
	Month string `gorm:"column:month;not null;type:varchar(7);uniqueIndex:idx_host_monthly_activity_month_host,priority:1"`
	// Host is the site host
	Host string `gorm:"column:host;not null;type:text;uniqueIndex:idx_host_monthly_activity_month_host,priority:2"`
	// FirstDate is the first processed day this host appeared in the month
	FirstDate domain.Date `gorm:"column:first_date;not null;type:date"`
	// HitCounts holds one total-hits value per processed day
	HitCounts datatypes.JSONSlice[int64] `gorm:"column:hit_counts;not null;type:jsonb"`
	// VisitorCounts holds one distinct-visitors value per processed day
	VisitorCounts datatypes.JSONSlice[int64] `gorm:"column:visitor_counts;not null;type:jsonb"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the HostMonthlyActivity model
func (HostMonthlyActivity) TableName() string {
	return "host_monthly_activity"
}
