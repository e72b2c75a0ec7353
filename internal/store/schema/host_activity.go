package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/basetide/activity-marts/internal/domain"
)

// HostActivity represents the host_activity table - the cumulative list of
// days each host received traffic
type HostActivity struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Host is the site host
	Host string `gorm:"column:host;not null;type:text;uniqueIndex:idx_host_activity_host"`
	// ActivityDates is the ascending, duplicate-free list of active days
	ActivityDates datatypes.JSONSlice[domain.Date] `gorm:"column:activity_dates;not null;type:jsonb"`
	// ActivityDateInts is the YYYYMMDD encoding of ActivityDates, recomputed
	// on every write; derived, never a source of truth
	ActivityDateInts datatypes.JSONSlice[int32] `gorm:"column:activity_date_ints;not null;type:jsonb"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the HostActivity model
func (HostActivity) TableName() string {
	return "host_activity"
}
