package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/basetide/activity-marts/internal/domain"
)

// DeviceActivity represents the device_activity table - the cumulative list
// of days each (user, browser) pair was seen
type DeviceActivity struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID is the visitor identifier
	UserID string `gorm:"column:user_id;not null;type:text;uniqueIndex:idx_device_activity_user_browser,priority:1"`
	// BrowserType is the visitor's browser family
	BrowserType string `gorm:"column:browser_type;not null;type:text;uniqueIndex:idx_device_activity_user_browser,priority:2"`
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

// TableName specifies the table name for the DeviceActivity model
func (DeviceActivity) TableName() string {
	return "device_activity"
}
