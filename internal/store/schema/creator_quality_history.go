package schema

import (
	"time"

	"github.com/basetide/activity-marts/internal/domain"
)

// CreatorQualityHistory represents the creator_quality_history table - the
// SCD2 dimension of creator classifications. Each row covers the half-open
// year interval [StartYear, EndYear) during which (QualityClass, IsActive)
// did not change. A NULL EndYear marks the open current row; with the
// bounded-end convention the current row instead carries the next period.
type CreatorQualityHistory struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// CreatorID identifies the creator
	CreatorID string `gorm:"column:creator_id;not null;type:text;uniqueIndex:idx_creator_quality_history_creator_start,priority:1"`
	// QualityClass is the tier held during the interval
	QualityClass domain.QualityClass `gorm:"column:quality_class;not null;type:text"`
	// IsActive reports whether the creator published during the interval
	IsActive bool `gorm:"column:is_active;not null"`
	// StartYear is the first year of the interval (inclusive)
	StartYear int `gorm:"column:start_year;not null;uniqueIndex:idx_creator_quality_history_creator_start,priority:2"`
	// EndYear is the first year after the interval (exclusive), NULL while open
	EndYear *int `gorm:"column:end_year"`
	// IsCurrent marks the single row describing the creator's present state
	IsCurrent bool `gorm:"column:is_current;not null;default:false;index:idx_creator_quality_history_current"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the CreatorQualityHistory model
func (CreatorQualityHistory) TableName() string {
	return "creator_quality_history"
}
