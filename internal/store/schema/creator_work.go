package schema

import "time"

// CreatorWork represents the creator_works table - the raw per-work ratings
// feed the quality history is built from, one row per published work
type CreatorWork struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// CreatorID identifies the creator
	CreatorID string `gorm:"column:creator_id;not null;type:text;uniqueIndex:idx_creator_works_creator_work,priority:1"`
	// WorkID identifies the work within the creator's catalog
	WorkID string `gorm:"column:work_id;not null;type:text;uniqueIndex:idx_creator_works_creator_work,priority:2"`
	// Title is the work's display title
	Title string `gorm:"column:title;type:text"`
	// Year is the publication year the work counts toward
	Year int `gorm:"column:year;not null;index:idx_creator_works_year"`
	// Rating is the work's audience rating on a 0-10 scale
	Rating float64 `gorm:"column:rating;not null;type:numeric(4,2)"`
	// Votes is the number of ratings behind Rating
	Votes int64 `gorm:"column:votes;not null;default:0"`
	// IngestedAt is when the feed row arrived
	IngestedAt time.Time `gorm:"column:ingested_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the CreatorWork model
func (CreatorWork) TableName() string {
	return "creator_works"
}
