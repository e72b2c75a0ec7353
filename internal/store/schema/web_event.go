package schema

import "time"

// WebEvent represents the web_events table - the raw, append-only event
// stream the activity marts are derived from
type WebEvent struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID is the visitor identifier
	UserID string `gorm:"column:user_id;not null;type:text;index:idx_web_events_user_browser,priority:1"`
	// BrowserType is the visitor's browser family (e.g. "Chrome", "Firefox")
	BrowserType string `gorm:"column:browser_type;not null;type:text;index:idx_web_events_user_browser,priority:2"`
	// Host is the site host that served the request
	Host string `gorm:"column:host;not null;type:text;index:idx_web_events_host"`
	// URL is the requested path
	URL string `gorm:"column:url;type:text"`
	// Referrer is the referring URL, empty for direct traffic
	Referrer string `gorm:"column:referrer;type:text"`
	// EventTime is when the request happened
	EventTime time.Time `gorm:"column:event_time;not null;type:timestamptz;index:idx_web_events_event_time"`
	// CreatedAt is the timestamp when this record was ingested
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the WebEvent model
func (WebEvent) TableName() string {
	return "web_events"
}
