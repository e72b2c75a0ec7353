package schema

import "time"

// AuditFinding represents the audit_findings table - one row per invariant
// violation found by a mart-audit run
type AuditFinding struct {
	// ID is a ULID, so findings sort by discovery time
	ID string `gorm:"column:id;primaryKey;type:varchar(26)"`
	// RunID is the mart-audit job run that produced the finding
	RunID string `gorm:"column:run_id;not null;type:varchar(36);index:idx_audit_findings_run"`
	// Mart is the mart table the finding concerns
	Mart string `gorm:"column:mart;not null;type:text"`
	// CheckName is the invariant check that failed
	CheckName string `gorm:"column:check_name;not null;type:text"`
	// EntityKey identifies the offending row (user+browser, host, month+host, creator)
	EntityKey string `gorm:"column:entity_key;not null;type:text"`
	// Detail is a human-readable description of the violation
	Detail string `gorm:"column:detail;not null;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the AuditFinding model
func (AuditFinding) TableName() string {
	return "audit_findings"
}
