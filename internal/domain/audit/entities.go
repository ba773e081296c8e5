package audit

import "time"

// OverrideAuditEntry records an admin approval that bypassed failed
// eligibility rules. Append-only; rows are never mutated or deleted.
type OverrideAuditEntry struct {
	ID          uint64    `gorm:"primaryKey;column:id" json:"-"`
	AuditID     string    `gorm:"size:32;uniqueIndex:ux_override_audit_audit_id" json:"audit_id"`
	AdminID     string    `gorm:"size:32;index:idx_override_audit_admin" json:"admin_id"`
	MemberID    string    `gorm:"size:32;index:idx_override_audit_member" json:"member_id"`
	LoanID      string    `gorm:"size:32;index:idx_override_audit_loan" json:"loan_id"`
	FailedRules string    `gorm:"type:text" json:"failed_rules"` // comma-joined, evaluation order
	Reason      string    `gorm:"type:text" json:"reason"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (OverrideAuditEntry) TableName() string { return "override_audit_entries" }
