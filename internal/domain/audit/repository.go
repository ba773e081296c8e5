package audit

import "context"

type Filter struct {
	AdminID  string
	MemberID string
	LoanID   string
	Limit    int
}

type Repository interface {
	Append(ctx context.Context, e *OverrideAuditEntry) error
	List(ctx context.Context, f Filter) ([]OverrideAuditEntry, error)
}
