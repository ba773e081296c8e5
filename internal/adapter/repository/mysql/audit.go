package mysql

import (
	"context"

	auditDomain "loanfund-backend/internal/domain/audit"

	"gorm.io/gorm"
)

type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Append(ctx context.Context, e *auditDomain.OverrideAuditEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AuditRepository) List(ctx context.Context, f auditDomain.Filter) ([]auditDomain.OverrideAuditEntry, error) {
	q := r.db.WithContext(ctx).Model(&auditDomain.OverrideAuditEntry{})
	if f.AdminID != "" {
		q = q.Where("admin_id = ?", f.AdminID)
	}
	if f.MemberID != "" {
		q = q.Where("member_id = ?", f.MemberID)
	}
	if f.LoanID != "" {
		q = q.Where("loan_id = ?", f.LoanID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []auditDomain.OverrideAuditEntry
	res := q.Order("id ASC").Find(&out)
	return out, res.Error
}
