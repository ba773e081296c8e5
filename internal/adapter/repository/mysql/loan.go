package mysql

import (
	"context"
	"errors"
	"time"

	loanDomain "loanfund-backend/internal/domain/loan"

	"gorm.io/gorm"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.LoanRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.LoanRequest) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.LoanRequest, error) {
	var out loanDomain.LoanRequest
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.LoanRequest, error) {
	var out loanDomain.LoanRequest
	res := forUpdate(r.db.WithContext(ctx)).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) activeScope(ctx context.Context, memberID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&loanDomain.LoanRequest{}).
		Where("member_id = ? AND status IN ? AND closure_date IS NULL",
			memberID, []loanDomain.Status{loanDomain.StatusPending, loanDomain.StatusApproved})
}

func (r *LoanRepository) CountActiveByMemberID(ctx context.Context, memberID string) (int64, error) {
	var n int64
	res := r.activeScope(ctx, memberID).Count(&n)
	return n, res.Error
}

func (r *LoanRepository) CountActiveByMemberIDForUpdate(ctx context.Context, memberID string) (int64, error) {
	var n int64
	res := forUpdate(r.activeScope(ctx, memberID)).Count(&n)
	return n, res.Error
}

func (r *LoanRepository) CountOtherActiveByMemberID(ctx context.Context, memberID, excludeLoanID string) (int64, error) {
	var n int64
	res := r.activeScope(ctx, memberID).Where("loan_id <> ?", excludeLoanID).Count(&n)
	return n, res.Error
}

func (r *LoanRepository) LatestClosureDate(ctx context.Context, memberID string) (*time.Time, error) {
	var out loanDomain.LoanRequest
	res := r.db.WithContext(ctx).
		Where("member_id = ? AND status = ? AND closure_date IS NOT NULL", memberID, loanDomain.StatusClosed).
		Order("closure_date DESC, id DESC").
		First(&out)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return out.ClosureDate, nil
}

func (r *LoanRepository) ListApprovedLoanIDs(ctx context.Context) ([]string, error) {
	var ids []string
	res := r.db.WithContext(ctx).
		Model(&loanDomain.LoanRequest{}).
		Where("status = ? AND closure_date IS NULL", loanDomain.StatusApproved).
		Order("id ASC").
		Pluck("loan_id", &ids)
	return ids, res.Error
}
