package mysql

import (
	"context"

	loanDomain "loanfund-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, p *loanDomain.LoanPayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]loanDomain.LoanPayment, error) {
	var out []loanDomain.LoanPayment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *PaymentRepository) SumAccepted(ctx context.Context, loanID uint64) (decimal.Decimal, error) {
	var raw decimal.NullDecimal
	res := r.db.WithContext(ctx).
		Model(&loanDomain.LoanPayment{}).
		Select("SUM(amount)").
		Where("loan_id = ? AND status = ?", loanID, loanDomain.PaymentAccepted).
		Scan(&raw)
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	if !raw.Valid {
		return decimal.Zero, nil
	}
	return raw.Decimal, nil
}
