package mysql

import (
	"context"

	"loanfund-backend/internal/domain/loan"
	"loanfund-backend/internal/domain/member"
	"loanfund-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Members:  &MemberRepository{db: tx},
		Loans:    &LoanRepository{db: tx},
		Payments: &PaymentRepository{db: tx},
		Audit:    &AuditRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinMemberTx(ctx context.Context, memberID string, fn func(r uow.Repos, m *member.Member) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the member row up-front; concurrent submissions for the same
		// member queue here
		m, err := r.Members.GetByMemberIDForUpdate(ctx, memberID)
		if err != nil {
			return err
		}
		return fn(r, m)
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.LoanRequest) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the loan row up-front to prevent decide/payment/sweep races
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
