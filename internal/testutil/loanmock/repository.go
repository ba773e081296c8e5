package loanmock

import (
	"context"
	"time"

	domain "loanfund-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

var (
	_ domain.Repository        = (*Repo)(nil)
	_ domain.PaymentRepository = (*PaymentRepo)(nil)
)

// Repo is a function-backed mock that satisfies loan.Repository.
type Repo struct {
	CreateFn                         func(ctx context.Context, l *domain.LoanRequest) error
	SaveFn                           func(ctx context.Context, l *domain.LoanRequest) error
	GetByLoanIDFn                    func(ctx context.Context, loanID string) (*domain.LoanRequest, error)
	GetByLoanIDForUpdateFn           func(ctx context.Context, loanID string) (*domain.LoanRequest, error)
	CountActiveByMemberIDFn          func(ctx context.Context, memberID string) (int64, error)
	CountActiveByMemberIDForUpdateFn func(ctx context.Context, memberID string) (int64, error)
	CountOtherActiveByMemberIDFn     func(ctx context.Context, memberID, excludeLoanID string) (int64, error)
	LatestClosureDateFn              func(ctx context.Context, memberID string) (*time.Time, error)
	ListApprovedLoanIDsFn            func(ctx context.Context) ([]string, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.LoanRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.LoanRequest) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.LoanRequest, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.LoanRequest, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) CountActiveByMemberID(ctx context.Context, memberID string) (int64, error) {
	if m.CountActiveByMemberIDFn != nil {
		return m.CountActiveByMemberIDFn(ctx, memberID)
	}
	return 0, nil
}

func (m *Repo) CountActiveByMemberIDForUpdate(ctx context.Context, memberID string) (int64, error) {
	if m.CountActiveByMemberIDForUpdateFn != nil {
		return m.CountActiveByMemberIDForUpdateFn(ctx, memberID)
	}
	return 0, nil
}

func (m *Repo) CountOtherActiveByMemberID(ctx context.Context, memberID, excludeLoanID string) (int64, error) {
	if m.CountOtherActiveByMemberIDFn != nil {
		return m.CountOtherActiveByMemberIDFn(ctx, memberID, excludeLoanID)
	}
	return 0, nil
}

func (m *Repo) LatestClosureDate(ctx context.Context, memberID string) (*time.Time, error) {
	if m.LatestClosureDateFn != nil {
		return m.LatestClosureDateFn(ctx, memberID)
	}
	return nil, nil
}

func (m *Repo) ListApprovedLoanIDs(ctx context.Context) ([]string, error) {
	if m.ListApprovedLoanIDsFn != nil {
		return m.ListApprovedLoanIDsFn(ctx)
	}
	return nil, nil
}

// PaymentRepo is a function-backed mock that satisfies loan.PaymentRepository.
type PaymentRepo struct {
	CreateFn       func(ctx context.Context, p *domain.LoanPayment) error
	ListByLoanIDFn func(ctx context.Context, loanID uint64) ([]domain.LoanPayment, error)
	SumAcceptedFn  func(ctx context.Context, loanID uint64) (decimal.Decimal, error)
}

func (m *PaymentRepo) Create(ctx context.Context, p *domain.LoanPayment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *PaymentRepo) ListByLoanID(ctx context.Context, loanID uint64) ([]domain.LoanPayment, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, nil
}

func (m *PaymentRepo) SumAccepted(ctx context.Context, loanID uint64) (decimal.Decimal, error) {
	if m.SumAcceptedFn != nil {
		return m.SumAcceptedFn(ctx, loanID)
	}
	return decimal.Zero, nil
}
