package uow

import (
	"context"

	"loanfund-backend/internal/domain/audit"
	"loanfund-backend/internal/domain/loan"
	"loanfund-backend/internal/domain/member"
)

type Repos struct {
	Members  member.Repository
	Loans    loan.Repository
	Payments loan.PaymentRepository
	Audit    audit.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the member row first, then pass it in — this is the
	// admission-control serialization point for loan submissions
	WithinMemberTx(ctx context.Context, memberID string, fn func(r Repos, m *member.Member) error) error
	// convenience: lock the loan row first, then pass it in — used by the
	// lifecycle paths (decide, payments, auto-close)
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.LoanRequest) error) error
}
