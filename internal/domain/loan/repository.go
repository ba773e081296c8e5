package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, l *LoanRequest) error
	Save(ctx context.Context, l *LoanRequest) error
	GetByLoanID(ctx context.Context, loanID string) (*LoanRequest, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*LoanRequest, error)

	// CountActiveByMemberID counts rows with status pending/approved and no
	// closure date. The ForUpdate variant locks the matching rows.
	CountActiveByMemberID(ctx context.Context, memberID string) (int64, error)
	CountActiveByMemberIDForUpdate(ctx context.Context, memberID string) (int64, error)
	// CountOtherActiveByMemberID is the approve-time variant that ignores the
	// loan being decided.
	CountOtherActiveByMemberID(ctx context.Context, memberID, excludeLoanID string) (int64, error)

	// LatestClosureDate returns the most recent closure among the member's
	// closed loans, or nil when none exist.
	LatestClosureDate(ctx context.Context, memberID string) (*time.Time, error)

	// ListApprovedLoanIDs feeds the auto-close sweep.
	ListApprovedLoanIDs(ctx context.Context) ([]string, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *LoanPayment) error
	ListByLoanID(ctx context.Context, loanID uint64) ([]LoanPayment, error)
	// SumAccepted totals accepted payments for the loan (its total paid).
	SumAccepted(ctx context.Context, loanID uint64) (decimal.Decimal, error)
}
