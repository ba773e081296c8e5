package loanrequest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"loanfund-backend/internal/domain/loan"
	"loanfund-backend/internal/domain/member"
	"loanfund-backend/internal/domain/uow"
	"loanfund-backend/internal/usecase/eligibility"
	"loanfund-backend/internal/usecase/terms"
	"loanfund-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Usecase serializes loan submissions. The at-most-one-active-loan invariant
// rests on four layered defenses: the member row lock, the locked re-check of
// the active count, an unlocked re-verification directly before the insert,
// and the unique (member_id, active) index as the last line.
type Usecase struct {
	uow     uow.UnitOfWork
	members member.Repository
	loans   loan.Repository
	log     *slog.Logger
	now     func() time.Time
}

func NewUsecase(u uow.UnitOfWork, members member.Repository, loans loan.Repository, log *slog.Logger) *Usecase {
	return &Usecase{
		uow:     u,
		members: members,
		loans:   loans,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source; tests only.
func (u *Usecase) WithClock(now func() time.Time) *Usecase { u.now = now; return u }

type LoanDTO struct {
	LoanID            string          `json:"loan_id"`
	MemberID          string          `json:"member_id"`
	RequestedAmount   decimal.Decimal `json:"requested_amount"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	ImpliedPeriod     int             `json:"implied_period"`
	Status            string          `json:"status"`
	RequestDate       time.Time       `json:"request_date"`
}

func toDTO(l *loan.LoanRequest) *LoanDTO {
	return &LoanDTO{
		LoanID:            l.LoanID,
		MemberID:          l.MemberID,
		RequestedAmount:   l.RequestedAmount,
		InstallmentAmount: l.InstallmentAmount,
		ImpliedPeriod:     l.ImpliedPeriod,
		Status:            string(l.Status),
		RequestDate:       l.RequestDate,
	}
}

// Submit runs the whole admission decision in one transaction. On success the
// persisted pending request is returned with its computed terms; otherwise a
// typed error: *loan.EligibilityError, *loan.ValidationError on bad amounts,
// *loan.ConflictError on a detected duplicate race.
func (u *Usecase) Submit(ctx context.Context, memberID string, amount decimal.Decimal) (*LoanDTO, error) {
	if !amount.IsPositive() {
		return nil, loan.NewValidationError("amount", "must be positive, got %s", amount)
	}

	var dto *LoanDTO
	err := u.uow.WithinMemberTx(ctx, memberID, func(r uow.Repos, m *member.Member) error {
		now := u.now()

		// all facts re-read against the locked member row
		snap, err := eligibility.Load(ctx, r, m, now)
		if err != nil {
			return err
		}
		res := eligibility.Evaluate(snap)
		if !res.Eligible {
			return &loan.EligibilityError{
				FailedRules:   res.FailedRules(),
				Messages:      res.Messages(),
				MaxLoanAmount: res.MaxLoanAmount,
			}
		}
		if amount.GreaterThan(res.MaxLoanAmount) {
			return loan.NewValidationError("amount",
				"%s exceeds the maximum loan amount %s", amount, res.MaxLoanAmount)
		}

		t, err := terms.Compute(amount, m.Balance)
		if err != nil {
			return err
		}

		// belt-and-suspenders: one more unlocked count directly before the
		// insert; if it trips, a lock-scope bug let a concurrent insert
		// through and we abort rather than risk the invariant
		n, err := r.Loans.CountActiveByMemberID(ctx, memberID)
		if err != nil {
			return err
		}
		if n > 0 {
			u.log.Warn("duplicate submission race detected at pre-insert check",
				"member_id", memberID, "active_count", n)
			return &loan.ConflictError{Reason: "a loan request for this member was just created"}
		}

		l := &loan.LoanRequest{
			LoanID:            id.NewID32(),
			MemberID:          memberID,
			RequestedAmount:   amount,
			InstallmentAmount: t.Installment,
			ImpliedPeriod:     t.ImpliedPeriod,
			Status:            loan.StatusPending,
			Active:            loan.ActiveMark(),
			RequestDate:       now,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				u.log.Warn("duplicate submission hit the unique active index",
					"member_id", memberID)
				return &loan.ConflictError{Reason: "duplicate loan request"}
			}
			return err
		}

		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Get returns a single loan request by public id.
func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

// CheckEligibility evaluates the member outside any lock; results are
// advisory (for UI display) and re-verified under the lock on submit.
func (u *Usecase) CheckEligibility(ctx context.Context, memberID string) (*eligibility.Result, error) {
	m, err := u.members.GetByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	var res eligibility.Result
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		snap, err := eligibility.Load(ctx, r, m, u.now())
		if err != nil {
			return err
		}
		res = eligibility.Evaluate(snap)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ComputeTerms exposes the calculator for UI previews.
func (u *Usecase) ComputeTerms(loanAmount, balance decimal.Decimal) (*terms.Terms, error) {
	return terms.Compute(loanAmount, balance)
}
