package lifecycle

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"loanfund-backend/internal/domain/audit"
	"loanfund-backend/internal/domain/loan"
	"loanfund-backend/internal/domain/uow"
	"loanfund-backend/internal/notify"
	"loanfund-backend/internal/usecase/eligibility"
	"loanfund-backend/pkg/id"

	"github.com/shopspring/decimal"
)

// Usecase drives the loan state machine:
//
//	pending --approve--> approved --payments--> closed
//	pending --reject---> rejected
//
// rejected and closed are terminal. Approvals re-check eligibility; bypassing
// a failing evaluation requires an override with a reason and writes an audit
// entry in the same transaction.
type Usecase struct {
	uow      uow.UnitOfWork
	audits   audit.Repository
	notifier notify.Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewUsecase(u uow.UnitOfWork, audits audit.Repository, notifier notify.Notifier, log *slog.Logger) *Usecase {
	return &Usecase{
		uow:      u,
		audits:   audits,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source; tests only.
func (u *Usecase) WithClock(now func() time.Time) *Usecase { u.now = now; return u }

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

type DecideInput struct {
	LoanID   string
	AdminID  string
	Action   Action
	Reason   string
	Override bool
}

type DecisionDTO struct {
	LoanID       string     `json:"loan_id"`
	Status       string     `json:"status"`
	DecidedBy    string     `json:"decided_by"`
	Override     bool       `json:"override"`
	ApprovalDate *time.Time `json:"approval_date,omitempty"`
}

// Decide applies an admin approve/reject to a pending loan.
func (u *Usecase) Decide(ctx context.Context, in DecideInput) (*DecisionDTO, error) {
	switch in.Action {
	case ActionApprove:
		return u.approve(ctx, in)
	case ActionReject:
		return u.reject(ctx, in)
	default:
		return nil, loan.NewValidationError("action", "must be approve or reject, got %q", in.Action)
	}
}

func (u *Usecase) approve(ctx context.Context, in DecideInput) (*DecisionDTO, error) {
	var (
		dto   *DecisionDTO
		event *notify.Event
	)
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.LoanRequest) error {
		if l.Status != loan.StatusPending {
			if l.Status == loan.StatusApproved {
				return loan.ErrAlreadyDecided
			}
			return loan.ErrInvalidTransition
		}

		m, err := r.Members.GetByMemberIDForUpdate(ctx, l.MemberID)
		if err != nil {
			return err
		}

		// the hard ceiling holds even under override
		maxAmount := eligibility.MaxLoanAmount(m.Balance)
		if l.RequestedAmount.GreaterThan(maxAmount) {
			return loan.NewValidationError("amount",
				"requested %s exceeds the maximum loan amount %s", l.RequestedAmount, maxAmount)
		}

		now := u.now()
		snap, err := eligibility.LoadExcludingLoan(ctx, r, m, l.LoanID, now)
		if err != nil {
			return err
		}
		res := eligibility.Evaluate(snap)

		if !res.Eligible {
			if !in.Override {
				return &loan.EligibilityError{
					FailedRules:   res.FailedRules(),
					Messages:      res.Messages(),
					MaxLoanAmount: res.MaxLoanAmount,
				}
			}
			if strings.TrimSpace(in.Reason) == "" {
				return loan.NewValidationError("reason", "override requires a non-empty reason")
			}
			// approval must not proceed without the audit trail
			entry := &audit.OverrideAuditEntry{
				AuditID:     id.NewID32(),
				AdminID:     in.AdminID,
				MemberID:    l.MemberID,
				LoanID:      l.LoanID,
				FailedRules: strings.Join(res.FailedRules(), ","),
				Reason:      in.Reason,
			}
			if err := r.Audit.Append(ctx, entry); err != nil {
				return err
			}
			l.AdminOverride = true
			reason := in.Reason
			l.OverrideReason = &reason
		}

		approvedAt := now
		l.Status = loan.StatusApproved
		l.ApprovalDate = &approvedAt
		l.DecidingAdminID = in.AdminID
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		dto = &DecisionDTO{
			LoanID:       l.LoanID,
			Status:       string(l.Status),
			DecidedBy:    in.AdminID,
			Override:     l.AdminOverride,
			ApprovalDate: l.ApprovalDate,
		}
		event = &notify.Event{Type: notify.EventLoanApproved, LoanID: l.LoanID, MemberID: l.MemberID, At: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.notifier.Publish(ctx, *event)
	return dto, nil
}

func (u *Usecase) reject(ctx context.Context, in DecideInput) (*DecisionDTO, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, loan.NewValidationError("reason", "rejection requires a non-empty reason")
	}

	var (
		dto   *DecisionDTO
		event *notify.Event
	)
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.LoanRequest) error {
		if l.Status != loan.StatusPending {
			return loan.ErrInvalidTransition
		}
		l.Status = loan.StatusRejected
		l.Active = nil
		l.DecidingAdminID = in.AdminID
		l.Notes = in.Reason
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = &DecisionDTO{LoanID: l.LoanID, Status: string(l.Status), DecidedBy: in.AdminID}
		event = &notify.Event{Type: notify.EventLoanRejected, LoanID: l.LoanID, MemberID: l.MemberID, Detail: in.Reason, At: u.now()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.notifier.Publish(ctx, *event)
	return dto, nil
}

type PaymentInput struct {
	LoanID   string
	MemberID string
	Amount   decimal.Decimal
	Memo     string
	// AdminID set means the payment is entered by an admin and lands accepted;
	// self-service payments start pending.
	AdminID string
}

type PaymentDTO struct {
	PaymentID string          `json:"payment_id"`
	LoanID    string          `json:"loan_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Remaining decimal.Decimal `json:"remaining"`
	Closed    bool            `json:"closed"`
}

// RecordPayment books a repayment against an approved loan. The minimum is
// the installment amount, except a final payment may be exactly the remaining
// balance; overpayment is rejected. An accepted payment that settles the loan
// closes it in the same transaction.
func (u *Usecase) RecordPayment(ctx context.Context, in PaymentInput) (*PaymentDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, loan.NewValidationError("amount", "must be positive, got %s", in.Amount)
	}

	var (
		dto    *PaymentDTO
		events []notify.Event
	)
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.LoanRequest) error {
		if l.Status != loan.StatusApproved {
			return loan.ErrInvalidTransition
		}
		if in.MemberID != "" && in.MemberID != l.MemberID {
			return loan.NewValidationError("member_id", "loan %s does not belong to member %s", in.LoanID, in.MemberID)
		}

		// totalPaid recomputed under the loan lock, shared discipline with the
		// auto-close sweep
		paid, err := r.Payments.SumAccepted(ctx, l.ID)
		if err != nil {
			return err
		}
		remaining := l.RequestedAmount.Sub(paid)

		if in.Amount.GreaterThan(remaining) {
			return loan.NewValidationError("amount",
				"%s exceeds the remaining balance %s", in.Amount, remaining)
		}
		if in.Amount.LessThan(l.InstallmentAmount) && !in.Amount.Equal(remaining) {
			return loan.NewValidationError("amount",
				"%s is below the minimum installment %s and does not settle the remaining %s",
				in.Amount, l.InstallmentAmount, remaining)
		}

		now := u.now()
		status := loan.PaymentPending
		if in.AdminID != "" {
			status = loan.PaymentAccepted
		}
		p := &loan.LoanPayment{
			PaymentID:       id.NewID32(),
			LoanID:          l.ID,
			MemberID:        l.MemberID,
			Amount:          in.Amount,
			Status:          status,
			PaidAt:          now,
			DecidingAdminID: in.AdminID,
			Memo:            in.Memo,
		}
		if err := r.Payments.Create(ctx, p); err != nil {
			return err
		}

		closed := false
		if status == loan.PaymentAccepted {
			paid = paid.Add(in.Amount)
			events = append(events, notify.Event{
				Type: notify.EventPaymentAccepted, LoanID: l.LoanID, MemberID: l.MemberID,
				Detail: in.Amount.String(), At: now,
			})
			if paid.GreaterThanOrEqual(l.RequestedAmount) {
				if err := closeLoan(ctx, r, l, now); err != nil {
					return err
				}
				closed = true
				events = append(events, notify.Event{
					Type: notify.EventLoanClosed, LoanID: l.LoanID, MemberID: l.MemberID, At: now,
				})
			}
		}

		dto = &PaymentDTO{
			PaymentID: p.PaymentID,
			LoanID:    l.LoanID,
			Amount:    p.Amount,
			Status:    string(p.Status),
			TotalPaid: paid,
			Remaining: l.RequestedAmount.Sub(paid),
			Closed:    closed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		u.notifier.Publish(ctx, e)
	}
	return dto, nil
}

func closeLoan(ctx context.Context, r uow.Repos, l *loan.LoanRequest, now time.Time) error {
	l.Status = loan.StatusClosed
	l.ClosureDate = &now
	l.Active = nil
	return r.Loans.Save(ctx, l)
}

// RunAutoCloseSweep closes every approved loan whose accepted payments cover
// its amount. Idempotent: each candidate is re-checked under its own loan
// lock, so a second run (or a concurrent payment acceptance) finds nothing
// left to close.
func (u *Usecase) RunAutoCloseSweep(ctx context.Context) ([]string, error) {
	var candidates []string
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ids, err := r.Loans.ListApprovedLoanIDs(ctx)
		if err != nil {
			return err
		}
		candidates = ids
		return nil
	})
	if err != nil {
		return nil, err
	}

	var closed []string
	for _, loanID := range candidates {
		err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.LoanRequest) error {
			if l.Status != loan.StatusApproved {
				// settled since the scan; nothing to do
				return nil
			}
			paid, err := r.Payments.SumAccepted(ctx, l.ID)
			if err != nil {
				return err
			}
			if paid.LessThan(l.RequestedAmount) {
				return nil
			}
			now := u.now()
			if err := closeLoan(ctx, r, l, now); err != nil {
				return err
			}
			closed = append(closed, l.LoanID)
			return nil
		})
		if err != nil {
			return closed, err
		}
	}

	for _, loanID := range closed {
		u.notifier.Publish(ctx, notify.Event{Type: notify.EventLoanClosed, LoanID: loanID, At: u.now()})
	}
	if len(closed) > 0 {
		u.log.Info("auto-close sweep finished", "closed", len(closed))
	}
	return closed, nil
}

// ListOverrideAudit returns override audit entries matching the filter.
func (u *Usecase) ListOverrideAudit(ctx context.Context, f audit.Filter) ([]audit.OverrideAuditEntry, error) {
	return u.audits.List(ctx, f)
}
