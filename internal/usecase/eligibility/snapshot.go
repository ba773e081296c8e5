package eligibility

import (
	"context"
	"time"

	"loanfund-backend/internal/domain/member"
	"loanfund-backend/internal/domain/uow"
)

// Load assembles a snapshot from the given repositories. Callers that need
// serialization (the submit path) must pass repositories bound to a
// transaction that already holds the member row lock; the active-loan count
// is read with a locking query there as well.
func Load(ctx context.Context, r uow.Repos, m *member.Member, now time.Time) (Snapshot, error) {
	return load(ctx, r, m, "", now)
}

// LoadExcludingLoan is the approval-time variant: the loan being decided must
// not count against its own no-active-loan rule.
func LoadExcludingLoan(ctx context.Context, r uow.Repos, m *member.Member, excludeLoanID string, now time.Time) (Snapshot, error) {
	return load(ctx, r, m, excludeLoanID, now)
}

func load(ctx context.Context, r uow.Repos, m *member.Member, excludeLoanID string, now time.Time) (Snapshot, error) {
	var (
		active int64
		err    error
	)
	if excludeLoanID == "" {
		active, err = r.Loans.CountActiveByMemberIDForUpdate(ctx, m.MemberID)
	} else {
		active, err = r.Loans.CountOtherActiveByMemberID(ctx, m.MemberID, excludeLoanID)
	}
	if err != nil {
		return Snapshot{}, err
	}

	since := now.AddDate(0, -SubscriptionMonths, 0)
	paid, err := r.Members.SumAcceptedSubscriptions(ctx, m.MemberID, since)
	if err != nil {
		return Snapshot{}, err
	}

	lastClosure, err := r.Loans.LatestClosureDate(ctx, m.MemberID)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		MemberID:         m.MemberID,
		Balance:          m.Balance,
		IsBlocked:        m.IsBlocked,
		JoiningFeeStatus: m.JoiningFeeStatus,
		RegistrationDate: m.RegistrationDate,
		ActiveLoanCount:  active,
		SubscriptionPaid: paid,
		LastClosureDate:  lastClosure,
		Now:              now,
	}, nil
}
