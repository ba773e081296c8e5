package lifecycle

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"loanfund-backend/internal/adapter/repository/mysql"
	"loanfund-backend/internal/domain/audit"
	"loanfund-backend/internal/domain/loan"
	"loanfund-backend/internal/notify"
	"loanfund-backend/internal/testutil/auditmock"
	"loanfund-backend/internal/testutil/dbtest"
	"loanfund-backend/internal/usecase/eligibility"
	"loanfund-backend/pkg/id"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type spyNotifier struct {
	events []notify.Event
}

func (s *spyNotifier) Publish(_ context.Context, e notify.Event) {
	s.events = append(s.events, e)
}

func (s *spyNotifier) types() []string {
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	uc    *Usecase
	db    *gorm.DB
	spy   *spyNotifier
	loans *mysql.LoanRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.Open(t)
	spy := &spyNotifier{}
	uc := NewUsecase(
		mysql.NewGormUoW(db),
		mysql.NewAuditRepository(db),
		spy,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return fixture{uc: uc, db: db, spy: spy, loans: mysql.NewLoanRepository(db)}
}

// seedEligible creates a member passing every rule plus one loan row.
func (f fixture) seedEligible(t *testing.T, balance, amount, installment float64, status string) (memberID, loanID string) {
	t.Helper()
	memberID = id.NewID32()
	loanID = id.NewID32()
	dbtest.SeedMember(t, f.db, dbtest.MemberSeed{MemberID: memberID, Balance: balance})
	dbtest.SeedSubscription(t, f.db, memberID, 240, time.Now().UTC().AddDate(0, -1, 0))
	dbtest.SeedLoan(t, f.db, dbtest.LoanSeed{
		LoanID: loanID, MemberID: memberID, Amount: amount, Installment: installment, Status: status,
	})
	return memberID, loanID
}

func TestDecide_ApproveHappyPath(t *testing.T) {
	f := newFixture(t)
	_, loanID := f.seedEligible(t, 1000, 2000, 30, "pending")
	adminID := id.NewID32()

	got, err := f.uc.Decide(context.Background(), DecideInput{
		LoanID: loanID, AdminID: adminID, Action: ActionApprove,
	})
	require.NoError(t, err)

	assert.Equal(t, string(loan.StatusApproved), got.Status)
	assert.Equal(t, adminID, got.DecidedBy)
	assert.False(t, got.Override)
	require.NotNil(t, got.ApprovalDate)

	l, err := f.loans.GetByLoanID(context.Background(), loanID)
	require.NoError(t, err)
	assert.Equal(t, loan.StatusApproved, l.Status)
	assert.True(t, l.IsActive(), "approved loans stay active")

	assert.Equal(t, []string{notify.EventLoanApproved}, f.spy.types())
}

func TestDecide_ApproveIneligibleWithoutOverride(t *testing.T) {
	f := newFixture(t)
	memberID := id.NewID32()
	loanID := id.NewID32()
	// no subscriptions seeded, rule fails at approval time
	dbtest.SeedMember(t, f.db, dbtest.MemberSeed{MemberID: memberID, Balance: 600})
	dbtest.SeedLoan(t, f.db, dbtest.LoanSeed{LoanID: loanID, MemberID: memberID, Amount: 500, Installment: 20})

	_, err := f.uc.Decide(context.Background(), DecideInput{
		LoanID: loanID, AdminID: id.NewID32(), Action: ActionApprove,
	})

	var eligErr *loan.EligibilityError
	require.ErrorAs(t, err, &eligErr)
	assert.Contains(t, eligErr.FailedRules, string(eligibility.RuleSubscriptionPaid))

	l, err := f.loans.GetByLoanID(context.Background(), loanID)
	require.NoError(t, err)
	assert.Equal(t, loan.StatusPending, l.Status, "failed approval leaves the loan pending")
	assert.Empty(t, f.spy.events)
}

func TestDecide_OverrideRequiresReason(t *testing.T) {
	f := newFixture(t)
	memberID := id.NewID32()
	loanID := id.NewID32()
	dbtest.SeedMember(t, f.db, dbtest.MemberSeed{MemberID: memberID, Balance: 600})
	dbtest.SeedLoan(t, f.db, dbtest.LoanSeed{LoanID: loanID, MemberID: memberID, Amount: 500, Installment: 20})

	_, err := f.uc.Decide(context.Background(), DecideInput{
		LoanID: loanID, AdminID: id.NewID32(), Action: ActionApprove, Override: true, Reason: "   ",
	})

	var valErr *loan.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "reason", valErr.Field)
}

func TestDecide_OverrideApprovesAndWritesAudit(t *testing.T) {
	f := newFixture(t)
	memberID := id.NewID32()
	loanID := id.NewID32()
	adminID := id.NewID32()
	// fails subscription-paid only
	dbtest.SeedMember(t, f.db, dbtest.MemberSeed{MemberID: memberID, Balance: 600})
	dbtest.SeedLoan(t, f.db, dbtest.LoanSeed{LoanID: loanID, MemberID: memberID, Amount: 500, Installment: 20})

	got, err := f.uc.Decide(context.Background(), DecideInput{
		LoanID: loanID, AdminID: adminID, Action: ActionApprove,
		Override: true, Reason: "board-approved hardship exception",
	})
	require.NoError(t, err)
	assert.True(t, got.Override)
	assert.Equal(t, string(loan.StatusApproved), got.Status)

	entries, err := f.uc.ListOverrideAudit(context.Background(), audit.Filter{LoanID: loanID})
	require.NoError(t, err)
	require.Len(t, entries, 1, "exactly one audit entry per override")
	assert.Equal(t, adminID, entries[0].AdminID)
	assert.Equal(t, memberID, entries[0].MemberID)
	assert.Contains(t, entries[0].FailedRules, string(eligibility.RuleSubscriptionPaid))
	assert.Equal(t, "board-approved hardship exception", entries[0].Reason)

	l, err := f.loans.GetByLoanID(context.Background(), loanID)
	require.NoError(t, err)
	assert.True(t, l.AdminOverride)
	require.NotNil(t, l.OverrideReason)
}

func TestDecide_CeilingHoldsUnderOverride(t *testing.T) {
	f := newFixture(t)
	memberID := id.NewID32()
	loanID := id.NewID32()
	// max for balance 600 is 1800; the 5000 request can never be approved
	dbtest.SeedMember(t, f.db, dbtest.MemberSeed{MemberID: memberID, Balance: 600})
	dbtest.SeedLoan(t, f.db, dbtest.LoanSeed{LoanID: loanID, MemberID: memberID, Amount: 5000, Installment: 30})

	_, err := f.uc.Decide(context.Background(), DecideInput{
		LoanID: loanID, AdminID: id.NewID32(), Action: ActionApprove,
		Override: true, Reason: "trying anyway",
	})

	var valErr *loan.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "amount", valErr.Field)
}

func TestDecide_ApproveTwice(t *testing.T) {
	f := newFixture(t)
	_, loanID := f.seedEligible(t, 1000, 2000, 30, "pending")
	in := DecideInput{LoanID: loanID, AdminID: id.NewID32(), Action: ActionApprove}

	_, err := f.uc.Decide(context.Background(), in)
	require.NoError(t, err)

	_, err = f.uc.Decide(context.Background(), in)
	require.ErrorIs(t, err, loan.ErrAlreadyDecided)
}

func TestDecide_Reject(t *testing.T) {
	f := newFixture(t)
	memberID, loanID := f.seedEligible(t, 1000, 2000, 30, "pending")

	_, err := f.uc.Decide(context.Background(), DecideInput{
		LoanID: loanID, AdminID: id.NewID32(), Action: ActionReject,
	})
	var valErr *loan.ValidationError
	require.ErrorAs(t, err, &valErr, "rejection without a reason must fail")

	got, err := f.uc.Decide(context.Background(), DecideInput{
		LoanID: loanID, AdminID: id.NewID32(), Action: ActionReject, Reason: "incomplete documents",
	})
	require.NoError(t, err)
	assert.Equal(t, string(loan.StatusRejected), got.Status)

	// rejection releases the active slot
	n, err := f.loans.CountActiveByMemberID(context.Background(), memberID)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, []string{notify.EventLoanRejected}, f.spy.types())
}

func TestDecide_RejectNonPending(t *testing.T) {
	f := newFixture(t)
	_, loanID := f.seedEligible(t, 1000, 2000, 30, "approved")

	_, err := f.uc.Decide(context.Background(), DecideInput{
		LoanID: loanID, AdminID: id.NewID32(), Action: ActionReject, Reason: "too late",
	})
	require.ErrorIs(t, err, loan.ErrInvalidTransition)
}

func TestDecide_UnknownAction(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Decide(context.Background(), DecideInput{
		LoanID: id.NewID32(), AdminID: id.NewID32(), Action: "escalate",
	})
	var valErr *loan.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestRecordPayment_AdminInstallment(t *testing.T) {
	f := newFixture(t)
	_, loanID := f.seedEligible(t, 1000, 100, 30, "approved")

	got, err := f.uc.RecordPayment(context.Background(), PaymentInput{
		LoanID: loanID, Amount: decimal.NewFromInt(30), AdminID: id.NewID32(),
	})
	require.NoError(t, err)

	assert.Equal(t, string(loan.PaymentAccepted), got.Status)
	assert.True(t, got.TotalPaid.Equal(decimal.NewFromInt(30)))
	assert.True(t, got.Remaining.Equal(decimal.NewFromInt(70)))
	assert.False(t, got.Closed)
	assert.Equal(t, []string{notify.EventPaymentAccepted}, f.spy.types())
}

func TestRecordPayment_SelfServiceStaysPending(t *testing.T) {
	f := newFixture(t)
	memberID, loanID := f.seedEligible(t, 1000, 100, 30, "approved")

	got, err := f.uc.RecordPayment(context.Background(), PaymentInput{
		LoanID: loanID, MemberID: memberID, Amount: decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	assert.Equal(t, string(loan.PaymentPending), got.Status)
	assert.True(t, got.TotalPaid.IsZero(), "pending payments do not count toward settlement")
	assert.False(t, got.Closed)
	assert.Empty(t, f.spy.events)
}

func TestRecordPayment_BelowInstallmentRejected(t *testing.T) {
	f := newFixture(t)
	_, loanID := f.seedEligible(t, 1000, 100, 30, "approved")

	_, err := f.uc.RecordPayment(context.Background(), PaymentInput{
		LoanID: loanID, Amount: decimal.NewFromInt(10), AdminID: id.NewID32(),
	})
	var valErr *loan.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestRecordPayment_FinalBelowInstallmentSettlesAndCloses(t *testing.T) {
	f := newFixture(t)
	_, loanID := f.seedEligible(t, 1000, 100, 30, "approved")
	adminID := id.NewID32()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.uc.RecordPayment(ctx, PaymentInput{
			LoanID: loanID, Amount: decimal.NewFromInt(30), AdminID: adminID,
		})
		require.NoError(t, err)
	}

	// 10 remaining: below the installment but exactly the balance
	got, err := f.uc.RecordPayment(ctx, PaymentInput{
		LoanID: loanID, Amount: decimal.NewFromInt(10), AdminID: adminID,
	})
	require.NoError(t, err)

	assert.True(t, got.Closed)
	assert.True(t, got.Remaining.IsZero())

	l, err := f.loans.GetByLoanID(ctx, loanID)
	require.NoError(t, err)
	assert.Equal(t, loan.StatusClosed, l.Status)
	require.NotNil(t, l.ClosureDate)
	assert.False(t, l.IsActive())

	last := f.spy.types()[len(f.spy.types())-1]
	assert.Equal(t, notify.EventLoanClosed, last)
}

func TestRecordPayment_OverpaymentRejected(t *testing.T) {
	f := newFixture(t)
	_, loanID := f.seedEligible(t, 1000, 100, 30, "approved")
	ctx := context.Background()
	adminID := id.NewID32()

	for i := 0; i < 3; i++ {
		_, err := f.uc.RecordPayment(ctx, PaymentInput{
			LoanID: loanID, Amount: decimal.NewFromInt(30), AdminID: adminID,
		})
		require.NoError(t, err)
	}

	_, err := f.uc.RecordPayment(ctx, PaymentInput{
		LoanID: loanID, Amount: decimal.NewFromInt(20), AdminID: adminID,
	})
	var valErr *loan.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "amount", valErr.Field)
}

func TestRecordPayment_WrongMember(t *testing.T) {
	f := newFixture(t)
	_, loanID := f.seedEligible(t, 1000, 100, 30, "approved")

	_, err := f.uc.RecordPayment(context.Background(), PaymentInput{
		LoanID: loanID, MemberID: id.NewID32(), Amount: decimal.NewFromInt(30),
	})
	var valErr *loan.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "member_id", valErr.Field)
}

func TestRecordPayment_NotApproved(t *testing.T) {
	f := newFixture(t)
	_, loanID := f.seedEligible(t, 1000, 100, 30, "pending")

	_, err := f.uc.RecordPayment(context.Background(), PaymentInput{
		LoanID: loanID, Amount: decimal.NewFromInt(30), AdminID: id.NewID32(),
	})
	require.ErrorIs(t, err, loan.ErrInvalidTransition)
}

func TestRunAutoCloseSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// settled but still approved, should be picked up
	settledMember, settledLoan := f.seedEligible(t, 1000, 100, 30, "approved")
	settledID := dbtestLoanID(t, f.db, settledLoan)
	dbtest.SeedPayment(t, f.db, settledID, settledMember, 100, "accepted")

	// partially paid, must stay open
	openMember, openLoan := f.seedEligible(t, 1000, 200, 30, "approved")
	openID := dbtestLoanID(t, f.db, openLoan)
	dbtest.SeedPayment(t, f.db, openID, openMember, 60, "accepted")
	// pending payments never count
	dbtest.SeedPayment(t, f.db, openID, openMember, 140, "pending")

	closed, err := f.uc.RunAutoCloseSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{settledLoan}, closed)

	l, err := f.loans.GetByLoanID(ctx, settledLoan)
	require.NoError(t, err)
	assert.Equal(t, loan.StatusClosed, l.Status)

	l, err = f.loans.GetByLoanID(ctx, openLoan)
	require.NoError(t, err)
	assert.Equal(t, loan.StatusApproved, l.Status)

	// second run finds nothing
	closed, err = f.uc.RunAutoCloseSweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, closed)
}

func TestListOverrideAudit_PassesFilterThrough(t *testing.T) {
	audits := &auditmock.Repo{}
	var gotFilter audit.Filter
	audits.ListFn = func(ctx context.Context, f audit.Filter) ([]audit.OverrideAuditEntry, error) {
		gotFilter = f
		return []audit.OverrideAuditEntry{{AuditID: id.NewID32()}}, nil
	}
	uc := NewUsecase(nil, audits, notify.Noop{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	want := audit.Filter{AdminID: id.NewID32(), Limit: 10}
	entries, err := uc.ListOverrideAudit(context.Background(), want)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, want, gotFilter)
}

// dbtestLoanID resolves a loan's numeric key for payment seeding.
func dbtestLoanID(t *testing.T, db *gorm.DB, loanID string) uint64 {
	t.Helper()
	var row struct{ ID uint64 }
	if err := db.Table("loan_requests").Select("id").Where("loan_id = ?", loanID).Take(&row).Error; err != nil {
		t.Fatalf("resolve loan id: %v", err)
	}
	return row.ID
}
