package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	loanDomain "loanfund-backend/internal/domain/loan"
	"loanfund-backend/internal/testutil/dbtest"
	"loanfund-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newLoan(memberID string, status loanDomain.Status) *loanDomain.LoanRequest {
	l := &loanDomain.LoanRequest{
		LoanID:            id.NewID32(),
		MemberID:          memberID,
		RequestedAmount:   decimal.NewFromInt(2000),
		InstallmentAmount: decimal.NewFromInt(30),
		ImpliedPeriod:     67,
		Status:            status,
		RequestDate:       time.Now().UTC(),
	}
	if status == loanDomain.StatusPending || status == loanDomain.StatusApproved {
		l.Active = loanDomain.ActiveMark()
	}
	return l
}

func TestLoanRepository_CreateAndGet(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := newLoan(id.NewID32(), loanDomain.StatusPending)
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByLoanID(ctx, l.LoanID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MemberID != l.MemberID || got.Status != loanDomain.StatusPending {
		t.Fatalf("got %+v", got)
	}
	if !got.RequestedAmount.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("amount round-trip: %s", got.RequestedAmount)
	}
	if !got.IsActive() {
		t.Fatal("pending loan should be active")
	}

	if _, err := repo.GetByLoanID(ctx, id.NewID32()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
}

func TestLoanRepository_CountActive(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	memberID := id.NewID32()

	closedAt := time.Now().UTC().AddDate(0, -2, 0)
	dbtest.SeedLoan(t, db, dbtest.LoanSeed{LoanID: id.NewID32(), MemberID: memberID, Amount: 100, Installment: 20, Status: "rejected"})
	dbtest.SeedLoan(t, db, dbtest.LoanSeed{LoanID: id.NewID32(), MemberID: memberID, Amount: 100, Installment: 20, Status: "closed", ClosedAt: &closedAt})

	n, err := repo.CountActiveByMemberID(ctx, memberID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("terminal rows counted as active: %d", n)
	}

	active := id.NewID32()
	dbtest.SeedLoan(t, db, dbtest.LoanSeed{LoanID: active, MemberID: memberID, Amount: 100, Installment: 20, Status: "approved"})

	n, err = repo.CountActiveByMemberID(ctx, memberID)
	if err != nil || n != 1 {
		t.Fatalf("want 1 active, got %d (%v)", n, err)
	}
	n, err = repo.CountActiveByMemberIDForUpdate(ctx, memberID)
	if err != nil || n != 1 {
		t.Fatalf("locked count: want 1, got %d (%v)", n, err)
	}

	// a loan never counts against itself
	n, err = repo.CountOtherActiveByMemberID(ctx, memberID, active)
	if err != nil || n != 0 {
		t.Fatalf("self-excluding count: want 0, got %d (%v)", n, err)
	}
	n, err = repo.CountOtherActiveByMemberID(ctx, memberID, id.NewID32())
	if err != nil || n != 1 {
		t.Fatalf("excluding unrelated id: want 1, got %d (%v)", n, err)
	}
}

func TestLoanRepository_UniqueActiveIndex(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	memberID := id.NewID32()

	if err := repo.Create(ctx, newLoan(memberID, loanDomain.StatusPending)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := repo.Create(ctx, newLoan(memberID, loanDomain.StatusPending))
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("want ErrDuplicatedKey for a second active loan, got %v", err)
	}

	// inactive rows never collide: the active column is NULL
	if err := repo.Create(ctx, newLoan(memberID, loanDomain.StatusRejected)); err != nil {
		t.Fatalf("rejected row should not collide: %v", err)
	}
	if err := repo.Create(ctx, newLoan(memberID, loanDomain.StatusRejected)); err != nil {
		t.Fatalf("second rejected row should not collide: %v", err)
	}
}

func TestLoanRepository_LatestClosureDate(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	memberID := id.NewID32()

	got, err := repo.LatestClosureDate(ctx, memberID)
	if err != nil {
		t.Fatalf("empty: %v", err)
	}
	if got != nil {
		t.Fatalf("want nil without closed loans, got %v", got)
	}

	older := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	dbtest.SeedLoan(t, db, dbtest.LoanSeed{LoanID: id.NewID32(), MemberID: memberID, Amount: 100, Installment: 20, Status: "closed", ClosedAt: &older})
	dbtest.SeedLoan(t, db, dbtest.LoanSeed{LoanID: id.NewID32(), MemberID: memberID, Amount: 100, Installment: 20, Status: "closed", ClosedAt: &newer})

	got, err = repo.LatestClosureDate(ctx, memberID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got == nil || !got.Equal(newer) {
		t.Fatalf("want %v, got %v", newer, got)
	}
}

func TestLoanRepository_ListApprovedLoanIDs(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	a := id.NewID32()
	b := id.NewID32()
	dbtest.SeedLoan(t, db, dbtest.LoanSeed{LoanID: a, MemberID: id.NewID32(), Amount: 100, Installment: 20, Status: "approved"})
	dbtest.SeedLoan(t, db, dbtest.LoanSeed{LoanID: id.NewID32(), MemberID: id.NewID32(), Amount: 100, Installment: 20, Status: "pending"})
	dbtest.SeedLoan(t, db, dbtest.LoanSeed{LoanID: b, MemberID: id.NewID32(), Amount: 100, Installment: 20, Status: "approved"})

	ids, err := repo.ListApprovedLoanIDs(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Fatalf("want [%s %s] in insert order, got %v", a, b, ids)
	}
}

func TestPaymentRepository_SumAccepted(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()
	memberID := id.NewID32()

	loanID := dbtest.SeedLoan(t, db, dbtest.LoanSeed{LoanID: id.NewID32(), MemberID: memberID, Amount: 100, Installment: 20, Status: "approved"})

	sum, err := repo.SumAccepted(ctx, loanID)
	if err != nil {
		t.Fatalf("empty sum: %v", err)
	}
	if !sum.IsZero() {
		t.Fatalf("want zero for no payments, got %s", sum)
	}

	dbtest.SeedPayment(t, db, loanID, memberID, 30, "accepted")
	dbtest.SeedPayment(t, db, loanID, memberID, 30, "accepted")
	dbtest.SeedPayment(t, db, loanID, memberID, 40, "pending")
	dbtest.SeedPayment(t, db, loanID, memberID, 15, "rejected")

	sum, err = repo.SumAccepted(ctx, loanID)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if !sum.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("only accepted rows count, want 60, got %s", sum)
	}

	got, err := repo.ListByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("want 4 payments, got %d", len(got))
	}
}
