// Package dbtest opens in-memory SQLite databases migrated with
// sqlite-safe shadow schemas (no MySQL enums), for repository and usecase
// tests that want real transactions and the real unique active index.
package dbtest

import (
	"testing"
	"time"

	"loanfund-backend/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newHexID() string { return id.NewID32() }

type memberSQLite struct {
	ID               uint64  `gorm:"primaryKey;column:id"`
	MemberID         string  `gorm:"size:32;uniqueIndex;column:member_id"`
	FullName         string  `gorm:"column:full_name"`
	Balance          float64 `gorm:"column:balance"`
	IsBlocked        bool    `gorm:"column:is_blocked"`
	JoiningFeeStatus string  `gorm:"type:text;column:joining_fee_status"`
	RegistrationDate time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (memberSQLite) TableName() string { return "members" }

type subscriptionSQLite struct {
	ID        uint64  `gorm:"primaryKey;column:id"`
	MemberID  string  `gorm:"size:32;column:member_id"`
	Amount    float64 `gorm:"column:amount"`
	Kind      string  `gorm:"type:text;column:kind"`
	Status    string  `gorm:"type:text;column:status"`
	PaidAt    time.Time
	CreatedAt time.Time
}

func (subscriptionSQLite) TableName() string { return "subscription_payments" }

type loanRequestSQLite struct {
	ID                uint64  `gorm:"primaryKey;column:id"`
	LoanID            string  `gorm:"size:32;uniqueIndex;column:loan_id"`
	MemberID          string  `gorm:"size:32;uniqueIndex:ux_loan_requests_member_active;column:member_id"`
	RequestedAmount   float64 `gorm:"column:requested_amount"`
	InstallmentAmount float64 `gorm:"column:installment_amount"`
	ImpliedPeriod     int     `gorm:"column:implied_period"`
	Status            string  `gorm:"type:text;column:status"`
	Active            *uint8  `gorm:"uniqueIndex:ux_loan_requests_member_active;column:active"`
	RequestDate       time.Time
	ApprovalDate      *time.Time
	ClosureDate       *time.Time
	DecidingAdminID   string `gorm:"column:deciding_admin_id"`
	AdminOverride     bool   `gorm:"column:admin_override"`
	OverrideReason    *string
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (loanRequestSQLite) TableName() string { return "loan_requests" }

type loanPaymentSQLite struct {
	ID              uint64  `gorm:"primaryKey;column:id"`
	PaymentID       string  `gorm:"size:32;uniqueIndex;column:payment_id"`
	LoanID          uint64  `gorm:"index;column:loan_id"`
	MemberID        string  `gorm:"size:32;column:member_id"`
	Amount          float64 `gorm:"column:amount"`
	Status          string  `gorm:"type:text;column:status"`
	PaidAt          time.Time
	DecidingAdminID string `gorm:"column:deciding_admin_id"`
	Memo            string
	CreatedAt       time.Time
}

func (loanPaymentSQLite) TableName() string { return "loan_payments" }

type auditSQLite struct {
	ID          uint64 `gorm:"primaryKey;column:id"`
	AuditID     string `gorm:"size:32;uniqueIndex;column:audit_id"`
	AdminID     string `gorm:"size:32;column:admin_id"`
	MemberID    string `gorm:"size:32;column:member_id"`
	LoanID      string `gorm:"size:32;column:loan_id"`
	FailedRules string `gorm:"column:failed_rules"`
	Reason      string
	CreatedAt   time.Time
}

func (auditSQLite) TableName() string { return "override_audit_entries" }

type MemberSeed struct {
	MemberID     string
	Balance      float64
	Blocked      bool
	FeeStatus    string // defaults to approved
	RegisteredAt time.Time
}

// SeedMember inserts a member row; zero-value fields get sensible eligible
// defaults (approved fee, registered two years ago).
func SeedMember(t *testing.T, db *gorm.DB, s MemberSeed) {
	t.Helper()
	if s.FeeStatus == "" {
		s.FeeStatus = "approved"
	}
	if s.RegisteredAt.IsZero() {
		s.RegisteredAt = time.Now().UTC().AddDate(-2, 0, 0)
	}
	row := memberSQLite{
		MemberID:         s.MemberID,
		FullName:         "member " + s.MemberID[:8],
		Balance:          s.Balance,
		IsBlocked:        s.Blocked,
		JoiningFeeStatus: s.FeeStatus,
		RegistrationDate: s.RegisteredAt,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
}

// SeedSubscription inserts an accepted subscription credit.
func SeedSubscription(t *testing.T, db *gorm.DB, memberID string, amount float64, paidAt time.Time) {
	t.Helper()
	row := subscriptionSQLite{
		MemberID: memberID,
		Amount:   amount,
		Kind:     "subscription",
		Status:   "accepted",
		PaidAt:   paidAt,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
}

type LoanSeed struct {
	LoanID      string
	MemberID    string
	Amount      float64
	Installment float64
	Status      string // defaults to pending
	ClosedAt    *time.Time
}

// SeedLoan inserts a loan request row and returns its numeric id. The active
// flag is derived from status/closure the same way production writes it.
func SeedLoan(t *testing.T, db *gorm.DB, s LoanSeed) uint64 {
	t.Helper()
	if s.Status == "" {
		s.Status = "pending"
	}
	var active *uint8
	if (s.Status == "pending" || s.Status == "approved") && s.ClosedAt == nil {
		v := uint8(1)
		active = &v
	}
	row := loanRequestSQLite{
		LoanID:            s.LoanID,
		MemberID:          s.MemberID,
		RequestedAmount:   s.Amount,
		InstallmentAmount: s.Installment,
		Status:            s.Status,
		Active:            active,
		RequestDate:       time.Now().UTC().AddDate(0, -1, 0),
		ClosureDate:       s.ClosedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	return row.ID
}

// SeedPayment inserts a payment row against a loan's numeric id.
func SeedPayment(t *testing.T, db *gorm.DB, loanID uint64, memberID string, amount float64, status string) {
	t.Helper()
	row := loanPaymentSQLite{
		PaymentID: newHexID(),
		LoanID:    loanID,
		MemberID:  memberID,
		Amount:    amount,
		Status:    status,
		PaidAt:    time.Now().UTC(),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}
}

// Open migrates every shadow table and returns the DB. TranslateError is on
// so UNIQUE violations surface as gorm.ErrDuplicatedKey, matching production.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&memberSQLite{},
		&subscriptionSQLite{},
		&loanRequestSQLite{},
		&loanPaymentSQLite{},
		&auditSQLite{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
