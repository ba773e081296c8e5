package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusClosed   Status = "closed"
)

// activeFlag is the value stored in the active column while a request is live.
const activeFlag uint8 = 1

// LoanRequest rows are created only by the request serializer; status and
// closure_date are mutated only by the lifecycle manager.
//
// The nullable active column materializes "status IN (pending, approved) AND
// closure_date IS NULL" so that the plain unique index ux_loan_requests_member_active
// on (member_id, active) enforces at-most-one active loan per member. MySQL has
// no partial indexes; NULLs never collide in its unique indexes, so settled
// rows (active = NULL) stay out of the way.
type LoanRequest struct {
	ID                uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID            string          `gorm:"size:32;uniqueIndex:ux_loan_requests_loan_id" json:"loan_id"`
	MemberID          string          `gorm:"size:32;uniqueIndex:ux_loan_requests_member_active;index:idx_loan_requests_member" json:"member_id"`
	RequestedAmount   decimal.Decimal `gorm:"type:decimal(18,2)" json:"requested_amount"`
	InstallmentAmount decimal.Decimal `gorm:"type:decimal(18,2)" json:"installment_amount"`
	ImpliedPeriod     int             `gorm:"not null;default:0" json:"implied_period"`
	Status            Status          `gorm:"type:enum('pending','approved','rejected','closed');default:'pending'" json:"status"`
	Active            *uint8          `gorm:"uniqueIndex:ux_loan_requests_member_active" json:"-"`
	RequestDate       time.Time       `json:"request_date"`
	ApprovalDate      *time.Time      `json:"approval_date,omitempty"`
	ClosureDate       *time.Time      `json:"closure_date,omitempty"`
	DecidingAdminID   string          `gorm:"size:32" json:"deciding_admin_id,omitempty"`
	AdminOverride     bool            `gorm:"not null;default:false" json:"admin_override"`
	OverrideReason    *string         `gorm:"type:text" json:"override_reason,omitempty"`
	Notes             string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LoanRequest) TableName() string { return "loan_requests" }

// ActiveMark returns the flag value for a freshly inserted or still-live row.
func ActiveMark() *uint8 { v := activeFlag; return &v }

func (l *LoanRequest) IsActive() bool {
	return (l.Status == StatusPending || l.Status == StatusApproved) && l.ClosureDate == nil
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentAccepted PaymentStatus = "accepted"
	PaymentRejected PaymentStatus = "rejected"
)

// LoanPayment references the loan by numeric PK; only accepted rows count
// toward a loan's total paid.
type LoanPayment struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	PaymentID       string          `gorm:"size:32;uniqueIndex:ux_loan_payments_payment_id" json:"payment_id"`
	LoanID          uint64          `gorm:"not null;index:idx_loan_payments_loan" json:"-"`
	MemberID        string          `gorm:"size:32;index:idx_loan_payments_member" json:"member_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	Status          PaymentStatus   `gorm:"type:enum('pending','accepted','rejected');default:'pending'" json:"status"`
	PaidAt          time.Time       `json:"paid_at"`
	DecidingAdminID string          `gorm:"size:32" json:"deciding_admin_id,omitempty"`
	Memo            string          `gorm:"type:text" json:"memo,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (LoanPayment) TableName() string { return "loan_payments" }
