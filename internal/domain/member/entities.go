package member

import (
	"time"

	"github.com/shopspring/decimal"
)

type FeeStatus string

const (
	FeePending  FeeStatus = "pending"
	FeeApproved FeeStatus = "approved"
	FeeRejected FeeStatus = "rejected"
)

// Members are never deleted, only flagged (is_blocked).
type Member struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	MemberID         string          `gorm:"size:32;uniqueIndex:ux_members_member_id" json:"member_id"`
	FullName         string          `gorm:"size:191" json:"full_name"`
	Balance          decimal.Decimal `gorm:"type:decimal(18,2)" json:"balance"`
	IsBlocked        bool            `gorm:"not null;default:false" json:"is_blocked"`
	JoiningFeeStatus FeeStatus       `gorm:"type:enum('pending','approved','rejected');default:'pending'" json:"joining_fee_status"`
	RegistrationDate time.Time       `json:"registration_date"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string { return "members" }

type SubscriptionKind string

const (
	KindSubscription SubscriptionKind = "subscription"
	KindDeposit      SubscriptionKind = "deposit"
)

type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionAccepted SubscriptionStatus = "accepted"
	SubscriptionRejected SubscriptionStatus = "rejected"
)

// SubscriptionPayment is a credit transaction toward the member's fund share.
// Only accepted rows count toward the subscription eligibility window.
type SubscriptionPayment struct {
	ID       uint64             `gorm:"primaryKey;column:id" json:"-"`
	MemberID string             `gorm:"size:32;index:idx_subscriptions_member" json:"member_id"`
	Amount   decimal.Decimal    `gorm:"type:decimal(18,2)" json:"amount"`
	Kind     SubscriptionKind   `gorm:"type:enum('subscription','deposit');default:'subscription'" json:"kind"`
	Status   SubscriptionStatus `gorm:"type:enum('pending','accepted','rejected');default:'pending'" json:"status"`
	PaidAt   time.Time          `json:"paid_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SubscriptionPayment) TableName() string { return "subscription_payments" }
