package mysql

import (
	"context"
	"time"

	memberDomain "loanfund-backend/internal/domain/member"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MemberRepository struct{ db *gorm.DB }

func NewMemberRepository(db *gorm.DB) *MemberRepository { return &MemberRepository{db: db} }

func (r *MemberRepository) Create(ctx context.Context, m *memberDomain.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MemberRepository) Save(ctx context.Context, m *memberDomain.Member) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *MemberRepository) GetByMemberID(ctx context.Context, memberID string) (*memberDomain.Member, error) {
	var out memberDomain.Member
	res := r.db.WithContext(ctx).Where("member_id = ?", memberID).First(&out)
	return &out, res.Error
}

func (r *MemberRepository) GetByMemberIDForUpdate(ctx context.Context, memberID string) (*memberDomain.Member, error) {
	var out memberDomain.Member
	res := forUpdate(r.db.WithContext(ctx)).Where("member_id = ?", memberID).First(&out)
	return &out, res.Error
}

func (r *MemberRepository) SumAcceptedSubscriptions(ctx context.Context, memberID string, since time.Time) (decimal.Decimal, error) {
	var raw decimal.NullDecimal
	res := r.db.WithContext(ctx).
		Model(&memberDomain.SubscriptionPayment{}).
		Select("SUM(amount)").
		Where("member_id = ? AND status = ? AND paid_at >= ?", memberID, memberDomain.SubscriptionAccepted, since).
		Scan(&raw)
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	if !raw.Valid {
		return decimal.Zero, nil
	}
	return raw.Decimal, nil
}
