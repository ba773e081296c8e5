package membermock

import (
	"context"
	"time"

	domain "loanfund-backend/internal/domain/member"

	"github.com/shopspring/decimal"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies member.Repository.
// Only fill in the function fields a test needs.
type Repo struct {
	CreateFn                   func(ctx context.Context, m *domain.Member) error
	SaveFn                     func(ctx context.Context, m *domain.Member) error
	GetByMemberIDFn            func(ctx context.Context, memberID string) (*domain.Member, error)
	GetByMemberIDForUpdateFn   func(ctx context.Context, memberID string) (*domain.Member, error)
	SumAcceptedSubscriptionsFn func(ctx context.Context, memberID string, since time.Time) (decimal.Decimal, error)
}

func (m *Repo) Create(ctx context.Context, mem *domain.Member) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, mem)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, mem *domain.Member) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, mem)
	}
	return nil
}

func (m *Repo) GetByMemberID(ctx context.Context, memberID string) (*domain.Member, error) {
	if m.GetByMemberIDFn != nil {
		return m.GetByMemberIDFn(ctx, memberID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByMemberIDForUpdate(ctx context.Context, memberID string) (*domain.Member, error) {
	if m.GetByMemberIDForUpdateFn != nil {
		return m.GetByMemberIDForUpdateFn(ctx, memberID)
	}
	return nil, context.Canceled
}

func (m *Repo) SumAcceptedSubscriptions(ctx context.Context, memberID string, since time.Time) (decimal.Decimal, error) {
	if m.SumAcceptedSubscriptionsFn != nil {
		return m.SumAcceptedSubscriptionsFn(ctx, memberID, since)
	}
	return decimal.Zero, nil
}
