package member

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, m *Member) error
	Save(ctx context.Context, m *Member) error
	GetByMemberID(ctx context.Context, memberID string) (*Member, error)
	// GetByMemberIDForUpdate locks the member row; this is the serialization
	// point for all concurrent loan submissions naming the same member.
	GetByMemberIDForUpdate(ctx context.Context, memberID string) (*Member, error)
	// SumAcceptedSubscriptions totals accepted subscription/deposit credits
	// with paid_at >= since.
	SumAcceptedSubscriptions(ctx context.Context, memberID string, since time.Time) (decimal.Decimal, error)
}
