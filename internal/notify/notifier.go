package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	EventLoanApproved    = "loan.approved"
	EventLoanRejected    = "loan.rejected"
	EventPaymentAccepted = "loan.payment_accepted"
	EventLoanClosed      = "loan.closed"
)

type Event struct {
	Type     string    `json:"type"`
	LoanID   string    `json:"loan_id"`
	MemberID string    `json:"member_id"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// Notifier is a fire-and-forget hook for status transitions. Implementations
// must never fail the caller: delivery problems are logged and dropped so
// they cannot affect a committed transaction.
type Notifier interface {
	Publish(ctx context.Context, e Event)
}

// RedisNotifier publishes events as JSON on a Redis channel.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
	log     *slog.Logger
}

func NewRedisNotifier(rdb *redis.Client, channel string, log *slog.Logger) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel, log: log}
}

func (n *RedisNotifier) Publish(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		n.log.Warn("notify: marshal event", "type", e.Type, "err", err)
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := n.rdb.Publish(pubCtx, n.channel, payload).Err(); err != nil {
		n.log.Warn("notify: publish failed", "type", e.Type, "loan_id", e.LoanID, "err", err)
	}
}

// Noop is for tests and for running without a notification channel.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
