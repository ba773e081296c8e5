package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisNotifier_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	n := NewRedisNotifier(rdb, "loan.events", slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, "loan.events")
	t.Cleanup(func() { _ = sub.Close() })
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	n.Publish(ctx, Event{
		Type:     EventLoanApproved,
		LoanID:   "0123456789abcdef0123456789abcdef",
		MemberID: "fedcba9876543210fedcba9876543210",
		At:       time.Now().UTC(),
	})

	select {
	case msg := <-sub.Channel():
		var got Event
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("payload is not event JSON: %v", err)
		}
		if got.Type != EventLoanApproved || got.LoanID == "" {
			t.Fatalf("got %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}
}

func TestRedisNotifier_PublishNeverFails(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close() // dead backend

	n := NewRedisNotifier(rdb, "loan.events", slog.New(slog.NewTextHandler(io.Discard, nil)))
	// must log and return, not panic or block
	n.Publish(context.Background(), Event{Type: EventLoanClosed, LoanID: "x"})
}
