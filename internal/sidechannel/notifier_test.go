package sidechannel

import (
	"context"
	"errors"
	"testing"

	"admin-notify-service/internal/domain"
)

type countingNotifier struct {
	calls int
	err   error
}

func (c *countingNotifier) Deliver(context.Context, domain.Notification) error {
	c.calls++
	return c.err
}

func TestGatedDeniedIsSilentNoop(t *testing.T) {
	t.Parallel()
	inner := &countingNotifier{}
	gated := NewGated(PermissionFunc(func(context.Context) bool { return false }), inner)

	if err := gated.Deliver(context.Background(), domain.Notification{ID: "a"}); err != nil {
		t.Errorf("Deliver: got %v, want nil", err)
	}
	if inner.calls != 0 {
		t.Errorf("inner calls: got %d, want 0", inner.calls)
	}
}

func TestGatedCachesPermissionAnswer(t *testing.T) {
	t.Parallel()
	inner := &countingNotifier{}
	answer := true
	queries := 0
	gated := NewGated(PermissionFunc(func(context.Context) bool {
		queries++
		return answer
	}), inner)

	gated.Deliver(context.Background(), domain.Notification{ID: "a"})

	// Revoking mid-session has no effect: the answer was cached at the
	// first query.
	answer = false
	gated.Deliver(context.Background(), domain.Notification{ID: "b"})

	if queries != 1 {
		t.Errorf("permission queries: got %d, want 1", queries)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls: got %d, want 2", inner.calls)
	}
}

func TestGatedPropagatesDeliveryError(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("publish failed")
	inner := &countingNotifier{err: wantErr}
	gated := NewGated(PermissionFunc(func(context.Context) bool { return true }), inner)

	if err := gated.Deliver(context.Background(), domain.Notification{ID: "a"}); !errors.Is(err, wantErr) {
		t.Errorf("Deliver: got %v, want %v", err, wantErr)
	}
}

func TestNopDiscards(t *testing.T) {
	t.Parallel()
	if err := (Nop{}).Deliver(context.Background(), domain.Notification{ID: "a"}); err != nil {
		t.Errorf("Deliver: got %v, want nil", err)
	}
}
