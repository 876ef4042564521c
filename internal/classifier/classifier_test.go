package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"admin-notify-service/internal/domain"
	"admin-notify-service/internal/feed"
	"admin-notify-service/internal/sidechannel"
)

type recordingNotifier struct {
	delivered []domain.Notification
	err       error
}

func (r *recordingNotifier) Deliver(_ context.Context, n domain.Notification) error {
	r.delivered = append(r.delivered, n)
	return r.err
}

func TestClassifyControlFramesDropped(t *testing.T) {
	t.Parallel()
	store := feed.NewStore(50)
	notifier := &recordingNotifier{}
	cls := New(store, notifier, Callbacks{}, zap.NewNop())

	for _, typ := range []domain.EventType{
		domain.Heartbeat, domain.Ping, domain.Pong, domain.ConnectionEstablished,
	} {
		cls.Classify(context.Background(), domain.Event{Type: typ})
	}

	if store.Len() != 0 {
		t.Errorf("Len: got %d, want 0", store.Len())
	}
	if store.UnreadCount() != 0 {
		t.Errorf("UnreadCount: got %d, want 0", store.UnreadCount())
	}
	if len(notifier.delivered) != 0 {
		t.Errorf("side-channel deliveries: got %d, want 0", len(notifier.delivered))
	}
}

func TestClassifyNewReviewFiresCallbackOnce(t *testing.T) {
	t.Parallel()
	store := feed.NewStore(50)

	var gotTenants []string
	cls := New(store, nil, Callbacks{
		OnNewReview: func(tenantID string) {
			gotTenants = append(gotTenants, tenantID)
		},
	}, zap.NewNop())

	cls.Classify(context.Background(), domain.Event{
		Type:     domain.AdminNewReview,
		TenantID: "t1",
	})

	if len(gotTenants) != 1 || gotTenants[0] != "t1" {
		t.Errorf("OnNewReview calls: got %v, want [t1]", gotTenants)
	}
	if store.Len() != 1 {
		t.Errorf("Len: got %d, want 1", store.Len())
	}
}

func TestClassifyReviewUpdateCallback(t *testing.T) {
	t.Parallel()
	store := feed.NewStore(50)

	var gotTenant, gotAction string
	cls := New(store, nil, Callbacks{
		OnReviewUpdate: func(tenantID, action string) {
			gotTenant, gotAction = tenantID, action
		},
	}, zap.NewNop())

	cls.Classify(context.Background(), domain.Event{
		Type:     domain.AdminReviewUpdate,
		TenantID: "t2",
		Action:   "approved",
	})

	if gotTenant != "t2" || gotAction != "approved" {
		t.Errorf("OnReviewUpdate: got (%q, %q), want (t2, approved)", gotTenant, gotAction)
	}
}

func TestClassifyUnknownTypeStillStored(t *testing.T) {
	t.Parallel()
	store := feed.NewStore(50)
	cls := New(store, nil, Callbacks{}, zap.NewNop())

	// Arbitrary non-control types become plain feed entries.
	cls.Classify(context.Background(), domain.Event{
		Type:    "inventory_low_stock",
		Message: "SKU 42 below threshold",
	})

	got := store.List()
	if len(got) != 1 {
		t.Fatalf("Len: got %d, want 1", len(got))
	}
	if got[0].Type != "inventory_low_stock" {
		t.Errorf("Type: got %q, want inventory_low_stock", got[0].Type)
	}
	if got[0].Message != "SKU 42 below threshold" {
		t.Errorf("Message: got %q", got[0].Message)
	}
	if got[0].Read {
		t.Error("new notification unexpectedly flagged read")
	}
}

func TestClassifyDefaultsMessageAndTimestamp(t *testing.T) {
	t.Parallel()
	store := feed.NewStore(50)
	cls := New(store, nil, Callbacks{}, zap.NewNop())

	fixed := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	cls.now = func() time.Time { return fixed }

	cls.Classify(context.Background(), domain.Event{Type: "admin_new_review"})

	got := store.List()[0]
	if got.Message != domain.DefaultMessage {
		t.Errorf("Message: got %q, want default", got.Message)
	}
	if got.Timestamp != "2026-08-23T10:00:00Z" {
		t.Errorf("Timestamp: got %q, want 2026-08-23T10:00:00Z", got.Timestamp)
	}
}

func TestClassifyPreservesPayload(t *testing.T) {
	t.Parallel()
	store := feed.NewStore(50)
	cls := New(store, nil, Callbacks{}, zap.NewNop())

	raw := map[string]any{
		"type":      "admin_new_review",
		"tenant_id": "t1",
		"rating":    float64(4),
	}
	cls.Classify(context.Background(), domain.Event{
		Type: domain.AdminNewReview,
		Raw:  raw,
	})

	got := store.List()[0]
	if got.Data["rating"] != float64(4) {
		t.Errorf("Data[rating]: got %v, want 4", got.Data["rating"])
	}
}

func TestClassifyIDsUniqueAndOrdered(t *testing.T) {
	t.Parallel()
	store := feed.NewStore(200)
	cls := New(store, nil, Callbacks{}, zap.NewNop())

	for i := 0; i < 100; i++ {
		cls.Classify(context.Background(), domain.Event{Type: "admin_new_review"})
	}

	seen := make(map[string]bool)
	list := store.List()
	for _, n := range list {
		if seen[n.ID] {
			t.Fatalf("duplicate id %q under rapid delivery", n.ID)
		}
		seen[n.ID] = true
	}
	// Newest-first feed, so ids must be strictly decreasing.
	for i := 1; i < len(list); i++ {
		if list[i-1].ID <= list[i].ID {
			t.Fatalf("ids not monotonic: %q then %q", list[i].ID, list[i-1].ID)
		}
	}
}

func TestClassifyDeliveryFailureSwallowed(t *testing.T) {
	t.Parallel()
	store := feed.NewStore(50)
	notifier := &recordingNotifier{err: errors.New("broker down")}
	cls := New(store, notifier, Callbacks{}, zap.NewNop())

	cls.Classify(context.Background(), domain.Event{Type: "admin_new_review"})

	// The feed entry survives a failed side-channel delivery.
	if store.Len() != 1 {
		t.Errorf("Len: got %d, want 1", store.Len())
	}
}

func TestClassifyPermissionDeniedSkipsDelivery(t *testing.T) {
	t.Parallel()
	store := feed.NewStore(50)
	inner := &recordingNotifier{}
	gated := sidechannel.NewGated(
		sidechannel.PermissionFunc(func(context.Context) bool { return false }),
		inner,
	)
	cls := New(store, gated, Callbacks{}, zap.NewNop())

	cls.Classify(context.Background(), domain.Event{Type: "admin_new_review"})

	if len(inner.delivered) != 0 {
		t.Errorf("deliveries despite denied permission: got %d, want 0", len(inner.delivered))
	}
	if store.Len() != 1 {
		t.Errorf("Len: got %d, want 1", store.Len())
	}
}

func TestClassifyGrantedPermissionDelivers(t *testing.T) {
	t.Parallel()
	store := feed.NewStore(50)
	inner := &recordingNotifier{}
	calls := 0
	gated := sidechannel.NewGated(
		sidechannel.PermissionFunc(func(context.Context) bool { calls++; return true }),
		inner,
	)
	cls := New(store, gated, Callbacks{}, zap.NewNop())

	cls.Classify(context.Background(), domain.Event{Type: "admin_new_review"})
	cls.Classify(context.Background(), domain.Event{Type: "admin_review_update"})

	if len(inner.delivered) != 2 {
		t.Errorf("deliveries: got %d, want 2", len(inner.delivered))
	}
	// The capability is queried once per session, not per delivery.
	if calls != 1 {
		t.Errorf("permission queries: got %d, want 1", calls)
	}
}
