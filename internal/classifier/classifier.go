package classifier

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"admin-notify-service/internal/domain"
	"admin-notify-service/internal/feed"
	"admin-notify-service/internal/sidechannel"
)

// Callbacks lets the surrounding application react to recognized
// domain events beyond the feed append (e.g. invalidating a review
// list elsewhere). Invoked synchronously during classification.
// Nil entries are skipped.
type Callbacks struct {
	OnNewReview    func(tenantID string)
	OnReviewUpdate func(tenantID, action string)
}

// Classifier consumes one decoded inbound event at a time. Control
// frames are dropped; everything else becomes a feed notification and,
// for recognized event types, fires a registered callback. It assumes
// well-formed input: frames that fail decoding never reach it.
type Classifier struct {
	store     *feed.Store
	notifier  sidechannel.Notifier
	callbacks Callbacks
	logger    *zap.Logger

	// Monotonic ULIDs keep ids unique and ordered under rapid
	// delivery, unlike the timestamp+random scheme they replace.
	idMu      sync.Mutex
	idEntropy *ulid.MonotonicEntropy

	now func() time.Time
}

func New(store *feed.Store, notifier sidechannel.Notifier, callbacks Callbacks, logger *zap.Logger) *Classifier {
	if notifier == nil {
		notifier = sidechannel.Nop{}
	}
	return &Classifier{
		store:     store,
		notifier:  notifier,
		callbacks: callbacks,
		logger:    logger,
		idEntropy: ulid.Monotonic(rand.Reader, 0),
		now:       time.Now,
	}
}

// Classify handles exactly one inbound event, synchronously. The feed
// mutation, side-channel delivery, and callback all happen before it
// returns, so per-event handling never interleaves.
func (c *Classifier) Classify(ctx context.Context, evt domain.Event) {
	if evt.Type.IsControl() {
		return
	}

	n := domain.Notification{
		ID:        c.nextID(),
		Type:      evt.Type,
		Message:   evt.Message,
		Data:      evt.Raw,
		Timestamp: evt.Timestamp,
	}
	if n.Message == "" {
		n.Message = domain.DefaultMessage
	}
	if n.Timestamp == "" {
		n.Timestamp = domain.ReceivedAt(c.now())
	}

	c.store.Insert(n)

	// Non-critical enhancement: swallow delivery failures.
	if err := c.notifier.Deliver(ctx, n); err != nil {
		c.logger.Warn("side-channel delivery failed",
			zap.String("notification_id", n.ID),
			zap.Error(err))
	}

	switch evt.Type {
	case domain.AdminNewReview:
		if c.callbacks.OnNewReview != nil {
			c.callbacks.OnNewReview(evt.TenantID)
		}
	case domain.AdminReviewUpdate:
		if c.callbacks.OnReviewUpdate != nil {
			c.callbacks.OnReviewUpdate(evt.TenantID, evt.Action)
		}
	}
}

func (c *Classifier) nextID() string {
	c.idMu.Lock()
	defer c.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(c.now()), c.idEntropy).String()
}
