// Best-effort mirroring of feed notifications to an out-of-app
// channel. Delivery here is a non-critical enhancement: failures are
// swallowed and never surfaced past a warn log.
package sidechannel

import (
	"context"
	"sync"

	"admin-notify-service/internal/domain"
)

// Notifier emits one notification to the side channel.
type Notifier interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// Permission is the capability check gating side-channel delivery.
// Injected rather than queried ambiently so tests can fake it.
type Permission interface {
	Granted(ctx context.Context) bool
}

// PermissionFunc adapts a function to the Permission interface.
type PermissionFunc func(ctx context.Context) bool

func (f PermissionFunc) Granted(ctx context.Context) bool { return f(ctx) }

// Nop discards every delivery.
type Nop struct{}

func (Nop) Deliver(context.Context, domain.Notification) error { return nil }

// Gated wraps a Notifier with a Permission that is queried once per
// session; the answer is cached for the lifetime of the wrapper. A
// denied permission makes every Deliver a silent no-op.
type Gated struct {
	next Notifier
	perm Permission

	once    sync.Once
	granted bool
}

func NewGated(perm Permission, next Notifier) *Gated {
	return &Gated{next: next, perm: perm}
}

func (g *Gated) Deliver(ctx context.Context, n domain.Notification) error {
	g.once.Do(func() {
		g.granted = g.perm.Granted(ctx)
	})
	if !g.granted {
		return nil
	}
	return g.next.Deliver(ctx, n)
}
