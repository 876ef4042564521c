package domain

import "time"

// EventType classifies inbound frames from the admin event feed.
type EventType string

const (
	// Control frames. Never surfaced to the feed.
	Heartbeat             EventType = "heartbeat"
	Ping                  EventType = "ping"
	Pong                  EventType = "pong"
	ConnectionEstablished EventType = "connection_established"

	// Domain events with registered callbacks.
	AdminNewReview    EventType = "admin_new_review"
	AdminReviewUpdate EventType = "admin_review_update"
)

// IsControl reports whether the type is a transport keep-alive or
// connection acknowledgement rather than user-facing content.
func (t EventType) IsControl() bool {
	switch t {
	case Heartbeat, Ping, Pong, ConnectionEstablished:
		return true
	}
	return false
}

// Notification is one entry in the admin feed. Created only by the
// classifier on receipt of a qualifying event; mutated only by
// mark-read operations; evicted by capacity pressure or clear.
type Notification struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp string         `json:"timestamp"`
	Read      bool           `json:"read"`
}

// DefaultMessage is used when an event carries no message text.
const DefaultMessage = "You have a new notification"

// Event is the decoded inbound frame. The upstream feed is schema-less
// JSON: Type is the only required field, known fields are lifted out,
// and Raw retains the full payload opaquely for downstream consumers.
type Event struct {
	Type      EventType      `json:"type"`
	Message   string         `json:"message,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	TenantID  string         `json:"tenant_id,omitempty"`
	Action    string         `json:"action,omitempty"`
	Raw       map[string]any `json:"-"`
}

// ReceivedAt is the timestamp used when the event omits one.
func ReceivedAt(now time.Time) string {
	return now.UTC().Format(time.RFC3339)
}
