package feed

import (
	"errors"
	"sync"

	"admin-notify-service/internal/domain"
)

// DefaultCapacity bounds the feed to the 50 most recent notifications,
// matching what the dashboard renders.
const DefaultCapacity = 50

var ErrNotFound = errors.New("notification not found")

// Store is a bounded, newest-first, in-memory notification feed with a
// derived unread counter. It is memory-resident only and reset on
// process restart.
//
// All methods are safe for concurrent use: the upstream read loop
// inserts while REST handlers read and mark.
type Store struct {
	mu       sync.Mutex
	capacity int
	entries  []domain.Notification
	unread   int
}

// NewStore creates a feed bounded to capacity entries. A capacity of
// zero or less falls back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		entries:  make([]domain.Notification, 0, capacity),
	}
}

// Insert prepends the notification and evicts the oldest entries
// beyond capacity. The unread counter tracks the unread entries
// actually retained, so evicting an unread entry releases its count.
func (s *Store) Insert(n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, domain.Notification{})
	copy(s.entries[1:], s.entries)
	s.entries[0] = n
	if !n.Read {
		s.unread++
	}

	for len(s.entries) > s.capacity {
		evicted := s.entries[len(s.entries)-1]
		s.entries = s.entries[:len(s.entries)-1]
		if !evicted.Read {
			s.unread--
		}
	}
}

// MarkRead sets the matching entry's read flag. Repeated calls on the
// same id are idempotent: the unread counter is only decremented on
// the unread-to-read transition, and never below zero.
func (s *Store) MarkRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID != id {
			continue
		}
		if !s.entries[i].Read {
			s.entries[i].Read = true
			if s.unread > 0 {
				s.unread--
			}
		}
		return nil
	}
	return ErrNotFound
}

// MarkAllRead flags every entry read and zeroes the unread counter.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		s.entries[i].Read = true
	}
	s.unread = 0
}

// Clear empties the feed and zeroes the unread counter.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = s.entries[:0]
	s.unread = 0
}

// List returns a copy of the feed, newest-first.
func (s *Store) List() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Notification, len(s.entries))
	copy(out, s.entries)
	return out
}

// UnreadCount returns the number of unread entries currently retained.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Len returns the number of entries currently retained.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
