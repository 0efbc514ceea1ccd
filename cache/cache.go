// Package cache provides a keyed in-memory store with per-entry TTL,
// used for short-lived behavioral windows. Entries vanish on restart;
// the window is a short-term signal, not an audit record.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is a TTL keyed store. Expiry is evaluated lazily on Get and
// eagerly by Cleanup.
type Store[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
}

func New[V any]() *Store[V] {
	return &Store[V]{
		entries: make(map[string]entry[V]),
	}
}

// Key builds a namespaced cache key, e.g. Key("recent-messages", guildID, userID).
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

// Get returns the value for key. An expired entry reads as absent and
// is evicted.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the given TTL.
func (s *Store[V]) Set(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry[V]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete removes key from the store.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Cleanup evicts every entry whose TTL has elapsed and returns the
// number of evicted entries.
func (s *Store[V]) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	evicted := 0
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live and not-yet-swept entries.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
