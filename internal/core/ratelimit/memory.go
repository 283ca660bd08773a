package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Suitable for single-node deployments
// and tests; multi-node deployments should use the redis store.
type MemoryStore struct {
	mu    sync.Mutex
	clock Clock
	items map[string]memoryItem
}

type memoryItem struct {
	state   State
	expires time.Time
}

// NewMemoryStore creates a MemoryStore using the given clock for expiry.
func NewMemoryStore(clock Clock) *MemoryStore {
	return &MemoryStore{
		clock: clock,
		items: make(map[string]memoryItem),
	}
}

// Fetch implements Store.
func (s *MemoryStore) Fetch(_ context.Context, key string) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return State{}, false, nil
	}
	if !item.expires.IsZero() && s.clock.Now().After(item.expires) {
		delete(s.items, key)
		return State{}, false, nil
	}
	return item.state, true, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, key string, st State, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := memoryItem{state: st}
	if ttl > 0 {
		item.expires = s.clock.Now().Add(ttl)
	}
	s.items[key] = item
	return nil
}

var _ Store = (*MemoryStore)(nil)
