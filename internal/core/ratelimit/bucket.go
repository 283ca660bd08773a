// Package ratelimit provides a token-bucket rate limiter behind explicit
// interfaces. The clock and the counter store are injected, never ambient:
// tests drive a fake clock, production wires the redis-backed store.
package ratelimit

import (
	"context"
	"time"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// State is the persisted bucket state for one key.
type State struct {
	Tokens   float64   `json:"tokens"`
	Refilled time.Time `json:"refilled"`
}

// Store persists token-bucket state per key.
// Fetch returns ok=false when the key is unknown or expired.
type Store interface {
	Fetch(ctx context.Context, key string) (State, bool, error)
	Save(ctx context.Context, key string, st State, ttl time.Duration) error
}

// Limiter is a token-bucket rate limiter.
// Each key holds up to capacity tokens, refilled at capacity/per.
type Limiter struct {
	capacity float64
	rate     float64 // tokens per second
	clock    Clock
	store    Store
}

// New creates a Limiter allowing capacity requests per the given period.
func New(capacity int, per time.Duration, clock Clock, store Store) *Limiter {
	if capacity <= 0 {
		capacity = 1
	}
	if per <= 0 {
		per = time.Second
	}
	return &Limiter{
		capacity: float64(capacity),
		rate:     float64(capacity) / per.Seconds(),
		clock:    clock,
		store:    store,
	}
}

// Allow consumes one token for key. Returns false when the bucket is empty.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	st, ok, err := l.store.Fetch(ctx, key)
	if err != nil {
		return false, err
	}

	now := l.clock.Now()
	if !ok {
		st = State{Tokens: l.capacity, Refilled: now}
	} else {
		elapsed := now.Sub(st.Refilled).Seconds()
		if elapsed > 0 {
			st.Tokens += elapsed * l.rate
			if st.Tokens > l.capacity {
				st.Tokens = l.capacity
			}
		}
		st.Refilled = now
	}

	allowed := st.Tokens >= 1
	if allowed {
		st.Tokens--
	}

	// Keep state around long enough for a full refill, then let it expire.
	ttl := 2 * time.Duration(l.capacity/l.rate*float64(time.Second))
	if err := l.store.Save(ctx, key, st, ttl); err != nil {
		return false, err
	}
	return allowed, nil
}
