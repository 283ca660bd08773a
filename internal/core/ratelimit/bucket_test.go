package ratelimit

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(capacity int, per time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return New(capacity, per, clock, NewMemoryStore(clock)), clock
}

func TestAllow_ExhaustsBucket(t *testing.T) {
	limiter, _ := newTestLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "client")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatalf("request %d rejected, want allowed", i+1)
		}
	}

	ok, err := limiter.Allow(ctx, "client")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("fourth request allowed, want rejected")
	}
}

func TestAllow_RefillsOverTime(t *testing.T) {
	limiter, clock := newTestLimiter(60, time.Minute)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		if ok, _ := limiter.Allow(ctx, "client"); !ok {
			t.Fatalf("request %d rejected during initial burst", i+1)
		}
	}
	if ok, _ := limiter.Allow(ctx, "client"); ok {
		t.Fatal("request allowed on empty bucket")
	}

	// One token per second at 60/min.
	clock.advance(2 * time.Second)
	if ok, _ := limiter.Allow(ctx, "client"); !ok {
		t.Error("request rejected after refill")
	}
	if ok, _ := limiter.Allow(ctx, "client"); !ok {
		t.Error("second request rejected after 2s refill")
	}
	if ok, _ := limiter.Allow(ctx, "client"); ok {
		t.Error("third request allowed, only 2 tokens refilled")
	}
}

func TestAllow_RefillCapsAtCapacity(t *testing.T) {
	limiter, clock := newTestLimiter(5, time.Minute)
	ctx := context.Background()

	if ok, _ := limiter.Allow(ctx, "client"); !ok {
		t.Fatal("first request rejected")
	}

	// A long idle period must not accumulate more than capacity.
	clock.advance(time.Hour)
	for i := 0; i < 5; i++ {
		if ok, _ := limiter.Allow(ctx, "client"); !ok {
			t.Fatalf("request %d rejected after long idle", i+1)
		}
	}
	if ok, _ := limiter.Allow(ctx, "client"); ok {
		t.Error("request above capacity allowed")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	if ok, _ := limiter.Allow(ctx, "a"); !ok {
		t.Fatal("first request for a rejected")
	}
	if ok, _ := limiter.Allow(ctx, "a"); ok {
		t.Error("second request for a allowed")
	}
	if ok, _ := limiter.Allow(ctx, "b"); !ok {
		t.Error("first request for b rejected")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(clock)
	ctx := context.Background()

	st := State{Tokens: 2, Refilled: clock.Now()}
	if err := store.Save(ctx, "k", st, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, ok, _ := store.Fetch(ctx, "k"); !ok {
		t.Fatal("state missing before expiry")
	}

	clock.advance(2 * time.Minute)
	if _, ok, _ := store.Fetch(ctx, "k"); ok {
		t.Error("state survived past its ttl")
	}
}
