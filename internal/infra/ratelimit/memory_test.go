package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterEnforcesLimit(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(MemoryLimiterConfig{Now: func() time.Time { return now }})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "k", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	d, err := limiter.Allow(ctx, "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed {
		t.Fatal("fourth request in the window should be rejected")
	}
	if d.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", d.Remaining)
	}
}

func TestMemoryLimiterResetsAfterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(MemoryLimiterConfig{Now: func() time.Time { return now }})
	ctx := context.Background()

	if d, _ := limiter.Allow(ctx, "k", 1, time.Minute); !d.Allowed {
		t.Fatal("first request should be allowed")
	}
	if d, _ := limiter.Allow(ctx, "k", 1, time.Minute); d.Allowed {
		t.Fatal("second request in the window should be rejected")
	}
	now = now.Add(2 * time.Minute)
	if d, _ := limiter.Allow(ctx, "k", 1, time.Minute); !d.Allowed {
		t.Fatal("request after the window should be allowed again")
	}
}

func TestMemoryLimiterZeroLimitDisables(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{})
	d, err := limiter.Allow(context.Background(), "k", 0, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !d.Allowed {
		t.Fatal("zero limit must disable limiting")
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{})
	ctx := context.Background()
	if d, _ := limiter.Allow(ctx, "a", 1, time.Minute); !d.Allowed {
		t.Fatal("key a should be allowed")
	}
	if d, _ := limiter.Allow(ctx, "b", 1, time.Minute); !d.Allowed {
		t.Fatal("key b must not share key a's budget")
	}
}

func TestMemoryLimiterCapacity(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{MaxKeys: 2})
	ctx := context.Background()
	if _, err := limiter.Allow(ctx, "a", 1, time.Minute); err != nil {
		t.Fatalf("allow a: %v", err)
	}
	if _, err := limiter.Allow(ctx, "b", 1, time.Minute); err != nil {
		t.Fatalf("allow b: %v", err)
	}
	if _, err := limiter.Allow(ctx, "c", 1, time.Minute); err == nil {
		t.Fatal("expected capacity error once live keys exceed MaxKeys")
	}
}
