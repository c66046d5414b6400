package ratelimit

import (
	"testing"
	"time"
)

func TestNewRedisLimiterRequiresAddr(t *testing.T) {
	if _, err := NewRedisLimiter(RedisLimiterConfig{}); err == nil {
		t.Fatal("expected error for empty addr")
	}
}

func TestNewRedisLimiterDefaultsPrefix(t *testing.T) {
	limiter, err := NewRedisLimiter(RedisLimiterConfig{Addr: "localhost:6379"})
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	rl, ok := limiter.(*redisLimiter)
	if !ok {
		t.Fatalf("unexpected limiter type %T", limiter)
	}
	if rl.prefix != defaultKeyPrefix {
		t.Fatalf("prefix = %q, want %q", rl.prefix, defaultKeyPrefix)
	}
}

func TestDecodeAllowReplyUnderLimit(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	decision, err := decodeAllowReply([]any{int64(1), int64(30000)}, 5, now)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("first request must be allowed")
	}
	if decision.Remaining != 4 {
		t.Fatalf("remaining = %d, want 4", decision.Remaining)
	}
	if want := now.Add(30 * time.Second); !decision.ResetAt.Equal(want) {
		t.Fatalf("reset at = %v, want %v", decision.ResetAt, want)
	}
}

func TestDecodeAllowReplyOverLimit(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	decision, err := decodeAllowReply([]any{int64(6), int64(1000)}, 5, now)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decision.Allowed {
		t.Fatal("sixth request under a limit of five must be denied")
	}
	if decision.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", decision.Remaining)
	}
}

func TestDecodeAllowReplyExpiredTTL(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	decision, err := decodeAllowReply([]any{int64(2), int64(0)}, 5, now)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decision.ResetAt.Equal(now) {
		t.Fatalf("reset at = %v, want %v", decision.ResetAt, now)
	}
}

func TestDecodeAllowReplyMalformed(t *testing.T) {
	now := time.Now()
	bad := []any{
		"not a slice",
		[]any{int64(1)},
		[]any{"one", int64(1000)},
		[]any{int64(0), int64(1000)},
		[]any{int64(1), "soon"},
	}
	for i, reply := range bad {
		if _, err := decodeAllowReply(reply, 5, now); err == nil {
			t.Fatalf("reply %d: expected error", i)
		}
	}
}
