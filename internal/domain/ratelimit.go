package domain

import (
	"context"
	"time"
)

// RateLimitDecision is the outcome of one admission check.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter admits or rejects a request under a fixed-window budget.
// A limit of zero or less disables limiting for that key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}
