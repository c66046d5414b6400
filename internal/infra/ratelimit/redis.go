package ratelimit

import (
	"context"
	"errors"
	"time"

	"ervault/internal/domain"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "ervault:ratelimit:"

// redisLimiter shares one fixed window across replicas. Each key holds a
// counter that expires with the window. The script keeps INCR and the
// expiry atomic, and re-arms the expiry when the counter has lost it, so
// a key can never count forever.
type redisLimiter struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

type RedisLimiterConfig struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix namespaces limiter keys so counters can share a database
	// with other state.
	KeyPrefix string
	Now       func() time.Time
}

var redisAllowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

func NewRedisLimiter(cfg RedisLimiterConfig) (domain.RateLimiter, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &redisLimiter{client: client, prefix: cfg.KeyPrefix, now: cfg.Now}, nil
}

func (r *redisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (domain.RateLimitDecision, error) {
	if limit <= 0 {
		return domain.RateLimitDecision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	windowMillis := window.Milliseconds()
	if windowMillis <= 0 {
		windowMillis = 1000
	}
	reply, err := redisAllowScript.Run(ctx, r.client, []string{r.prefix + key}, windowMillis).Result()
	if err != nil {
		return domain.RateLimitDecision{}, err
	}
	return decodeAllowReply(reply, limit, r.now())
}

// decodeAllowReply turns the script's {count, ttl_millis} pair into a
// decision. A non-positive ttl means the key expires with this reply, so
// the window end falls back to now.
func decodeAllowReply(reply any, limit int, now time.Time) (domain.RateLimitDecision, error) {
	values, ok := reply.([]any)
	if !ok || len(values) != 2 {
		return domain.RateLimitDecision{}, errors.New("malformed rate limit reply")
	}
	count, ok := values[0].(int64)
	if !ok || count < 1 {
		return domain.RateLimitDecision{}, errors.New("malformed rate limit counter")
	}
	ttlMillis, ok := values[1].(int64)
	if !ok {
		return domain.RateLimitDecision{}, errors.New("malformed rate limit ttl")
	}
	resetAt := now
	if ttlMillis > 0 {
		resetAt = now.Add(time.Duration(ttlMillis) * time.Millisecond)
	}
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return domain.RateLimitDecision{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
