package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	AdminAPIKey string
	ErvaultEnv  string

	// DefaultAlgorithm is the digest algorithm used when a request does
	// not name one.
	DefaultAlgorithm string

	// TSAURL points at a remote timestamp oracle; empty selects the
	// local-clock oracle.
	TSAURL            string
	TSATimeoutSeconds int

	// Verification policy knobs.
	RequireAlgorithmChange bool
	MaxTimestampAgeDays    int

	PolicyBundlePath string
	PolicyBundleID   string

	RateLimitRequests       int
	RateLimitWindowSeconds  int
	RateLimitIncludeSubject bool
	RateLimitFailClosed     bool
	RateLimitMaxKeys        int
	RateLimitSubjectMaxLen  int
	RateLimitSubjectHash    bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:                addr,
		PostgresDSN:             os.Getenv("POSTGRES_DSN"),
		LogLevel:                envDefault("LOG_LEVEL", "info"),
		AdminAPIKey:             os.Getenv("ADMIN_API_KEY"),
		ErvaultEnv:              os.Getenv("ERVAULT_ENV"),
		DefaultAlgorithm:        envDefault("DEFAULT_DIGEST_ALGORITHM", "SHA256"),
		TSAURL:                  os.Getenv("TSA_URL"),
		TSATimeoutSeconds:       envIntDefault("TSA_TIMEOUT_SECONDS", 10),
		RequireAlgorithmChange:  envBoolDefault("REQUIRE_ALGORITHM_CHANGE", true),
		MaxTimestampAgeDays:     envIntDefault("MAX_TIMESTAMP_AGE_DAYS", 0),
		PolicyBundlePath:        os.Getenv("POLICY_BUNDLE_PATH"),
		PolicyBundleID:          envDefault("POLICY_BUNDLE_ID", "verify_v0"),
		RateLimitRequests:       envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds:  envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitIncludeSubject: envBoolDefault("RATE_LIMIT_INCLUDE_SUBJECT", false),
		RateLimitFailClosed:     envBoolDefault("RATE_LIMIT_FAIL_CLOSED", false),
		RateLimitMaxKeys:        envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RateLimitSubjectMaxLen:  envIntDefault("RATE_LIMIT_SUBJECT_MAX_LEN", 128),
		RateLimitSubjectHash:    envBoolDefault("RATE_LIMIT_SUBJECT_HASH", false),
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 envIntDefault("REDIS_DB", 0),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}

// TSATimeout returns the oracle request timeout.
func (c Config) TSATimeout() time.Duration {
	if c.TSATimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TSATimeoutSeconds) * time.Second
}

// MaxTimestampAge returns the freshness bound; zero means unbounded.
func (c Config) MaxTimestampAge() time.Duration {
	if c.MaxTimestampAgeDays <= 0 {
		return 0
	}
	return time.Duration(c.MaxTimestampAgeDays) * 24 * time.Hour
}
