package http

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// requireAdminKey guards mutating endpoints. When ADMIN_API_KEY is unset
// the server runs open, for local development and tests.
func (s *Server) requireAdminKey(c *gin.Context) bool {
	if s.adminAPIKey == "" {
		return true
	}
	key := strings.TrimSpace(c.GetHeader("X-Admin-Key"))
	if key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(s.adminAPIKey)) == 1 {
		return true
	}
	writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "admin key required")
	return false
}

// allowRate applies the fixed-window limiter. With no limiter configured
// every request passes. Limiter failures fail open unless configured
// otherwise.
func (s *Server) allowRate(c *gin.Context) bool {
	if s.rateLimiter == nil || s.rateLimitRequests <= 0 {
		return true
	}
	key := s.rateLimitKey(c)
	decision, err := s.rateLimiter.Allow(c.Request.Context(), key, s.rateLimitRequests, s.rateLimitWindow)
	if err != nil {
		if s.rateLimitFailClosed {
			writeErrorCode(c, http.StatusServiceUnavailable, "RATE_LIMIT_UNAVAILABLE", "rate limiter unavailable")
			return false
		}
		return true
	}
	if !decision.Allowed {
		writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
		return false
	}
	return true
}

func (s *Server) rateLimitKey(c *gin.Context) string {
	key := c.ClientIP()
	if !s.rateLimitWithSubject {
		return key
	}
	subject := strings.TrimSpace(c.GetHeader("X-Admin-Key"))
	if subject == "" {
		return key
	}
	if s.rateLimitSubjectMax > 0 && len(subject) > s.rateLimitSubjectMax {
		subject = subject[:s.rateLimitSubjectMax]
	}
	if s.rateLimitSubjectHash {
		sum := sha256.Sum256([]byte(subject))
		subject = hex.EncodeToString(sum[:])
	}
	return key + ":" + subject
}
