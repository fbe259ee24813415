package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"codechat-service/internal/ratelimit"
)

// RateLimitMiddleware guards the execution endpoints with a per-client
// fixed-window budget. Authenticated callers are keyed by user id,
// anonymous ones by client IP.
func RateLimitMiddleware(limiter ratelimit.Limiter, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID := c.GetInt("userID"); userID != 0 {
			key = "user:" + strconv.Itoa(userID)
		}

		allowed, remaining, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// Fail open when the limiter itself errors.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
