package ratelimit

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/te5in/gradecore/internal/errors"
)

// IPRateLimitMiddleware creates middleware for IP-based rate limiting
func (rl *RateLimiter) IPRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		result, err := rl.AllowIP(c.Request.Context(), ip)
		if err != nil {
			// A limiter failure must not take the API down with it.
			slog.Error("Rate limit check failed", "ip", ip, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := strconv.Itoa(int(result.RetryAfter.Seconds()))
			c.Header("Retry-After", retryAfter)

			appErr := errors.NewRateLimitError(retryAfter)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			c.Abort()
			return
		}

		c.Next()
	}
}
