package middleware

import (
	"net/http"
	"strconv"

	redisstore "relay-chat/internal/redis"
	"relay-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware throttles write requests per client IP. The limiter
// lives in Redis, so the limit holds across instances. A limiter fault
// fails open; throttling is best effort, not a correctness guarantee.
func RateLimitMiddleware(limiter *redisstore.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !isWrite(c.Request.Method) {
			c.Next()
			return
		}

		result, err := limiter.AllowWrite(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}

		c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			c.Writer.Header().Set("Retry-After", strconv.Itoa(int(result.ResetIn.Seconds())))
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("rate limited", "RATE_LIMITED"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
