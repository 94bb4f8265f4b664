package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// RateLimit creates a Gin middleware that throttles requests per client IP
// using the provided limiter instance.
func RateLimit(limiterInstance *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		limiterCtx, err := limiterInstance.Get(c.Request.Context(), ip)
		if err != nil {
			GetLoggerFromCtx(c.Request.Context()).Error("Failed to get rate limit context",
				slog.String("ip", ip), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"err": "Internal server error."})
			return
		}

		if limiterCtx.Reached {
			GetLoggerFromCtx(c.Request.Context()).Warn("Rate limit exceeded",
				slog.String("ip", ip),
				slog.Int64("limit", limiterCtx.Limit),
				slog.Int64("remaining_requests", limiterCtx.Remaining))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"err": "Too many requests. Please try again later."})
			return
		}

		c.Next()
	}
}
