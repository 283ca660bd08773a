package middleware

import (
	"github.com/gin-gonic/gin"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/ratelimit"
	"liquorpos/internal/infrastructure/metrics"
	"liquorpos/pkg/logger"
)

// RateLimit applies a per-client token bucket. Keys are client IPs;
// limiter state may live in Redis so all instances share the budget.
// A limiter failure lets the request through: availability over strict
// limiting.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !allowed {
			metrics.RateLimitRejectionsTotal.Inc()
			_ = c.Error(&apperror.AppError{
				Code:       "RATE_LIMITED",
				Message:    "too many requests",
				HTTPStatus: 429,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
