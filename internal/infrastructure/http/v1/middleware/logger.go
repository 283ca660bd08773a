package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"liquorpos/internal/infrastructure/metrics"
	"liquorpos/pkg/logger"
)

// Logger middleware logs HTTP requests with timing and status, and
// feeds the request metrics.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		statusLabel := strconv.Itoa(status)
		route := c.FullPath()
		if route == "" {
			route = path
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, statusLabel).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, statusLabel).Observe(latency.Seconds())

		log.WithContext(c.Request.Context()).Infow("http request",
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"error", c.Errors.ByType(gin.ErrorTypePrivate).String(),
		)
	}
}
