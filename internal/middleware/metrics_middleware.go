package middleware

import (
	"time"

	"github.com/gamevault/storefront-backend/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records every request against its route template.
func MetricsMiddleware(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Observe(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
