package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hospital-portal/monitoring"
)

// PrometheusMetrics records request count and latency per route template.
// Unmatched paths share one label so random URLs cannot grow the series.
func PrometheusMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		monitoring.RequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			http.StatusText(c.Writer.Status()),
		).Inc()
		monitoring.RequestDuration.WithLabelValues(
			c.Request.Method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}
