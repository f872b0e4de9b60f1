package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"comercio/internal/infrastructure/metrics"
)

// Metrics middleware records request counters and latency histograms.
// The route template is used as the path label to keep cardinality low.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
	}
}
