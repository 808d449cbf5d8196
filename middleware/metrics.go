package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/S204-Inatel-2025-2/AgendaFacil/metrics"
)

// RequestMetrics observes the latency of every request.
func RequestMetrics(rec metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rec.RecordRequest(c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
