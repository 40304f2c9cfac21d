package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"finportal/internal/common/logger"
	"finportal/internal/common/metrics"
)

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		fields := map[string]interface{}{
			"method":      method,
			"path":        path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		}
		if !strings.HasPrefix(path, "/health") && path != "/metrics" {
			fields["user_agent"] = c.Request.UserAgent()
		}

		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
			log.Error("HTTP request with errors", fields)
			return
		}
		if path == "/health" || path == "/ready" || path == "/metrics" {
			log.Debug("HTTP request", fields)
			return
		}
		log.Info("HTTP request", fields)
	}
}

// requestMetrics labels by route template so ids do not explode the
// series count. Unmatched routes share one label.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
