package middleware

import (
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/resume-tailor/resume-tailor-go/internal/logging"
)

// AccessLog logs one line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logging.FromContext(c.Request.Context()).WithFields(log.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn("http.request")
			return
		}
		entry.Info("http.request")
	}
}
