// Package middleware provides the gin middleware chain of the HTTP server.
package middleware

import (
	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/resume-tailor/resume-tailor-go/internal/logging"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's request id or generates one, echoes it in
// the response and attaches a logger carrying it to the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)

		ctx := logging.WithEntry(c.Request.Context(), log.WithField("request_id", requestID))
		c.Request = c.Request.WithContext(ctx)

		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}
