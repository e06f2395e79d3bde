package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"github.com/resume-tailor/resume-tailor-go/internal/logging"
)

// Trace starts a server span per request.
func Trace(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceContext adds the trace id to the request logger and response headers.
// It must run after Trace and RequestID.
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if sc := span.SpanContext(); sc.IsValid() {
			traceID := sc.TraceID().String()
			c.Set("trace_id", traceID)

			ctx := c.Request.Context()
			ctx = logging.WithEntry(ctx, logging.FromContext(ctx).WithField("trace_id", traceID))
			c.Request = c.Request.WithContext(ctx)

			c.Header("X-Trace-ID", traceID)
		}
		c.Next()
	}
}
