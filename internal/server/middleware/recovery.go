package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/resume-tailor/resume-tailor-go/internal/apperr"
	"github.com/resume-tailor/resume-tailor-go/internal/logging"
)

// Recovery turns panics into a logged 500 response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.FromContext(c.Request.Context()).
					WithError(fmt.Errorf("%v", rec)).
					WithFields(log.Fields{
						"stack":  string(debug.Stack()),
						"path":   c.Request.URL.Path,
						"method": c.Request.Method,
					}).Error("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    apperr.CodeInternalError,
					"message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
