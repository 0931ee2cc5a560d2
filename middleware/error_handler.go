package middleware

import (
	"github.com/gin-gonic/gin"

	"hospital-portal/utils"
)

// ErrorHandler reports every error a handler attached with c.Error to
// Sentry once the request has finished.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		extra := map[string]interface{}{
			"endpoint": c.FullPath(),
			"method":   c.Request.Method,
			"status":   c.Writer.Status(),
		}
		if s := CurrentSession(c); s.ID != "" {
			extra["session"] = s.ID
		}
		for _, ginErr := range c.Errors {
			utils.CaptureError(ginErr.Err, extra)
		}
	}
}
