package middleware

import (
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware wraps each request in a Sentry transaction named after
// the matched route. The session cookie never leaves the process.
func SentryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		hub := sentry.CurrentHub()
		if hub == nil || hub.Client() == nil {
			c.Next()
			return
		}
		hub = hub.Clone()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		transaction := sentry.StartTransaction(
			sentry.SetHubOnContext(c.Request.Context(), hub),
			c.Request.Method+" "+route,
			sentry.ContinueFromRequest(c.Request),
		)
		defer func() {
			transaction.Status = sentry.HTTPtoSpanStatus(c.Writer.Status())
			transaction.Finish()
		}()

		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetContext("Request", map[string]interface{}{
				"Method":  c.Request.Method,
				"URL":     c.Request.URL.String(),
				"Headers": safeHeaders(c.Request.Header),
			})
			scope.SetTag("http.method", c.Request.Method)
			scope.SetTag("http.route", route)
		})

		c.Request = c.Request.WithContext(transaction.Context())
		c.Next()
	}
}

func safeHeaders(h http.Header) map[string]interface{} {
	safe := make(map[string]interface{}, len(h))
	for k, v := range h {
		if strings.EqualFold(k, "Authorization") || strings.EqualFold(k, "Cookie") {
			safe[k] = "[FILTERED]"
			continue
		}
		safe[k] = v
	}
	return safe
}
