package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hospital-portal/session"
)

const sessionKey = "session"

// RequireSession lets the request through only when its cookie names a
// session whose flag is set. The check runs on every request. Browsers are
// redirected to /login; other callers get a 401 naming the redirect.
func RequireSession(sessions *session.Manager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cookieName)
		s, ok, err := sessions.Current(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
		}
		if !ok {
			denyToLogin(c)
			return
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}

func denyToLogin(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodGet, http.MethodHead:
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	default:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":    "login required",
			"redirect": "/login",
		})
	}
}

// CurrentSession returns the session RequireSession stored on the context.
func CurrentSession(c *gin.Context) session.Session {
	s, _ := c.Get(sessionKey)
	sess, _ := s.(session.Session)
	return sess
}
