package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hospital-portal/middleware"
)

func (h *PortalHandler) Logout(c *gin.Context) {
	s := middleware.CurrentSession(c)
	res := h.Navbar.Logout(c.Request.Context(), s.ID)
	if res.OK() {
		h.clearSessionCookie(c)
	}
	if res.Err != nil {
		_ = c.Error(res.Err)
	}
	status := statusFor(res.Reason, http.StatusOK)
	c.JSON(status, gin.H{"redirect": res.Redirect})
}

// Socket upgrades to the session's notification stream. ?view=home also
// streams the carousel.
func (h *PortalHandler) Socket(c *gin.Context) {
	s := middleware.CurrentSession(c)
	if err := h.Hub.Serve(c.Writer, c.Request, s.ID, c.Query("view") == "home"); err != nil {
		h.Logger.Printf("Websocket upgrade failed: %v", err)
	}
}

func (h *PortalHandler) Health(c *gin.Context) {
	if h.Cache == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"details": gin.H{"sessions": "memory"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Cache.SetToCache(ctx, "healthcheck", "ping", 10*time.Second); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"details": gin.H{"redis": "unavailable"},
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"details": gin.H{"redis": "available"},
	})
}
