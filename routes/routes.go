package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hospital-portal/handlers"
	"hospital-portal/middleware"
	"hospital-portal/monitoring"
	"hospital-portal/session"
)

// NewEngine returns a bare engine that reads the client address from
// forwarding headers only for requests arriving from trustedProxies. With
// none configured the socket address is used.
func NewEngine(trustedProxies []string) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	return router, nil
}

// SetupRoutes registers the portal's public pages, the guarded views and
// the ambient endpoints. Any other path goes back to the login page.
func SetupRoutes(router *gin.Engine, h *handlers.PortalHandler, sessions *session.Manager, cookieName string, limiter *middleware.RateLimiter) {
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(monitoring.Handler()))

	// Public forms
	public := router.Group("")
	public.Use(middleware.RateLimit(limiter))
	{
		public.GET("/login", h.LoginPage)
		public.POST("/login", h.Login)
		public.GET("/register", h.RegisterPage)
		public.POST("/register", h.Register)
		public.GET("/doctor", h.DoctorPage)
		public.POST("/doctor", h.RegisterDoctor)
	}

	protected := router.Group("")
	protected.Use(middleware.RequireSession(sessions, cookieName))
	{
		// Home: directory, search and booking dialog
		protected.GET("/", h.Home)
		protected.POST("/search", h.Search)
		protected.POST("/doctors/:id/booking", h.OpenBooking)
		protected.DELETE("/booking", h.CloseBooking)
		protected.POST("/booking", h.Book)

		// Appointment management
		protected.GET("/appointments", h.Appointments)
		protected.GET("/appointments/history", h.History)
		protected.DELETE("/appointments/:id", h.DeleteAppointment)
		protected.PUT("/appointments/:id", h.SubmitEdit)
		protected.POST("/appointments/:id/edit", h.BeginEdit)
		protected.PATCH("/appointments/:id/edit", h.UpdateEditField)
		protected.DELETE("/appointments/:id/edit", h.CancelEdit)

		protected.POST("/logout", h.Logout)
		protected.GET("/ws", h.Socket)
	}

	router.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/login")
	})
}
