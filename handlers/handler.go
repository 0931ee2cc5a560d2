package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hospital-portal/accounts"
	"hospital-portal/appointments"
	"hospital-portal/directory"
	"hospital-portal/middleware"
	"hospital-portal/models"
	"hospital-portal/navbar"
	"hospital-portal/notify"
	"hospital-portal/session"
	"hospital-portal/utils"
	"hospital-portal/views"
)

// EventsTopic receives every appointment and registration event.
const EventsTopic = "appointment_events"

// HospitalAPI is everything the portal views call on the hospital API.
type HospitalAPI interface {
	directory.API
	appointments.API
}

// Deps are the collaborators of PortalHandler. Events, Index and Cache may
// be nil when Kafka, Elasticsearch or Redis are not configured.
type Deps struct {
	API      HospitalAPI
	Accounts *accounts.Service
	Sessions *session.Manager
	Views    *views.Registry
	Hub      *notify.Hub
	Navbar   *navbar.Service
	Events   utils.KafkaProducer
	Index    utils.ElasticsearchClient
	Cache    utils.RedisClient
	Logger   *log.Logger

	CookieName   string
	SecureCookie bool
}

type PortalHandler struct {
	Deps
}

func NewPortalHandler(deps Deps) *PortalHandler {
	return &PortalHandler{Deps: deps}
}

type response struct {
	Notification *notify.Notification `json:"notification,omitempty"`
	Redirect     string               `json:"redirect,omitempty"`
	Fields       map[string]string    `json:"fields,omitempty"`
	Navbar       *navbar.Navbar       `json:"navbar,omitempty"`
	View         any                  `json:"view,omitempty"`
}

func statusFor(reason notify.Reason, ok int) int {
	switch reason {
	case notify.ReasonOK:
		return ok
	case notify.ReasonValidation:
		return http.StatusBadRequest
	case notify.ReasonNotFound:
		return http.StatusNotFound
	case notify.ReasonMismatch:
		return http.StatusUnauthorized
	case notify.ReasonExternal:
		return http.StatusBadGateway
	case notify.ReasonNotMounted:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respond writes res with view and, on protected routes, the navbar. The
// notice is also pushed to the session's open sockets.
func (h *PortalHandler) respond(c *gin.Context, ok int, res notify.Result, view any) {
	if res.Reason == notify.ReasonInternal {
		if res.Err != nil {
			_ = c.Error(res.Err)
		}
		h.Logger.Printf("Internal error on %s %s: %v", c.Request.Method, c.FullPath(), res.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	body := response{
		Notification: res.Notice,
		Redirect:     res.Redirect,
		Fields:       res.Fields,
		View:         view,
	}
	if s := middleware.CurrentSession(c); s.ID != "" {
		nb := navbar.For(s)
		body.Navbar = &nb
		if res.Notice != nil && h.Hub != nil {
			h.Hub.Notify(s.ID, *res.Notice)
		}
	}
	c.JSON(statusFor(res.Reason, ok), body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

// setSessionCookie makes the cookie live exactly as long as the stored flag.
func (h *PortalHandler) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.CookieName, id, int(h.Sessions.TTL().Seconds()), "/", "", h.SecureCookie, true)
}

func (h *PortalHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.CookieName, "", -1, "/", "", h.SecureCookie, true)
}

// publish sends ev to Kafka in the background. Failures are logged only.
func (h *PortalHandler) publish(ev models.Event) {
	if h.Events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		data, err := json.Marshal(ev)
		if err != nil {
			h.Logger.Printf("Failed to marshal Kafka event: %v", err)
			return
		}
		if err := h.Events.Publish(ctx, []byte(ev.Email), data); err != nil {
			h.Logger.Printf("Failed to send Kafka message: %v", err)
		}
	}()
}
