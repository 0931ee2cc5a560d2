package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hospital-portal/directory"
	"hospital-portal/middleware"
	"hospital-portal/models"
	"hospital-portal/monitoring"
	"hospital-portal/notify"
	"hospital-portal/views"
)

type searchRequest struct {
	Term string `json:"term"`
}

type bookingRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Home mounts a fresh doctor directory for the session.
func (h *PortalHandler) Home(c *gin.Context) {
	s := middleware.CurrentSession(c)
	d := directory.New(h.API, h.Logger)
	h.Views.Mount(s.ID, "/", d)

	res := d.Mount(c.Request.Context())
	h.respond(c, http.StatusOK, res, d.View())
}

// withDirectory runs fn against the session's live home view.
func (h *PortalHandler) withDirectory(c *gin.Context, fn func(d *directory.Directory) notify.Result) {
	d, ok := views.Lookup[*directory.Directory](h.Views, middleware.CurrentSession(c).ID)
	if !ok {
		h.respond(c, http.StatusOK, notify.NotMounted("/"), nil)
		return
	}
	res := fn(d)
	h.respond(c, http.StatusOK, res, d.View())
}

func (h *PortalHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.withDirectory(c, func(d *directory.Directory) notify.Result {
		d.Search(req.Term)
		return notify.Quiet()
	})
}

func (h *PortalHandler) OpenBooking(c *gin.Context) {
	id := models.ID(c.Param("id"))
	h.withDirectory(c, func(d *directory.Directory) notify.Result {
		return d.OpenBooking(id)
	})
}

func (h *PortalHandler) CloseBooking(c *gin.Context) {
	h.withDirectory(c, func(d *directory.Directory) notify.Result {
		d.CloseBooking()
		return notify.Quiet()
	})
}

func (h *PortalHandler) Book(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s := middleware.CurrentSession(c)
	h.withDirectory(c, func(d *directory.Directory) notify.Result {
		created, res := d.Book(c.Request.Context(), s, req.Date, req.Time)
		monitoring.BookingsTotal.WithLabelValues(res.Reason.String()).Inc()
		if res.OK() {
			h.publish(models.Event{Event: models.EventAppointmentBooked, Email: s.Email, Appointment: &created})
		}
		return res
	})
}
