package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hospital-portal/appointments"
	"hospital-portal/middleware"
	"hospital-portal/models"
	"hospital-portal/monitoring"
	"hospital-portal/notify"
	"hospital-portal/views"
)

// activityIndex is the Elasticsearch index the activity consumer writes.
const activityIndex = "appointments"

type editFieldRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Appointments mounts a fresh appointment list for the session.
func (h *PortalHandler) Appointments(c *gin.Context) {
	s := middleware.CurrentSession(c)
	l := appointments.New(h.API, s, h.Logger)
	h.Views.Mount(s.ID, "/appointments", l)

	res := l.Mount(c.Request.Context())
	h.respond(c, http.StatusOK, res, l.View())
}

func (h *PortalHandler) withList(c *gin.Context, fn func(l *appointments.List) notify.Result) {
	l, ok := views.Lookup[*appointments.List](h.Views, middleware.CurrentSession(c).ID)
	if !ok {
		h.respond(c, http.StatusOK, notify.NotMounted("/appointments"), nil)
		return
	}
	res := fn(l)
	h.respond(c, http.StatusOK, res, l.View())
}

func (h *PortalHandler) DeleteAppointment(c *gin.Context) {
	id := models.ID(c.Param("id"))
	s := middleware.CurrentSession(c)
	h.withList(c, func(l *appointments.List) notify.Result {
		res := l.Delete(c.Request.Context(), id)
		monitoring.AppointmentChanges.WithLabelValues("delete", monitoring.Outcome(res.OK())).Inc()
		if res.OK() {
			h.publish(models.Event{Event: models.EventAppointmentDeleted, Email: s.Email, Appointment: &models.Appointment{ID: id}})
		}
		return res
	})
}

func (h *PortalHandler) BeginEdit(c *gin.Context) {
	id := models.ID(c.Param("id"))
	h.withList(c, func(l *appointments.List) notify.Result {
		return l.BeginEdit(id)
	})
}

func (h *PortalHandler) UpdateEditField(c *gin.Context) {
	var req editFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	id := models.ID(c.Param("id"))
	h.withList(c, func(l *appointments.List) notify.Result {
		if res, ok := editingRow(l, id); !ok {
			return res
		}
		return l.UpdateEditField(req.Name, req.Value)
	})
}

func (h *PortalHandler) CancelEdit(c *gin.Context) {
	h.withList(c, func(l *appointments.List) notify.Result {
		l.CancelEdit()
		return notify.Quiet()
	})
}

func (h *PortalHandler) SubmitEdit(c *gin.Context) {
	id := models.ID(c.Param("id"))
	s := middleware.CurrentSession(c)
	h.withList(c, func(l *appointments.List) notify.Result {
		if res, ok := editingRow(l, id); !ok {
			return res
		}
		res := l.SubmitEdit(c.Request.Context())
		monitoring.AppointmentChanges.WithLabelValues("update", monitoring.Outcome(res.OK())).Inc()
		if res.OK() {
			if updated, found := findRow(l, id); found {
				h.publish(models.Event{Event: models.EventAppointmentUpdated, Email: s.Email, Appointment: &updated})
			}
		}
		return res
	})
}

// editingRow checks that the edit form belongs to id.
func editingRow(l *appointments.List, id models.ID) (notify.Result, bool) {
	editing, ok := l.Editing()
	if !ok || editing != id {
		return notify.Fail(notify.ReasonValidation, "Appointment is not being edited.", nil), false
	}
	return notify.Quiet(), true
}

func findRow(l *appointments.List, id models.ID) (models.Appointment, bool) {
	for _, row := range l.View().Appointments {
		if row.ID == id {
			return row.Appointment, true
		}
	}
	return models.Appointment{}, false
}

// History lists the session user's appointment activity from the search
// index, newest first.
func (h *PortalHandler) History(c *gin.Context) {
	if h.Index == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "appointment history is not available"})
		return
	}
	s := middleware.CurrentSession(c)
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"userEmail.keyword": s.Email,
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"indexedAt": map[string]interface{}{"order": "desc", "unmapped_type": "date"}},
		},
		"size": 100,
	}

	docs, err := h.Index.SearchDocuments(c.Request.Context(), activityIndex, query)
	if err != nil {
		h.respond(c, http.StatusOK, notify.Fail(notify.ReasonExternal, "Failed to fetch appointment history.", err), nil)
		return
	}
	h.respond(c, http.StatusOK, notify.Quiet(), gin.H{"history": docs})
}
