package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hospital-portal/accounts"
	"hospital-portal/models"
	"hospital-portal/monitoring"
)

type formView struct {
	Form string `json:"form"`
}

func (h *PortalHandler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, response{View: formView{Form: "login"}})
}

func (h *PortalHandler) Login(c *gin.Context) {
	var form accounts.LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	sess, res := h.Accounts.Login(c.Request.Context(), form)
	monitoring.LoginAttempts.WithLabelValues(res.Reason.String()).Inc()
	if res.OK() {
		h.setSessionCookie(c, sess.ID)
	}
	h.respond(c, http.StatusOK, res, nil)
}

func (h *PortalHandler) RegisterPage(c *gin.Context) {
	c.JSON(http.StatusOK, response{View: formView{Form: "register"}})
}

func (h *PortalHandler) Register(c *gin.Context) {
	var form accounts.RegisterForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	res := h.Accounts.Register(c.Request.Context(), form)
	if res.OK() {
		h.publish(models.Event{Event: models.EventUserRegistered, Email: form.Email, Name: form.Name})
	}
	h.respond(c, http.StatusCreated, res, nil)
}

func (h *PortalHandler) DoctorPage(c *gin.Context) {
	c.JSON(http.StatusOK, response{View: formView{Form: "doctor"}})
}

func (h *PortalHandler) RegisterDoctor(c *gin.Context) {
	var form accounts.DoctorForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	res := h.Accounts.RegisterDoctor(c.Request.Context(), form)
	if res.OK() {
		h.publish(models.Event{Event: models.EventDoctorRegistered, Email: form.Email, Name: form.Name})
	}
	h.respond(c, http.StatusCreated, res, nil)
}
