package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"

	"hospital-portal/accounts"
	"hospital-portal/apiclient"
	"hospital-portal/backend"
	"hospital-portal/handlers"
	"hospital-portal/middleware"
	"hospital-portal/models"
	"hospital-portal/navbar"
	"hospital-portal/notify"
	"hospital-portal/session"
	"hospital-portal/views"
)

const cookieName = "login-system"

func init() {
	gin.SetMode(gin.TestMode)
}

// newPortal wires the portal against an in-process hospital API.
func newPortal(t *testing.T) *gin.Engine {
	t.Helper()
	logger := log.New(io.Discard, "", 0)

	repo := models.NewMemoryRepository()
	if _, err := backend.Seed(context.Background(), repo); err != nil {
		t.Fatal(err)
	}
	hospital := httptest.NewServer(backend.NewServer(repo, logger).Routes(mux.NewRouter(), nil))
	t.Cleanup(hospital.Close)

	api := apiclient.New(hospital.URL, 5*time.Second)
	sessions := session.NewManager(session.NewMemoryStore(), 0)
	registry := views.NewRegistry()
	hub := notify.NewHub(nil, time.Second, nil)

	h := handlers.NewPortalHandler(handlers.Deps{
		API:        api,
		Accounts:   accounts.New(api, sessions, logger),
		Sessions:   sessions,
		Views:      registry,
		Hub:        hub,
		Navbar:     navbar.New(sessions, registry.Drop, hub.Disconnect),
		Logger:     logger,
		CookieName: cookieName,
	})

	router, err := NewEngine(nil)
	if err != nil {
		t.Fatal(err)
	}
	SetupRoutes(router, h, sessions, cookieName, middleware.NewRateLimiter(100, 100))
	return router
}

type client struct {
	t      *testing.T
	router *gin.Engine
	cookie string
}

func (c *client) call(method, path string, body any) (int, map[string]json.RawMessage) {
	c.t.Helper()
	var buf io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: c.cookie})
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == cookieName {
			c.cookie = ck.Value
		}
	}
	out := map[string]json.RawMessage{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func TestUnknownPathRedirectsToLogin(t *testing.T) {
	router := newPortal(t)
	for _, path := range []string{"/nowhere", "/admin/settings"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
			t.Errorf("%s: %d %s", path, w.Code, w.Header().Get("Location"))
		}
	}
}

func TestProtectedPagesNeedLogin(t *testing.T) {
	router := newPortal(t)
	for _, path := range []string{"/", "/appointments", "/ws"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
			t.Errorf("%s: %d", path, w.Code)
		}
	}
	for _, path := range []string{"/login", "/register", "/doctor", "/health"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: %d", path, w.Code)
		}
	}
}

// TestPatientJourney registers, logs in, books through the home view and
// finds the booking on the appointments page.
func TestPatientJourney(t *testing.T) {
	c := &client{t: t, router: newPortal(t)}

	if code, _ := c.call(http.MethodPost, "/register", map[string]string{"name": "Ann", "email": "ann@test.com", "password": "secret"}); code != http.StatusCreated {
		t.Fatalf("register = %d", code)
	}
	if code, _ := c.call(http.MethodPost, "/login", map[string]string{"email": "ann@test.com", "password": "secret"}); code != http.StatusOK || c.cookie == "" {
		t.Fatalf("login = %d cookie %q", code, c.cookie)
	}

	if code, _ := c.call(http.MethodGet, "/", nil); code != http.StatusOK {
		t.Fatalf("home = %d", code)
	}
	code, body := c.call(http.MethodPost, "/search", map[string]string{"term": "asth"})
	if code != http.StatusOK {
		t.Fatalf("search = %d", code)
	}
	var home struct {
		Doctors []models.Doctor `json:"doctors"`
	}
	if err := json.Unmarshal(body["view"], &home); err != nil || len(home.Doctors) != 1 {
		t.Fatalf("search result = %s (%v)", body["view"], err)
	}
	doc := home.Doctors[0]

	if code, _ := c.call(http.MethodPost, "/doctors/"+doc.ID.String()+"/booking", nil); code != http.StatusOK {
		t.Fatalf("open booking = %d", code)
	}
	if code, body := c.call(http.MethodPost, "/booking", map[string]string{"date": "2030-04-04", "time": "14:00"}); code != http.StatusOK {
		t.Fatalf("book = %d %s", code, body["notification"])
	}

	code, body = c.call(http.MethodGet, "/appointments", nil)
	if code != http.StatusOK {
		t.Fatalf("appointments = %d", code)
	}
	var list struct {
		Loading      bool `json:"loading"`
		Appointments []struct {
			models.Appointment
			State string `json:"state"`
		} `json:"appointments"`
	}
	if err := json.Unmarshal(body["view"], &list); err != nil {
		t.Fatal(err)
	}
	if list.Loading || len(list.Appointments) != 1 {
		t.Fatalf("list = %s", body["view"])
	}
	got := list.Appointments[0]
	if got.DoctorID != doc.ID || got.DoctorName != doc.Name || got.Specialization != doc.Specialty ||
		got.Date != "2030-04-04" || got.Time != "14:00" || got.UserEmail != "ann@test.com" {
		t.Errorf("booked appointment = %+v", got.Appointment)
	}

	if code, _ := c.call(http.MethodPost, "/logout", nil); code != http.StatusOK {
		t.Fatalf("logout = %d", code)
	}
	if code, _ := c.call(http.MethodGet, "/appointments", nil); code != http.StatusFound {
		t.Errorf("appointments after logout = %d", code)
	}
}

func TestUnknownEmailGetsNoSession(t *testing.T) {
	c := &client{t: t, router: newPortal(t)}
	code, body := c.call(http.MethodPost, "/login", map[string]string{"email": "ghost@test.com", "password": "secret"})
	if code != http.StatusNotFound {
		t.Fatalf("status = %d", code)
	}
	var n notify.Notification
	_ = json.Unmarshal(body["notification"], &n)
	if n.Message != "User not found!" {
		t.Errorf("notification = %+v", n)
	}
	if c.cookie != "" {
		t.Error("cookie issued for unknown user")
	}
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeers(t *testing.T) {
	tests := []struct {
		name        string
		proxies     []string
		remoteAddr  string
		wantLimited int
	}{
		{"direct client rotating header", nil, "203.0.113.7:40000", 8},
		{"trusted proxy forwarding distinct clients", []string{"10.0.0.1"}, "10.0.0.1:40000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, err := NewEngine(tt.proxies)
			if err != nil {
				t.Fatal(err)
			}
			router.Use(middleware.RateLimit(middleware.NewRateLimiter(0.001, 2)))
			router.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

			limited := 0
			for i := 0; i < 10; i++ {
				req := httptest.NewRequest(http.MethodPost, "/login", nil)
				req.RemoteAddr = tt.remoteAddr
				req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)
				if w.Code == http.StatusTooManyRequests {
					limited++
				}
			}
			if limited != tt.wantLimited {
				t.Errorf("limited = %d, want %d", limited, tt.wantLimited)
			}
		})
	}
}

func TestNewEngineRejectsBadProxy(t *testing.T) {
	if _, err := NewEngine([]string{"not-an-ip"}); err == nil {
		t.Error("expected error for invalid proxy address")
	}
}
