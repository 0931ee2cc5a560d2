// Package backend serves the hospital REST API the portal talks to. It
// stands in for the external service during development and tests.
package backend

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"hospital-portal/models"
)

type Server struct {
	repo   models.Repository
	logger *log.Logger
}

func NewServer(repo models.Repository, logger *log.Logger) *Server {
	return &Server{repo: repo, logger: logger}
}

// Routes registers every endpoint on router and wraps it in CORS for the
// given origins.
func (s *Server) Routes(router *mux.Router, allowedOrigins []string) http.Handler {
	router.HandleFunc("/doctors", s.listDoctors).Methods("GET")
	router.HandleFunc("/appointments", s.listAppointments).Methods("GET")
	router.HandleFunc("/appointments", s.createAppointment).Methods("POST")
	router.HandleFunc("/appointments/{id}", s.updateAppointment).Methods("PUT")
	router.HandleFunc("/appointments/{id}", s.deleteAppointment).Methods("DELETE")
	router.HandleFunc("/users", s.listUsers).Methods("GET")
	router.HandleFunc("/users", s.createUser).Methods("POST")
	router.HandleFunc("/api/doctors/register", s.registerDoctor).Methods("POST")
	router.HandleFunc("/", s.registerLicense).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: true,
	})
	return c.Handler(router)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func (s *Server) internal(w http.ResponseWriter, op string, err error) {
	s.logger.Printf("Error in %s: %v", op, err)
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

func (s *Server) listDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := s.repo.ListDoctors(r.Context())
	if err != nil {
		s.internal(w, "list doctors", err)
		return
	}
	for i := range doctors {
		if doctors[i].Diseases == nil {
			doctors[i].Diseases = []string{}
		}
	}
	writeJSON(w, http.StatusOK, doctors)
}

func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.ListAppointments(r.Context(), r.URL.Query().Get("userEmail"))
	if err != nil {
		s.internal(w, "list appointments", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createAppointment(w http.ResponseWriter, r *http.Request) {
	var a models.Appointment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	a.ID = ""
	if a.DoctorID == "" || a.UserEmail == "" || a.Date == "" || a.Time == "" {
		writeMessage(w, http.StatusBadRequest, "doctorId, userEmail, date and time are required")
		return
	}
	if err := s.repo.CreateAppointment(r.Context(), &a); err != nil {
		s.internal(w, "create appointment", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// updateAppointment replaces the whole record; the path id wins over any
// id in the body.
func (s *Server) updateAppointment(w http.ResponseWriter, r *http.Request) {
	var a models.Appointment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	a.ID = models.ID(mux.Vars(r)["id"])
	err := s.repo.UpdateAppointment(r.Context(), &a)
	if errors.Is(err, models.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Appointment not found")
		return
	}
	if err != nil {
		s.internal(w, "update appointment", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	err := s.repo.DeleteAppointment(r.Context(), models.ID(mux.Vars(r)["id"]))
	if errors.Is(err, models.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Appointment not found")
		return
	}
	if err != nil {
		s.internal(w, "delete appointment", err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.repo.ListUsers(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		s.internal(w, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	u.ID = ""
	if u.Email == "" || u.Password == "" {
		writeMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}
	err := s.repo.CreateUser(r.Context(), &u)
	if errors.Is(err, models.ErrDuplicate) {
		writeMessage(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		s.internal(w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) registerDoctor(w http.ResponseWriter, r *http.Request) {
	var reg models.DoctorRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if reg.Name == "" || reg.Email == "" || reg.Password == "" || reg.Specialty == "" {
		writeMessage(w, http.StatusBadRequest, "name, email, password and specialty are required")
		return
	}

	doctors, err := s.repo.ListDoctors(r.Context())
	if err != nil {
		s.internal(w, "register doctor", err)
		return
	}
	for _, d := range doctors {
		if d.Email != "" && strings.EqualFold(d.Email, reg.Email) {
			writeMessage(w, http.StatusConflict, "Doctor already registered")
			return
		}
	}

	doc := models.Doctor{
		Name:      reg.Name,
		Specialty: reg.Specialty,
		Diseases:  []string{},
		Email:     reg.Email,
		License:   reg.License,
		Password:  reg.Password,
	}
	if err := s.repo.CreateDoctor(r.Context(), &doc); err != nil {
		s.internal(w, "register doctor", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Doctor registered successfully", "id": doc.ID})
}

// registerLicense accepts the short name-and-license form and answers with
// a message to display.
func (s *Server) registerLicense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		License string `json:"license"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Name) < 2 || len(req.License) < 5 {
		writeMessage(w, http.StatusBadRequest, "Name and license number are required")
		return
	}
	writeMessage(w, http.StatusCreated, "Registration received for "+req.Name)
}
