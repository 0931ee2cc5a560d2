// Package accounts implements the login, user registration and doctor
// registration forms.
package accounts

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"

	"hospital-portal/apiclient"
	"hospital-portal/models"
	"hospital-portal/notify"
	"hospital-portal/session"
)

const (
	loginSucceeded   = "User login successful!"
	userNotFound     = "User not found!"
	wrongPassword    = "Incorrect password!"
	userRegistered   = "User registered successfully!"
	doctorRegistered = "Doctor registered successfully!"
)

// HashCost is the bcrypt cost used for every stored password.
const HashCost = 10

type API interface {
	FindUser(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u models.User) error
	RegisterDoctor(ctx context.Context, reg models.DoctorRegistration) (string, error)
}

type Service struct {
	api      API
	sessions *session.Manager
	logger   *log.Logger
}

func New(api API, sessions *session.Manager, logger *log.Logger) *Service {
	return &Service{api: api, sessions: sessions, logger: logger}
}

// Login checks the credentials against the stored hash and sets the session
// flag on success. No session is created on any failure.
func (s *Service) Login(ctx context.Context, form LoginForm) (session.Session, notify.Result) {
	if res, bad := s.invalid(form, nil); bad {
		return session.Session{}, res
	}

	user, err := s.api.FindUser(ctx, form.Email)
	if errors.Is(err, models.ErrNotFound) {
		return session.Session{}, notify.Fail(notify.ReasonNotFound, userNotFound, err)
	}
	if err != nil {
		s.logger.Printf("Error looking up user: %v", err)
		return session.Session{}, notify.Fail(notify.ReasonExternal, apiclient.Message(err), err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Printf("Stored password for %s is not a bcrypt hash: %v", form.Email, err)
		}
		return session.Session{}, notify.Fail(notify.ReasonMismatch, wrongPassword, err)
	}

	sess, err := s.sessions.Login(ctx, user.Email)
	if err != nil {
		return session.Session{}, notify.Internal(err)
	}
	res := notify.Done(loginSucceeded)
	res.Redirect = "/"
	return sess, res
}

// Register hashes the password and creates the account. The plain password
// never leaves this function.
func (s *Service) Register(ctx context.Context, form RegisterForm) notify.Result {
	if res, bad := s.invalid(form, nil); bad {
		return res
	}

	hash, res, ok := s.hash(form.Password)
	if !ok {
		return res
	}

	user := models.User{Name: form.Name, Email: form.Email, Password: hash}
	if err := s.api.CreateUser(ctx, user); err != nil {
		s.logger.Printf("Error registering user: %v", err)
		return notify.Fail(notify.ReasonExternal, apiclient.Message(err), err)
	}

	res = notify.Done(userRegistered)
	res.Redirect = "/login"
	return res
}

func (s *Service) RegisterDoctor(ctx context.Context, form DoctorForm) notify.Result {
	if res, bad := s.invalid(form, doctorMessages); bad {
		return res
	}

	hash, res, ok := s.hash(form.Password)
	if !ok {
		return res
	}

	reg := models.DoctorRegistration{
		Name:      form.Name,
		Email:     form.Email,
		Password:  hash,
		Specialty: form.Specialty,
		License:   form.License,
	}
	if _, err := s.api.RegisterDoctor(ctx, reg); err != nil {
		s.logger.Printf("Error registering doctor: %v", err)
		return notify.Fail(notify.ReasonExternal, apiclient.Message(err), err)
	}
	return notify.Done(doctorRegistered)
}

func (s *Service) invalid(form any, overrides map[string]string) (notify.Result, bool) {
	fields, err := check(form, overrides)
	if err != nil {
		return notify.Internal(err), true
	}
	if len(fields) > 0 {
		return notify.Invalid(fields), true
	}
	return notify.Result{}, false
}

func (s *Service) hash(password string) (string, notify.Result, bool) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", notify.Invalid(map[string]string{"password": "Password is too long"}), false
	}
	if err != nil {
		return "", notify.Internal(err), false
	}
	return string(hash), notify.Result{}, true
}
