package models

import (
	"context"
	"slices"
	"strconv"
	"sync"
)

// MemoryRepository keeps everything in process. Used by the hospital API
// when no database is configured, and by tests.
type MemoryRepository struct {
	mu           sync.RWMutex
	seq          int
	doctors      []Doctor
	appointments []Appointment
	users        []User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) next() ID {
	r.seq++
	return ID(strconv.Itoa(r.seq))
}

func (r *MemoryRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Doctor, len(r.doctors))
	for i, d := range r.doctors {
		d.Diseases = slices.Clone(d.Diseases)
		out[i] = d
	}
	return out, nil
}

func (r *MemoryRepository) CreateDoctor(ctx context.Context, doctor *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doctor.ID == "" {
		doctor.ID = r.next()
	}
	r.doctors = append(r.doctors, *doctor)
	return nil
}

func (r *MemoryRepository) CreateAppointment(ctx context.Context, appointment *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appointment.ID == "" {
		appointment.ID = r.next()
	}
	r.appointments = append(r.appointments, *appointment)
	return nil
}

func (r *MemoryRepository) ListAppointments(ctx context.Context, userEmail string) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Appointment{}
	for _, a := range r.appointments {
		if userEmail == "" || a.UserEmail == userEmail {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *MemoryRepository) UpdateAppointment(ctx context.Context, appointment *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appointments {
		if r.appointments[i].ID == appointment.ID {
			r.appointments[i] = *appointment
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) DeleteAppointment(ctx context.Context, id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appointments {
		if r.appointments[i].ID == id {
			r.appointments = append(r.appointments[:i], r.appointments[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) ListUsers(ctx context.Context, email string) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []User{}
	for _, u := range r.users {
		if email == "" || u.Email == email {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = r.next()
	}
	r.users = append(r.users, *user)
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
