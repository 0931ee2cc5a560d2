package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated context handed to protected views.
type Session struct {
	ID    string
	Email string
}

// Manager owns login, logout and the authenticated predicate. It is the
// only code that reads or writes the session flag.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager stores flags for ttl; zero means they never expire.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// TTL is how long a login stays valid.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Login(ctx context.Context, email string) (Session, error) {
	s := Session{ID: uuid.New().String(), Email: email}
	if err := m.store.Set(ctx, s.ID, email, m.ttl); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Logout clears the flag Current checks. Logging out an unknown id is not
// an error.
func (m *Manager) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, id)
}

// Current reports whether id carries a session flag.
func (m *Manager) Current(ctx context.Context, id string) (Session, bool, error) {
	if id == "" {
		return Session{}, false, nil
	}
	email, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrNoSession) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	return Session{ID: id, Email: email}, true, nil
}
