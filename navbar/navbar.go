// Package navbar is the header shown on every protected view.
package navbar

import (
	"context"

	"hospital-portal/notify"
	"hospital-portal/session"
)

const DefaultAvatar = "https://st3.depositphotos.com/9998432/13335/v/450/depositphotos_133352010-stock-illustration-default-placeholder-man-and-woman.jpg"

type Link struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

type Navbar struct {
	Links  []Link `json:"links"`
	Avatar string `json:"avatar"`
	Email  string `json:"email"`
}

func For(s session.Session) Navbar {
	return Navbar{
		Links: []Link{
			{Label: "Home", Path: "/"},
			{Label: "Appointments", Path: "/appointments"},
		},
		Avatar: DefaultAvatar,
		Email:  s.Email,
	}
}

// Teardown releases something a session holds besides its flag, such as
// its live view or open sockets.
type Teardown func(sessionID string)

type Service struct {
	sessions *session.Manager
	teardown []Teardown
}

func New(sessions *session.Manager, teardown ...Teardown) *Service {
	return &Service{sessions: sessions, teardown: teardown}
}

// Logout clears the session flag the route guard checks and tears down the
// session's view state.
func (s *Service) Logout(ctx context.Context, sessionID string) notify.Result {
	if err := s.sessions.Logout(ctx, sessionID); err != nil {
		return notify.Internal(err)
	}
	for _, t := range s.teardown {
		t(sessionID)
	}
	return notify.Result{Reason: notify.ReasonOK, Redirect: "/login"}
}
