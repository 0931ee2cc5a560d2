// Package views tracks the one live view each session has open.
package views

import "sync"

// View is anything that can be mounted for a session.
type View interface {
	Unmount()
}

type entry struct {
	path string
	view View
}

type Registry struct {
	mu   sync.Mutex
	live map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{live: make(map[string]entry)}
}

// Mount makes v the live view of the session, unmounting whatever was live
// before.
func (r *Registry) Mount(sessionID, path string, v View) {
	r.mu.Lock()
	prev, ok := r.live[sessionID]
	r.live[sessionID] = entry{path: path, view: v}
	r.mu.Unlock()

	if ok && prev.view != v {
		prev.view.Unmount()
	}
}

// Drop unmounts the session's live view, if any.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	prev, ok := r.live[sessionID]
	delete(r.live, sessionID)
	r.mu.Unlock()

	if ok {
		prev.view.Unmount()
	}
}

// Path reports which view the session has open.
func (r *Registry) Path(sessionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.live[sessionID]
	return e.path, ok
}

// Lookup returns the session's live view when it is a T.
func Lookup[T View](r *Registry, sessionID string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.live[sessionID]
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := e.view.(T)
	return v, ok
}
