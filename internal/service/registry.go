package service

import (
	"sync"

	"github.com/google/uuid"
	"github.com/prepdeck/intervue-backend/internal/session"
)

// LiveSession bundles a running controller with the relays a WebSocket
// connection rebinds on attach.
type LiveSession struct {
	Controller *session.Controller
	Emitter    *session.Relay
	Activator  *session.ActivatorRelay
}

// SessionRegistry holds all in-memory session controllers, keyed by
// interview ID. One controller per interview; the registry is the only
// place live controllers are reachable from.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*LiveSession
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[uuid.UUID]*LiveSession)}
}

// Get returns the live session for an interview, if any.
func (r *SessionRegistry) Get(interviewID uuid.UUID) (*LiveSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ls, ok := r.sessions[interviewID]
	return ls, ok
}

// Put registers a live session. Returns the existing one instead when the
// interview already has a controller, so concurrent attaches converge.
func (r *SessionRegistry) Put(interviewID uuid.UUID, ls *LiveSession) *LiveSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[interviewID]; ok {
		return existing
	}
	r.sessions[interviewID] = ls
	return ls
}

// Remove drops a session from the registry.
func (r *SessionRegistry) Remove(interviewID uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, interviewID)
	r.mu.Unlock()
}

// Count returns how many sessions are live.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
