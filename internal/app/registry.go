package app

import (
	"context"
	"sync"

	"github.com/havenapp/haven/internal/core"
	"github.com/havenapp/haven/internal/domain"
	"github.com/rs/zerolog/log"
)

type session struct {
	UserID      domain.UserID
	DisplayName string
	Sink        core.Sink
	Cancel      context.CancelFunc
}

// Registry tracks every live connection and its claimed identity. It is
// the one place that can resolve a connection ID back to a sendable
// transport channel.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.ConnID]*session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[core.ConnID]*session)}
}

// Bind registers a freshly accepted connection with empty identity and no
// room membership.
func (r *Registry) Bind(connID core.ConnID, sink core.Sink, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = &session{Sink: sink, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(connID)).Msg("bound connection")
}

// Identify records the identity a connection is claiming. Returns the
// previously claimed identity (empty the first time) and whether the
// connection is still registered.
func (r *Registry) Identify(connID core.ConnID, userID domain.UserID, displayName string) (domain.UserID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[connID]
	if !ok {
		return "", false
	}
	prev := s.UserID
	s.UserID = userID
	s.DisplayName = displayName
	return prev, true
}

// Identity returns the connection's claimed identity, if any.
func (r *Registry) Identity(connID core.ConnID) (domain.UserID, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connID]
	if !ok {
		return "", "", false
	}
	return s.UserID, s.DisplayName, true
}

// Resolve returns the live transport sink behind a connection ID.
func (r *Registry) Resolve(connID core.ConnID) (core.Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connID]
	if !ok {
		return nil, false
	}
	return s.Sink, true
}

// Unbind removes the connection record and reports the identity it held.
// A second unbind for the same connection is a no-op.
func (r *Registry) Unbind(connID core.ConnID) (domain.UserID, core.Sink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[connID]
	if !ok {
		return "", nil, false
	}
	delete(r.sessions, connID)
	if s.Cancel != nil {
		s.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(connID)).Msg("unbound connection")
	return s.UserID, s.Sink, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sinks snapshots every live sink, for shutdown.
func (r *Registry) Sinks() []core.Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Sink, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Sink)
	}
	return out
}
