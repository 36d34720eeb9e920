package server

import (
	"context"
	"errors"
	"sync"

	"verbum-lector/services"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// registry holds the live sessions of the server.
type registry struct {
	ctx      context.Context
	pipeline *services.Pipeline

	mu       sync.RWMutex
	sessions map[string]*services.Session
}

func newRegistry(ctx context.Context, pipeline *services.Pipeline) *registry {
	return &registry{
		ctx:      ctx,
		pipeline: pipeline,
		sessions: make(map[string]*services.Session),
	}
}

func (r *registry) create() *services.Session {
	s := r.pipeline.NewSession(r.ctx)
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

func (r *registry) get(id string) (*services.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *registry) remove(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *registry) closeAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*services.Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
