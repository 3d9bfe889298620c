// Package session tracks the live sessions of one process. Each websocket
// connection owns exactly one session; the store lets operational surfaces
// look them up by id.
package session

import (
	"sync"

	"github.com/shaswatnaman/Nirnay-112/internal/engine"
)

// Factory builds a session for a new id. It carries the process-wide wiring
// (classifier, event sink, clock) so the store stays free of it.
type Factory func(sessionID string) *engine.Session

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*engine.Session
	factory  Factory
}

func NewStore(factory Factory) *Store {
	return &Store{
		sessions: make(map[string]*engine.Session),
		factory:  factory,
	}
}

func (s *Store) Get(sessionID string) (*engine.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

// GetOrCreate returns the existing session or builds one through the
// factory. Concurrent callers for the same id get the same session.
func (s *Store) GetOrCreate(sessionID string) *engine.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		return session
	}
	session := s.factory(sessionID)
	s.sessions[sessionID] = session
	return session
}

func (s *Store) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
