package memstore

// Package memstore provides an in-process session store. It matches the
// original single-process deployment: sessions vanish on restart, which is
// acceptable because the verification token carries its own expiry as an
// independent backstop.

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/guildgate/guildgate/internal/domain/verify"
	"github.com/guildgate/guildgate/internal/ports"
)

// SessionStore is an in-memory verification session store.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]verify.Session
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]verify.Session),
	}
}

// Save stores a session, replacing any existing record with the same ID.
func (s *SessionStore) Save(_ context.Context, sess verify.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

// Get returns the session for id. Expired sessions are removed and
// reported as not found.
func (s *SessionStore) Get(_ context.Context, id string) (verify.Session, error) {
	if id == "" {
		return verify.Session{}, ports.ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return verify.Session{}, ports.ErrSessionNotFound
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return verify.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports the number of stored sessions, expired or not. Test helper.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
