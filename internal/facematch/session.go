package facematch

import (
	"sync"
	"time"
)

// Session holds the registration of exactly zero or one user.
// It is owned by the caller (one per browser session or CLI run) and is never persisted.
type Session struct {
	mu           sync.RWMutex
	embedding    Embedding
	registeredAt time.Time
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// Registered reports whether an embedding is stored.
func (s *Session) Registered() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embedding != nil
}

// Embedding returns a copy of the stored embedding, or nil.
func (s *Session) Embedding() Embedding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embedding.Clone()
}

// RegisteredAt returns when the current embedding was stored.
func (s *Session) RegisteredAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registeredAt
}

// Clear drops the registration.
func (s *Session) Clear() {
	s.mu.Lock()
	s.embedding = nil
	s.registeredAt = time.Time{}
	s.mu.Unlock()
}

func (s *Session) store(e Embedding) {
	s.mu.Lock()
	s.embedding = e.Clone()
	s.registeredAt = time.Now()
	s.mu.Unlock()
}
