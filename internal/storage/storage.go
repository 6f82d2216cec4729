package storage

import (
	"sync"
	"time"

	"github.com/learnmore-edu/extractor/internal/review"
)

// ParseSession pairs a review session with its registry metadata
type ParseSession struct {
	ID        string
	Filename  string
	CreatedAt time.Time
	Session   *review.Session
}

// SessionStore is the in-memory registry of active parse sessions
type SessionStore struct {
	sessions map[string]*ParseSession
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*ParseSession),
	}
}

func (s *SessionStore) Get(sessionID string) (*ParseSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Set(sessionID string, session *ParseSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

func (s *SessionStore) GetAll() map[string]*ParseSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*ParseSession, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v
	}
	return result
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
