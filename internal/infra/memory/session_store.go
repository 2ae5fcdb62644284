package memory

import (
	"context"
	"sync"

	"acadtutor/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.QuizSession
	byUser   map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.QuizSession),
		byUser:   make(map[string]string),
	}
}

// Put stores the session, replacing any other active session of the same user.
func (s *SessionStore) Put(_ context.Context, session domain.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.byUser[session.UserID]; ok && prev != session.ID {
		delete(s.sessions, prev)
	}
	s.sessions[session.ID] = cloneSession(session)
	s.byUser[session.UserID] = session.ID
	return nil
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

// Take removes the session and returns it. Only one caller can take a given session.
func (s *SessionStore) Take(_ context.Context, sessionID string) (domain.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	if s.byUser[session.UserID] == sessionID {
		delete(s.byUser, session.UserID)
	}
	return cloneSession(session), nil
}

// cloneSession copies the answer map so callers never share it with the store.
func cloneSession(session domain.QuizSession) domain.QuizSession {
	answers := make(domain.AnswerSet, len(session.Answers))
	for id, a := range session.Answers {
		answers[id] = a
	}
	session.Answers = answers
	return session
}
