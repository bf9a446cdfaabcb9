package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abdullahkazmii/ragserver/models"
)

// SessionStore is an in-memory registry of chat sessions with an
// explicit lifecycle: created on first use, torn down on delete. It
// only records transcripts for the API surface; generation itself stays
// single-shot and never sees the history.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string][]models.ChatMessage
}

// Ensure returns sessionID if that session exists, otherwise it creates
// a fresh session and returns its id. An unknown incoming id (e.g.
// after a server restart) gets a new session rather than an error.
func (s *SessionStore) Ensure(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != "" {
		if _, ok := s.sessions[sessionID]; ok {
			return sessionID
		}
	}

	id := uuid.New().String()
	s.sessions[id] = []models.ChatMessage{}
	return id
}

// Append records one turn in the session transcript. Assistant turns
// carry the sources that backed the answer.
func (s *SessionStore) Append(sessionID, role, content string, sources []models.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = append(s.sessions[sessionID], models.ChatMessage{
		Role:      role,
		Content:   content,
		Sources:   sources,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// History returns a copy of the session transcript and whether the
// session exists.
func (s *SessionStore) History(sessionID string) ([]models.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	out := make([]models.ChatMessage, len(messages))
	copy(out, messages)
	return out, true
}

// Delete tears the session down. Returns false for unknown sessions.
func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	return true
}

// NewSessionStore creates an empty session registry.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string][]models.ChatMessage)}
}
