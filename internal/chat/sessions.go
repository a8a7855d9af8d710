package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown sessions or sessions owned by another user
var ErrSessionNotFound = errors.New("chat session not found")

// SessionStore keeps conversations in memory
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Conversation
}

// NewSessionStore creates an empty store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Conversation)}
}

// Create starts a new conversation for userID
func (s *SessionStore) Create(userID string) *Conversation {
	now := time.Now()
	conv := &Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[conv.ID] = conv
	s.mu.Unlock()
	return conv
}

// Get returns the user's conversation
func (s *SessionStore) Get(userID, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.sessions[id]
	if !ok || conv.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return conv, nil
}

// Reset clears the user's conversation history
// Waits for a message in flight on the same conversation to finish.
func (s *SessionStore) Reset(userID, id string) error {
	conv, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	conv.Reset()
	return nil
}

// Delete removes the user's conversation
func (s *SessionStore) Delete(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.sessions[id]
	if !ok || conv.UserID != userID {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
