// Package session persists per-conversation chat history across turns.
// A session owns the only long-lived mutable state in the system; turns
// within one session are processed sequentially while distinct sessions may
// run concurrently.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Joelfranklin96/nutrition-copilot/components"
	"github.com/Joelfranklin96/nutrition-copilot/schema"
)

// ErrNotFound is returned when the session ID is unknown to the store.
var ErrNotFound = errors.New("session not found")

// Store persists conversation history keyed by a stable session identifier.
type Store interface {
	// Open creates a new session and returns its identifier.
	Open() string
	// Load returns the ordered history for a session.
	Load(sessionID string) ([]components.Message, error)
	// Append records one turn message for a session.
	Append(sessionID string, role components.MessageRole, content schema.Schema) error
	// Memory returns the live memory backing a session.
	Memory(sessionID string) (*components.Memory, error)
	// Close discards a session and its history.
	Close(sessionID string)
}

// MemStore is an in-process Store backed by one Memory per session.
type MemStore struct {
	sessions sync.Map
	// maxMessages caps each session history; 0 keeps everything.
	maxMessages int
}

var _ Store = (*MemStore)(nil)

func NewMemStore(maxMessages int) *MemStore {
	return &MemStore{maxMessages: maxMessages}
}

func (s *MemStore) Open() string {
	id := uuid.NewString()
	s.sessions.Store(id, components.NewMemory(s.maxMessages))
	return id
}

func (s *MemStore) Memory(sessionID string) (*components.Memory, error) {
	v, ok := s.sessions.Load(sessionID)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*components.Memory), nil
}

func (s *MemStore) Load(sessionID string) ([]components.Message, error) {
	mem, err := s.Memory(sessionID)
	if err != nil {
		return nil, err
	}
	return mem.History(), nil
}

func (s *MemStore) Append(sessionID string, role components.MessageRole, content schema.Schema) error {
	mem, err := s.Memory(sessionID)
	if err != nil {
		return err
	}
	if role == components.UserRole {
		mem.NewTurn()
	}
	mem.NewMessage(role, content)
	return nil
}

func (s *MemStore) Close(sessionID string) {
	s.sessions.Delete(sessionID)
}
