package session

import (
	"errors"
	"sync"

	"github.com/mamadbah2/barnmonitor/internal/domain/models"
)

// ErrIncompleteSession rejects a session missing either its token or its farmer identity.
var ErrIncompleteSession = errors.New("session requires both a token and a user")

// Store holds the single authenticated session of the process.
//
// Get returns nil without error when nobody is logged in. Set replaces token and profile
// together. Clear is idempotent.
type Store interface {
	Get() (*models.Session, error)
	Set(s models.Session) error
	Clear() error
}

// MemoryStore keeps the session in process memory only.
type MemoryStore struct {
	mu      sync.RWMutex
	current *models.Session
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get() (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.current), nil
}

func (m *MemoryStore) Set(s models.Session) error {
	if err := checkComplete(s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = clone(&s)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return nil
}

func checkComplete(s models.Session) error {
	if s.Token == "" || s.User.ID == 0 {
		return ErrIncompleteSession
	}
	return nil
}

func clone(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Expiry != nil {
		expiry := *s.Expiry
		out.Expiry = &expiry
	}
	return &out
}

// TokenOf returns a function reading the current bearer token from store, "" when logged out.
func TokenOf(store Store) func() string {
	return func() string {
		current, err := store.Get()
		if err != nil || current == nil {
			return ""
		}
		return current.Token
	}
}
