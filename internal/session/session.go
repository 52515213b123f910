package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lifeline/backend/internal/models"
)

// Identity is the authenticated state bound to a session token.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Role     models.UserRole
	FullName string
}

type entry struct {
	identity  Identity
	expiresAt time.Time
}

// Store maps opaque bearer tokens to identities. Expiry is absolute,
// measured from creation; expired and absent tokens are indistinguishable
// to callers.
type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

func (s *Store) Create(identity Identity) string {
	token := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = entry{
		identity:  identity,
		expiresAt: time.Now().Add(s.ttl),
	}
	return token
}

func (s *Store) Resolve(token string) (Identity, bool) {
	s.mu.RLock()
	e, ok := s.entries[token]
	s.mu.RUnlock()

	if !ok {
		return Identity{}, false
	}
	if time.Now().After(e.expiresAt) {
		s.Destroy(token)
		return Identity{}, false
	}
	return e.identity, true
}

func (s *Store) Destroy(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartCleanup sweeps expired entries in the background so tokens that are
// never resolved again do not accumulate.
func (s *Store) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			s.sweep()
		}
	}()
}

func (s *Store) sweep() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for token, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, token)
		}
	}
}
