package session

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"vendor-notices/internal/ports/auth"
)

// MemoryStore es el SessionStore en memoria (dev y tests).
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]auth.Identity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]auth.Identity)}
}

func (s *MemoryStore) Put(id auth.Identity) string {
	sid := uuid.NewString()
	s.mu.Lock()
	s.byID[sid] = id
	s.mu.Unlock()
	return sid
}

func (s *MemoryStore) Lookup(ctx context.Context, sessionID string) (auth.Identity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byID[strings.TrimSpace(sessionID)]
	return id, ok, nil
}
