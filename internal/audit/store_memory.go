package audit

import (
	"context"
	"sync"

	id "masterfile/pkg/domain"
)

// MemoryStore is an in-memory audit store for tests and local development.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[id.EntityID][]Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[id.EntityID][]Event)}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.EntityID] = append(s.events[event.EntityID], event)
	return nil
}

func (s *MemoryStore) ListByEntity(_ context.Context, entityID id.EntityID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events[entityID]))
	copy(out, s.events[entityID])
	return out, nil
}
