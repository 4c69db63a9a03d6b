package evidence

import (
	"context"
	"sort"
	"sync"

	id "masterfile/pkg/domain"
	"masterfile/pkg/platform/sentinel"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[id.EvidenceID]*Evidence
	byEntity map[id.EntityID][]id.EvidenceID
}

// NewMemoryStore constructs an empty in-memory evidence store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[id.EvidenceID]*Evidence),
		byEntity: make(map[id.EntityID][]id.EvidenceID),
	}
}

func (s *MemoryStore) Insert(_ context.Context, ev *Evidence) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[ev.ID]; exists {
		return sentinel.ErrConflict
	}
	s.byID[ev.ID] = ev.Clone()
	s.byEntity[ev.EntityID] = append(s.byEntity[ev.EntityID], ev.ID)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, evidenceID id.EvidenceID) (*Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.byID[evidenceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return ev.Clone(), nil
}

func (s *MemoryStore) ListByEntity(_ context.Context, entityID id.EntityID) ([]*Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byEntity[entityID]
	out := make([]*Evidence, 0, len(ids))
	for _, evidenceID := range ids {
		out = append(out, s.byID[evidenceID].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
