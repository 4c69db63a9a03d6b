package record

import (
	"context"
	"sync"

	"masterfile/internal/fieldreg"
	id "masterfile/pkg/domain"
	"masterfile/pkg/platform/sentinel"
)

// MemoryStore keeps canonical records in process memory. It implements the
// same version CAS as the PostgreSQL store so the reconcile service behaves
// identically in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.EntityID]*Profile
	rows     map[id.EntityID]map[id.RowID]*Row
}

// NewMemoryStore builds an empty in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[id.EntityID]*Profile),
		rows:     make(map[id.EntityID]map[id.RowID]*Row),
	}
}

func (s *MemoryStore) GetProfile(_ context.Context, entityID id.EntityID) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[entityID]; ok {
		return p.Clone(), nil
	}
	return NewProfile(entityID), nil
}

func (s *MemoryStore) UpdateProfileColumn(_ context.Context, entityID id.EntityID, col fieldreg.Column, value Value, meta Provenance, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.profiles[entityID]
	if !ok {
		if expectedVersion != 0 {
			return sentinel.ErrConflict
		}
		current = NewProfile(entityID)
		s.profiles[entityID] = current
	}
	if current.Version != expectedVersion {
		return sentinel.ErrConflict
	}

	current.Columns[col] = value
	current.Meta[col] = meta
	current.Version++
	return nil
}

func (s *MemoryStore) InsertRow(_ context.Context, row *Row) error {
	if !row.Consistent() {
		return sentinel.ErrInvalidState
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byRow, ok := s.rows[row.EntityID]
	if !ok {
		byRow = make(map[id.RowID]*Row)
		s.rows[row.EntityID] = byRow
	}
	if _, exists := byRow[row.RowID]; exists {
		return sentinel.ErrConflict
	}
	byRow[row.RowID] = row.Clone()
	return nil
}

func (s *MemoryStore) GetRow(_ context.Context, entityID id.EntityID, rowID id.RowID) (*Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if byRow, ok := s.rows[entityID]; ok {
		if row, ok := byRow[rowID]; ok {
			return row.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) ListRows(_ context.Context, entityID id.EntityID, target fieldreg.TargetRecord) ([]*Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Row
	for _, row := range s.rows[entityID] {
		if row.Target == target {
			out = append(out, row.Clone())
		}
	}
	return out, nil
}
