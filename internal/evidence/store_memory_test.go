package evidence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
	"masterfile/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
}

func testEvidence(entityID id.EntityID, createdAt time.Time) *Evidence {
	return &Evidence{
		ID:            id.NewEvidenceID(),
		EntityID:      entityID,
		Provider:      id.SourcePrimaryRegistry,
		SchemaVersion: 1,
		Payload:       json.RawMessage(`{"lei":"529900T8BM49AURSDO55"}`),
		SubmittedBy:   "refresh-job",
		CreatedAt:     createdAt,
	}
}

func (s *MemoryStoreSuite) TestInsertAndGet() {
	entityID := id.NewEntityID()
	ev := testEvidence(entityID, time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))

	s.Require().NoError(s.store.Insert(s.ctx, ev))

	got, err := s.store.Get(s.ctx, ev.ID)
	s.Require().NoError(err)
	s.Equal(ev, got)
}

func (s *MemoryStoreSuite) TestInsert_DuplicateIDConflicts() {
	ev := testEvidence(id.NewEntityID(), time.Now().UTC())
	s.Require().NoError(s.store.Insert(s.ctx, ev))
	s.ErrorIs(s.store.Insert(s.ctx, ev), sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestInsert_RejectsInvalidRecord() {
	ev := testEvidence(id.NewEntityID(), time.Now().UTC())
	ev.Payload = json.RawMessage(`{not json`)
	err := s.store.Insert(s.ctx, ev)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.store.Get(s.ctx, ev.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestInsert_CopiesPayload() {
	ev := testEvidence(id.NewEntityID(), time.Now().UTC())
	s.Require().NoError(s.store.Insert(s.ctx, ev))

	ev.Payload[1] = 'X'

	got, err := s.store.Get(s.ctx, ev.ID)
	s.Require().NoError(err)
	s.JSONEq(`{"lei":"529900T8BM49AURSDO55"}`, string(got.Payload))
}

func (s *MemoryStoreSuite) TestListByEntity_OldestFirst() {
	entityID := id.NewEntityID()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	newest := testEvidence(entityID, base.Add(2*time.Hour))
	oldest := testEvidence(entityID, base)
	middle := testEvidence(entityID, base.Add(time.Hour))
	for _, ev := range []*Evidence{newest, oldest, middle} {
		s.Require().NoError(s.store.Insert(s.ctx, ev))
	}
	s.Require().NoError(s.store.Insert(s.ctx, testEvidence(id.NewEntityID(), base)))

	history, err := s.store.ListByEntity(s.ctx, entityID)
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Equal(oldest.ID, history[0].ID)
	s.Equal(middle.ID, history[1].ID)
	s.Equal(newest.ID, history[2].ID)
}

func (s *MemoryStoreSuite) TestGet_UnknownIDNotFound() {
	_, err := s.store.Get(s.ctx, id.NewEvidenceID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
