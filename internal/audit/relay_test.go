package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type stubOutbox struct {
	pending   []OutboxEntry
	published []uuid.UUID
}

func (s *stubOutbox) FetchUnpublished(_ context.Context, limit int) ([]OutboxEntry, error) {
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *stubOutbox) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	s.published = append(s.published, ids...)
	remaining := s.pending[:0]
	for _, entry := range s.pending {
		keep := true
		for _, published := range ids {
			if entry.ID == published {
				keep = false
				break
			}
		}
		if keep {
			remaining = append(remaining, entry)
		}
	}
	s.pending = remaining
	return nil
}

type stubProducer struct {
	records []*kgo.Record
	err     error
}

func (p *stubProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	if p.err != nil {
		return kgo.ProduceResults{{Err: p.err}}
	}
	p.records = append(p.records, rs...)
	return kgo.ProduceResults{}
}

func entry(entityID string) OutboxEntry {
	return OutboxEntry{
		ID:       uuid.New(),
		EntityID: entityID,
		Payload:  json.RawMessage(`{"action":"applied","field_no":1}`),
	}
}

func TestRelay_Flush(t *testing.T) {
	outbox := &stubOutbox{pending: []OutboxEntry{entry("e1"), entry("e2")}}
	producer := &stubProducer{}
	relay, err := NewRelay(outbox, producer, "masterfile.audit")
	require.NoError(t, err)

	require.NoError(t, relay.Flush(context.Background()))

	require.Len(t, producer.records, 2)
	assert.Equal(t, "masterfile.audit", producer.records[0].Topic)
	assert.Equal(t, []byte("e1"), producer.records[0].Key, "records keyed by entity for per-entity ordering")
	assert.Len(t, outbox.published, 2)
	assert.Empty(t, outbox.pending)
}

func TestRelay_Flush_NothingPending(t *testing.T) {
	producer := &stubProducer{}
	relay, err := NewRelay(&stubOutbox{}, producer, "masterfile.audit")
	require.NoError(t, err)

	require.NoError(t, relay.Flush(context.Background()))
	assert.Empty(t, producer.records)
}

func TestRelay_Flush_ProduceFailureKeepsBacklog(t *testing.T) {
	outbox := &stubOutbox{pending: []OutboxEntry{entry("e1")}}
	producer := &stubProducer{err: errors.New("broker down")}
	relay, err := NewRelay(outbox, producer, "masterfile.audit")
	require.NoError(t, err)

	require.Error(t, relay.Flush(context.Background()))
	assert.Empty(t, outbox.published, "entries stay pending until the broker acknowledges")
	assert.Len(t, outbox.pending, 1)
}

func TestRelay_Flush_RespectsBatchSize(t *testing.T) {
	outbox := &stubOutbox{pending: []OutboxEntry{entry("e1"), entry("e2"), entry("e3")}}
	producer := &stubProducer{}
	relay, err := NewRelay(outbox, producer, "masterfile.audit", WithRelayBatchSize(2))
	require.NoError(t, err)

	require.NoError(t, relay.Flush(context.Background()))
	assert.Len(t, producer.records, 2)
	assert.Len(t, outbox.pending, 1)
}

func TestNewRelay_Validation(t *testing.T) {
	_, err := NewRelay(nil, &stubProducer{}, "t")
	require.Error(t, err)
	_, err = NewRelay(&stubOutbox{}, nil, "t")
	require.Error(t, err)
	_, err = NewRelay(&stubOutbox{}, &stubProducer{}, "")
	require.Error(t, err)
}
