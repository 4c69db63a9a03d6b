package evidence

import (
	"context"

	id "masterfile/pkg/domain"
)

// Store persists evidence records. The store is append-only: implementations
// expose no update or delete.
//
// Error contract: Insert returns sentinel.ErrConflict when the evidence ID
// already exists; Get returns sentinel.ErrNotFound for an unknown ID.
type Store interface {
	Insert(ctx context.Context, ev *Evidence) error
	Get(ctx context.Context, evidenceID id.EvidenceID) (*Evidence, error)

	// ListByEntity returns all evidence for an entity in capture order,
	// oldest first. Replay depends on that ordering.
	ListByEntity(ctx context.Context, entityID id.EntityID) ([]*Evidence, error)
}
