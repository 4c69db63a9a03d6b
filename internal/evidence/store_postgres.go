package evidence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "masterfile/pkg/domain"
	"masterfile/pkg/platform/sentinel"
	txcontext "masterfile/pkg/platform/tx"
)

// PostgresSchema creates the append-only evidence table. No UPDATE or DELETE
// is ever issued against it.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS evidence_records (
	evidence_id    UUID PRIMARY KEY,
	entity_id      UUID NOT NULL,
	provider       TEXT NOT NULL,
	schema_version INT NOT NULL,
	payload        JSONB NOT NULL,
	submitted_by   TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS evidence_records_entity_idx
	ON evidence_records (entity_id, created_at);
`

// PostgresStore persists evidence in PostgreSQL. Inserts join a transaction
// carried in context so evidence and the field writes derived from it commit
// together.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore builds a PostgreSQL-backed evidence store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, ev *Evidence) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	exec := txcontext.ExecutorFrom(ctx, s.db)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO evidence_records
			(evidence_id, entity_id, provider, schema_version, payload, submitted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ev.ID.String(), ev.EntityID.String(), string(ev.Provider),
		ev.SchemaVersion, []byte(ev.Payload), ev.SubmittedBy, ev.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert evidence: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, evidenceID id.EvidenceID) (*Evidence, error) {
	exec := txcontext.ExecutorFrom(ctx, s.db)

	row := exec.QueryRowContext(ctx, `
		SELECT entity_id, provider, schema_version, payload, submitted_by, created_at
		FROM evidence_records WHERE evidence_id = $1`,
		evidenceID.String(),
	)

	ev := Evidence{ID: evidenceID}
	var entityID, provider string
	err := row.Scan(&entityID, &provider, &ev.SchemaVersion, (*[]byte)(&ev.Payload), &ev.SubmittedBy, &ev.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get evidence: %w", err)
	}
	if ev.EntityID, err = id.ParseEntityID(entityID); err != nil {
		return nil, fmt.Errorf("decode evidence entity id: %w", err)
	}
	ev.Provider = id.Source(provider)
	return &ev, nil
}

func (s *PostgresStore) ListByEntity(ctx context.Context, entityID id.EntityID) ([]*Evidence, error) {
	exec := txcontext.ExecutorFrom(ctx, s.db)

	rows, err := exec.QueryContext(ctx, `
		SELECT evidence_id, provider, schema_version, payload, submitted_by, created_at
		FROM evidence_records WHERE entity_id = $1
		ORDER BY created_at, evidence_id`,
		entityID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	defer rows.Close()

	var out []*Evidence
	for rows.Next() {
		ev := Evidence{EntityID: entityID}
		var evidenceID, provider string
		if err := rows.Scan(&evidenceID, &provider, &ev.SchemaVersion, (*[]byte)(&ev.Payload), &ev.SubmittedBy, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		if ev.ID, err = id.ParseEvidenceID(evidenceID); err != nil {
			return nil, fmt.Errorf("decode evidence id: %w", err)
		}
		ev.Provider = id.Source(provider)
		out = append(out, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evidence: %w", err)
	}
	return out, nil
}
