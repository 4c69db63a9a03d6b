package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "masterfile/pkg/domain"
	txcontext "masterfile/pkg/platform/tx"
)

// PostgresSchema creates the audit outbox and the materialized event table.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS audit_outbox (
	id           UUID PRIMARY KEY,
	entity_id    UUID NOT NULL,
	payload      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	published_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS audit_outbox_unpublished_idx
	ON audit_outbox (created_at) WHERE published_at IS NULL;

CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	entity_id  UUID NOT NULL,
	field_no   INT NOT NULL,
	action     TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS audit_events_entity_idx
	ON audit_events (entity_id, created_at);
`

// PostgresStore implements Store with the transactional outbox pattern.
// Append writes the outbox entry and the queryable event row in the caller's
// transaction; the relay ships outbox entries to Kafka afterwards.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	exec := txcontext.ExecutorFrom(ctx, s.db)
	eventID := uuid.New()

	_, err = exec.ExecContext(ctx, `
		INSERT INTO audit_events (id, entity_id, field_no, action, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		eventID, event.EntityID.String(), int(event.FieldNo), string(event.Action),
		payload, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO audit_outbox (id, entity_id, payload, created_at)
		VALUES ($1, $2, $3, $4)`,
		uuid.New(), event.EntityID.String(), payload, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByEntity(ctx context.Context, entityID id.EntityID) ([]Event, error) {
	exec := txcontext.ExecutorFrom(ctx, s.db)

	rows, err := exec.QueryContext(ctx, `
		SELECT payload FROM audit_events
		WHERE entity_id = $1 ORDER BY created_at, id`,
		entityID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("decode audit event: %w", err)
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}

// OutboxEntry is one pending Kafka publication.
type OutboxEntry struct {
	ID       uuid.UUID
	EntityID string
	Payload  json.RawMessage
}

// FetchUnpublished returns up to limit pending outbox entries, oldest first.
func (s *PostgresStore) FetchUnpublished(ctx context.Context, limit int) ([]OutboxEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entity_id, payload FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox: %w", err)
	}
	defer rows.Close()

	var out []OutboxEntry
	for rows.Next() {
		var entry OutboxEntry
		if err := rows.Scan(&entry.ID, &entry.EntityID, (*[]byte)(&entry.Payload)); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// MarkPublished stamps outbox entries as shipped.
func (s *PostgresStore) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	strIDs := make([]string, len(ids))
	for i, v := range ids {
		strIDs[i] = v.String()
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE audit_outbox SET published_at = now() WHERE id = ANY($1)`,
		pq.Array(strIDs),
	)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
