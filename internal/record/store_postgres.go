package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"masterfile/internal/fieldreg"
	id "masterfile/pkg/domain"
	"masterfile/pkg/platform/sentinel"
	txcontext "masterfile/pkg/platform/tx"
)

// PostgresSchema creates the canonical record tables. Applied by deployment
// tooling and by the integration test containers.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS entity_profiles (
	entity_id UUID PRIMARY KEY,
	columns   JSONB NOT NULL DEFAULT '{}'::jsonb,
	meta      JSONB NOT NULL DEFAULT '{}'::jsonb,
	version   BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS entity_rows (
	row_id     UUID PRIMARY KEY,
	entity_id  UUID NOT NULL,
	target     TEXT NOT NULL,
	columns    JSONB NOT NULL,
	meta       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS entity_rows_entity_target_idx
	ON entity_rows (entity_id, target);
`

// PostgresStore persists canonical records in PostgreSQL. Writes join the
// transaction carried in context (pkg/platform/tx) so value, meta, and the
// audit outbox entry commit or roll back together.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore builds a PostgreSQL-backed record store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetProfile(ctx context.Context, entityID id.EntityID) (*Profile, error) {
	exec := txcontext.ExecutorFrom(ctx, s.db)

	query := `SELECT columns, meta, version FROM entity_profiles WHERE entity_id = $1`
	if _, inTx := txcontext.From(ctx); inTx {
		// Inside the apply transaction the profile row is locked so the
		// version we decide against cannot move underneath us.
		query += ` FOR UPDATE`
	}

	var (
		columnsRaw []byte
		metaRaw    []byte
		version    int64
	)
	err := exec.QueryRowContext(ctx, query, entityID.String()).Scan(&columnsRaw, &metaRaw, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return NewProfile(entityID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	profile := NewProfile(entityID)
	profile.Version = version
	if err := json.Unmarshal(columnsRaw, &profile.Columns); err != nil {
		return nil, fmt.Errorf("decode profile columns: %w", err)
	}
	if err := json.Unmarshal(metaRaw, &profile.Meta); err != nil {
		return nil, fmt.Errorf("decode profile meta: %w", err)
	}
	if !profile.Consistent() {
		return nil, sentinel.ErrInvalidState
	}
	return profile, nil
}

func (s *PostgresStore) UpdateProfileColumn(ctx context.Context, entityID id.EntityID, col fieldreg.Column, value Value, meta Provenance, expectedVersion int64) error {
	exec := txcontext.ExecutorFrom(ctx, s.db)

	valueRaw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	metaRaw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}

	if expectedVersion == 0 {
		// First write for this entity creates the profile row. A concurrent
		// first writer loses the insert race and surfaces as a conflict so
		// the service re-evaluates against the winner's state.
		result, err := exec.ExecContext(ctx, `
			INSERT INTO entity_profiles (entity_id, columns, meta, version)
			VALUES ($1, jsonb_build_object($2::text, $3::jsonb), jsonb_build_object($2::text, $4::jsonb), 1)
			ON CONFLICT (entity_id) DO NOTHING`,
			entityID.String(), string(col), valueRaw, metaRaw,
		)
		if err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		if inserted == 0 {
			return sentinel.ErrConflict
		}
		return nil
	}

	result, err := exec.ExecContext(ctx, `
		UPDATE entity_profiles
		SET columns = jsonb_set(columns, ARRAY[$2::text], $3::jsonb),
		    meta    = jsonb_set(meta, ARRAY[$2::text], $4::jsonb),
		    version = version + 1
		WHERE entity_id = $1 AND version = $5`,
		entityID.String(), string(col), valueRaw, metaRaw, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update profile column: %w", err)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile column: %w", err)
	}
	if updated == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) InsertRow(ctx context.Context, row *Row) error {
	if !row.Consistent() {
		return sentinel.ErrInvalidState
	}
	exec := txcontext.ExecutorFrom(ctx, s.db)

	columnsRaw, err := json.Marshal(row.Columns)
	if err != nil {
		return fmt.Errorf("encode row columns: %w", err)
	}
	metaRaw, err := json.Marshal(row.Meta)
	if err != nil {
		return fmt.Errorf("encode row meta: %w", err)
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO entity_rows (row_id, entity_id, target, columns, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		row.RowID.String(), row.EntityID.String(), string(row.Target), columnsRaw, metaRaw, row.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert row: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRow(ctx context.Context, entityID id.EntityID, rowID id.RowID) (*Row, error) {
	exec := txcontext.ExecutorFrom(ctx, s.db)

	row := &Row{RowID: rowID, EntityID: entityID}
	var (
		target     string
		columnsRaw []byte
		metaRaw    []byte
	)
	err := exec.QueryRowContext(ctx, `
		SELECT target, columns, meta, created_at
		FROM entity_rows WHERE row_id = $1 AND entity_id = $2`,
		rowID.String(), entityID.String(),
	).Scan(&target, &columnsRaw, &metaRaw, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get row: %w", err)
	}

	row.Target = fieldreg.TargetRecord(target)
	if err := json.Unmarshal(columnsRaw, &row.Columns); err != nil {
		return nil, fmt.Errorf("decode row columns: %w", err)
	}
	if err := json.Unmarshal(metaRaw, &row.Meta); err != nil {
		return nil, fmt.Errorf("decode row meta: %w", err)
	}
	return row, nil
}

func (s *PostgresStore) ListRows(ctx context.Context, entityID id.EntityID, target fieldreg.TargetRecord) ([]*Row, error) {
	exec := txcontext.ExecutorFrom(ctx, s.db)

	rows, err := exec.QueryContext(ctx, `
		SELECT row_id, columns, meta, created_at
		FROM entity_rows WHERE entity_id = $1 AND target = $2
		ORDER BY created_at`,
		entityID.String(), string(target),
	)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	defer rows.Close()

	var out []*Row
	for rows.Next() {
		row := &Row{EntityID: entityID, Target: target}
		var (
			rowID      string
			columnsRaw []byte
			metaRaw    []byte
		)
		if err := rows.Scan(&rowID, &columnsRaw, &metaRaw, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		parsed, err := id.ParseRowID(rowID)
		if err != nil {
			return nil, fmt.Errorf("decode row id: %w", err)
		}
		row.RowID = parsed
		if err := json.Unmarshal(columnsRaw, &row.Columns); err != nil {
			return nil, fmt.Errorf("decode row columns: %w", err)
		}
		if err := json.Unmarshal(metaRaw, &row.Meta); err != nil {
			return nil, fmt.Errorf("decode row meta: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
