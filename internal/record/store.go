package record

import (
	"context"

	"masterfile/internal/fieldreg"
	id "masterfile/pkg/domain"
)

// Store persists canonical records. Implementations are interface-driven so
// the reconcile service stays testable against the in-memory store while
// production runs on PostgreSQL.
//
// Infrastructure facts surface as pkg/platform/sentinel errors:
//   - ErrConflict from UpdateProfileColumn when the version check fails
//     (a concurrent writer won; re-read and re-decide)
//   - ErrNotFound from GetRow for an unknown row
//   - ErrInvalidState when a write would desynchronize columns and meta
type Store interface {
	// GetProfile returns the profile, or an empty version-zero profile when
	// the entity has never been written. Profiles are created lazily by the
	// first applied candidate.
	GetProfile(ctx context.Context, entityID id.EntityID) (*Profile, error)

	// UpdateProfileColumn writes one column value together with its
	// provenance entry, guarded by a compare-and-set on the profile version.
	UpdateProfileColumn(ctx context.Context, entityID id.EntityID, col fieldreg.Column, value Value, meta Provenance, expectedVersion int64) error

	// InsertRow persists a complete repeating row. The row must already be
	// consistent (every column paired with meta).
	InsertRow(ctx context.Context, row *Row) error

	// GetRow returns one repeating row.
	GetRow(ctx context.Context, entityID id.EntityID, rowID id.RowID) (*Row, error)

	// ListRows returns all rows of one target record for the entity.
	ListRows(ctx context.Context, entityID id.EntityID, target fieldreg.TargetRecord) ([]*Row, error)
}
