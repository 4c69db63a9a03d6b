// Package domain holds the shared domain primitives: typed identifiers, the
// source vocabulary, and the confidence score. Types here are pure values
// with parse-time validation and no I/O.
package domain

import (
	"github.com/google/uuid"

	dErrors "masterfile/pkg/domain-errors"
)

// Typed IDs prevent cross-type assignment at compile time. An EntityID can
// never be passed where an EvidenceID is expected.
type (
	// EntityID identifies one legal entity master record.
	EntityID uuid.UUID

	// EvidenceID identifies one immutable evidence record.
	EvidenceID uuid.UUID

	// RowID identifies one repeating child row (e.g. a stakeholder).
	RowID uuid.UUID
)

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs.
func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be the nil UUID")
	}
	return u, nil
}

// ParseEntityID validates and returns an EntityID.
func ParseEntityID(s string) (EntityID, error) {
	u, err := parseUUID("entity id", s)
	return EntityID(u), err
}

// ParseEvidenceID validates and returns an EvidenceID.
func ParseEvidenceID(s string) (EvidenceID, error) {
	u, err := parseUUID("evidence id", s)
	return EvidenceID(u), err
}

// ParseRowID validates and returns a RowID.
func ParseRowID(s string) (RowID, error) {
	u, err := parseUUID("row id", s)
	return RowID(u), err
}

// NewEntityID returns a fresh random EntityID.
func NewEntityID() EntityID { return EntityID(uuid.New()) }

// NewEvidenceID returns a fresh random EvidenceID.
func NewEvidenceID() EvidenceID { return EvidenceID(uuid.New()) }

// NewRowID returns a fresh random RowID.
func NewRowID() RowID { return RowID(uuid.New()) }

func (e EntityID) String() string   { return uuid.UUID(e).String() }
func (e EvidenceID) String() string { return uuid.UUID(e).String() }
func (r RowID) String() string      { return uuid.UUID(r).String() }

func (e EntityID) IsNil() bool   { return uuid.UUID(e) == uuid.Nil }
func (e EvidenceID) IsNil() bool { return uuid.UUID(e) == uuid.Nil }
func (r RowID) IsNil() bool      { return uuid.UUID(r) == uuid.Nil }

// The IDs serialize as canonical UUID strings, not as byte arrays.

func (e EntityID) MarshalText() ([]byte, error)   { return []byte(e.String()), nil }
func (e EvidenceID) MarshalText() ([]byte, error) { return []byte(e.String()), nil }
func (r RowID) MarshalText() ([]byte, error)      { return []byte(r.String()), nil }

func (e *EntityID) UnmarshalText(b []byte) error {
	parsed, err := ParseEntityID(string(b))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func (e *EvidenceID) UnmarshalText(b []byte) error {
	parsed, err := ParseEvidenceID(string(b))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func (r *RowID) UnmarshalText(b []byte) error {
	parsed, err := ParseRowID(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
