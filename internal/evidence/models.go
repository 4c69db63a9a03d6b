// Package evidence stores the raw payloads every candidate value traces back
// to. Records are append-only: a payload written once is never mutated or
// deleted, so a provenance pointer stays resolvable for the life of the
// entity.
package evidence

import (
	"encoding/json"
	"time"

	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
)

// Evidence is one immutable raw payload as received from a provider.
type Evidence struct {
	ID       id.EvidenceID
	EntityID id.EntityID

	// Provider is the source the payload came from. It selects the
	// normalizer used on ingest and on replay.
	Provider id.Source

	// SchemaVersion records which payload shape the provider spoke at
	// capture time, so replays of old evidence can be routed to the right
	// normalizer revision.
	SchemaVersion int

	Payload     json.RawMessage
	SubmittedBy string
	CreatedAt   time.Time
}

// Validate checks the record is complete enough to persist.
func (e *Evidence) Validate() error {
	if e == nil {
		return dErrors.New(dErrors.CodeValidation, "evidence is required")
	}
	if e.ID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "evidence id is required")
	}
	if e.EntityID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "entity id is required")
	}
	if !e.Provider.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown provider %q", e.Provider)
	}
	if e.SchemaVersion <= 0 {
		return dErrors.New(dErrors.CodeValidation, "schema version must be positive")
	}
	if len(e.Payload) == 0 {
		return dErrors.New(dErrors.CodeValidation, "payload is required")
	}
	if !json.Valid(e.Payload) {
		return dErrors.New(dErrors.CodeValidation, "payload is not valid JSON")
	}
	if e.CreatedAt.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "created at is required")
	}
	return nil
}

// Clone returns a deep copy so store internals never alias caller memory.
func (e *Evidence) Clone() *Evidence {
	if e == nil {
		return nil
	}
	out := *e
	out.Payload = append(json.RawMessage(nil), e.Payload...)
	return &out
}
