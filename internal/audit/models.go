// Package audit records every field-level write decision. Entries are
// written to a transactional outbox in the same transaction as the field
// write, then relayed to Kafka; the materialized table serves reads.
package audit

import (
	"context"
	"time"

	"masterfile/internal/fieldreg"
	"masterfile/internal/record"
	id "masterfile/pkg/domain"
)

// Action names the resolution outcome an event records.
type Action string

const (
	ActionApplied        Action = "applied"
	ActionRejected       Action = "rejected"
	ActionManualOverride Action = "manual_override"
	ActionRowCreated     Action = "row_created"
)

// Event is one immutable entry in the field-level audit trail. Old fields
// are nil/empty when the write landed on a previously empty field.
type Event struct {
	EntityID  id.EntityID      `json:"entity_id"`
	FieldNo   fieldreg.FieldNo `json:"field_no"`
	Action    Action           `json:"action"`
	OldValue  *record.Value    `json:"old_value,omitempty"`
	NewValue  *record.Value    `json:"new_value,omitempty"`
	OldSource id.Source        `json:"old_source,omitempty"`
	NewSource id.Source        `json:"new_source"`
	Actor     string           `json:"actor"`
	Reason    string           `json:"reason,omitempty"`
	RequestID string           `json:"request_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Store persists audit events.
//
// Append joins a transaction carried in context so the event commits with
// the field write it describes.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByEntity(ctx context.Context, entityID id.EntityID) ([]Event, error)
}
