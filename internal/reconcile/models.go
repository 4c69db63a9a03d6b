// Package reconcile is the write path for the canonical record. Every
// mutation of an entity's fields funnels through this package's precedence
// check; nothing else writes values, provenance, or audit entries.
package reconcile

import (
	"masterfile/internal/fieldreg"
	"masterfile/internal/record"
	id "masterfile/pkg/domain"
)

// Action is the outcome of evaluating one candidate against the current
// record state.
type Action string

const (
	// ActionApply means the candidate wins and the value is (or would be)
	// written.
	ActionApply Action = "APPLY"

	// ActionReject means the incumbent source outranks the candidate. A
	// rejection is a result, not an error.
	ActionReject Action = "REJECT"

	// ActionNoChange means the candidate is identical to what the record
	// already holds from the same source.
	ActionNoChange Action = "NO_CHANGE"
)

// Evaluation is the decision for one candidate. CurrentValue and
// CurrentSource describe the incumbent at decision time; both are empty when
// the field was unpopulated.
type Evaluation struct {
	FieldNo       fieldreg.FieldNo
	Action        Action
	Reason        string
	CurrentValue  *record.Value
	CurrentSource id.Source
}

// Applied reports whether this evaluation resulted (or would result) in a
// write.
func (e Evaluation) Applied() bool {
	return e.Action == ActionApply
}
