package domain

import (
	dErrors "masterfile/pkg/domain-errors"
)

// Source identifies where a field value came from. Sources form the public
// vocabulary of the precedence policy: every provenance entry, candidate,
// and audit event carries one.
type Source string

const (
	// SourceManualOverride is a deliberate human correction with a recorded
	// reason. Outranks every automated source.
	SourceManualOverride Source = "MANUAL_OVERRIDE"

	// SourceUserInput is data typed in by a user during normal data entry.
	SourceUserInput Source = "USER_INPUT"

	// SourcePrimaryRegistry is the primary international legal-entity
	// registry (LEI/GLEIF class).
	SourcePrimaryRegistry Source = "PRIMARY_REGISTRY"

	// SourceSecondaryRegistry is a national or local companies registry.
	SourceSecondaryRegistry Source = "SECONDARY_REGISTRY"

	// SourceDocExtraction is AI-driven extraction from uploaded documents.
	SourceDocExtraction Source = "DOC_EXTRACTION"

	// SourceSystemRefresh is a scheduled re-derivation run with no new
	// upstream data of its own.
	SourceSystemRefresh Source = "SYSTEM_REFRESH"
)

// sourceRanks defines the strict total order among sources. A candidate from
// source S may overwrite a value recorded from source S' only when
// rank(S) >= rank(S'), with the same-source refresh exception applied by the
// writer. Adding a source is one line here.
var sourceRanks = map[Source]int{
	SourceManualOverride:    100,
	SourceUserInput:         80,
	SourcePrimaryRegistry:   60,
	SourceSecondaryRegistry: 40,
	SourceDocExtraction:     20,
	SourceSystemRefresh:     10,
}

// ParseSource validates and returns a Source.
func ParseSource(s string) (Source, error) {
	src := Source(s)
	if _, ok := sourceRanks[src]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown source: "+s)
	}
	return src, nil
}

// Rank returns the precedence rank of the source. Unknown sources rank below
// every defined source so they can never overwrite anything.
func (s Source) Rank() int {
	return sourceRanks[s]
}

// IsValid reports whether the source is part of the defined vocabulary.
func (s Source) IsValid() bool {
	_, ok := sourceRanks[s]
	return ok
}

// Outranks reports whether s may overwrite a value recorded from other under
// the rank rule alone. The same-source refresh exception and the empty-field
// rule live in the writer, not here.
func (s Source) Outranks(other Source) bool {
	return s.Rank() >= other.Rank()
}

func (s Source) String() string { return string(s) }

// Sources returns the full defined vocabulary, highest rank first.
func Sources() []Source {
	return []Source{
		SourceManualOverride,
		SourceUserInput,
		SourcePrimaryRegistry,
		SourceSecondaryRegistry,
		SourceDocExtraction,
		SourceSystemRefresh,
	}
}
