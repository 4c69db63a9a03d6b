// Package normalize turns stored evidence payloads into field candidates.
// Every normalizer is a pure, deterministic function: the same payload and
// evidence id always yield the same candidate list, which is what makes
// replay from the evidence store safe. Normalizers never touch the canonical
// record or any store.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"

	"masterfile/internal/fieldreg"
	"masterfile/internal/record"
	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
)

// Candidate is a proposed value for one field, derived from one evidence
// record. Candidates are ephemeral: they exist between normalization and the
// writer's decision and are never persisted directly.
type Candidate struct {
	FieldNo    fieldreg.FieldNo
	Value      record.Value
	Source     id.Source
	EvidenceID id.EvidenceID
	Confidence id.Confidence
}

// Func is one provider's normalizer.
type Func func(payload json.RawMessage, evidenceID id.EvidenceID) ([]Candidate, error)

// ErrUnsupportedProvider is wrapped into lookups for providers with no
// registered normalizer.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// IsUnsupportedProvider reports whether err stems from a missing normalizer.
func IsUnsupportedProvider(err error) bool {
	return errors.Is(err, ErrUnsupportedProvider)
}

// Registry maps sources to their normalizers. Construct once at wiring time;
// read-only afterwards, safe for concurrent use.
type Registry struct {
	funcs map[id.Source]Func
}

// NewRegistry returns a registry with the built-in normalizers registered.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[id.Source]Func)}
	r.Register(id.SourcePrimaryRegistry, NormalizeGLEIF)
	r.Register(id.SourceSecondaryRegistry, NormalizeCompaniesHouse)
	r.Register(id.SourceDocExtraction, NormalizeDocExtraction)
	return r
}

// Register adds or replaces the normalizer for a source.
func (r *Registry) Register(source id.Source, fn Func) {
	r.funcs[source] = fn
}

// Normalize runs the source's normalizer over the payload. An unregistered
// source is a typed failure, never a silent skip.
func (r *Registry) Normalize(source id.Source, payload json.RawMessage, evidenceID id.EvidenceID) ([]Candidate, error) {
	fn, ok := r.funcs[source]
	if !ok {
		return nil, dErrors.Wrap(ErrUnsupportedProvider, dErrors.CodeValidation,
			fmt.Sprintf("no normalizer registered for provider %s", source))
	}
	return fn(payload, evidenceID)
}

// Supports reports whether the source has a registered normalizer.
func (r *Registry) Supports(source id.Source) bool {
	_, ok := r.funcs[source]
	return ok
}

// candidateBuilder accumulates candidates while dropping absent values, so
// normalizers read as a flat field mapping.
type candidateBuilder struct {
	source     id.Source
	evidenceID id.EvidenceID
	confidence id.Confidence
	out        []Candidate
	err        error
}

func newBuilder(source id.Source, evidenceID id.EvidenceID, confidence id.Confidence) *candidateBuilder {
	return &candidateBuilder{source: source, evidenceID: evidenceID, confidence: confidence}
}

// addString emits a string-typed candidate when s is non-empty.
func (b *candidateBuilder) addString(fieldNo fieldreg.FieldNo, s string) {
	if s == "" {
		return
	}
	b.add(fieldNo, record.StringValue(s))
}

// addEnum emits an enum-typed candidate when s is non-empty.
func (b *candidateBuilder) addEnum(fieldNo fieldreg.FieldNo, s string) {
	if s == "" {
		return
	}
	b.add(fieldNo, record.EnumValue(s))
}

// addDate parses s as YYYY-MM-DD and emits a date candidate. A malformed
// date is recorded as the builder error: bad provider data must surface, not
// vanish.
func (b *candidateBuilder) addDate(fieldNo fieldreg.FieldNo, s string) {
	if s == "" || b.err != nil {
		return
	}
	v, err := record.ParseValue(fieldreg.TypeDate, s)
	if err != nil {
		b.err = dErrors.Wrap(err, dErrors.CodeValidation,
			fmt.Sprintf("field %d: malformed date %q in provider payload", fieldNo, s))
		return
	}
	b.add(fieldNo, v)
}

func (b *candidateBuilder) add(fieldNo fieldreg.FieldNo, v record.Value) {
	if b.err != nil {
		return
	}
	def, err := fieldreg.Get(fieldNo)
	if err != nil {
		b.err = err
		return
	}
	if def.DataType != v.Kind {
		b.err = dErrors.Newf(dErrors.CodeValidation,
			"field %d expects %s, normalizer produced %s", fieldNo, def.DataType, v.Kind)
		return
	}
	b.out = append(b.out, Candidate{
		FieldNo:    fieldNo,
		Value:      v,
		Source:     b.source,
		EvidenceID: b.evidenceID,
		Confidence: b.confidence,
	})
}

func (b *candidateBuilder) build() ([]Candidate, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.out, nil
}
