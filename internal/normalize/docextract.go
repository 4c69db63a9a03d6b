package normalize

import (
	"encoding/json"

	"masterfile/internal/fieldreg"
	"masterfile/internal/record"
	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
)

// extractionPayload is the document-extraction producer's output: the
// extractor already speaks field numbers, with a per-field confidence.
type extractionPayload struct {
	DocumentType string            `json:"document_type"`
	Fields       []extractedField  `json:"fields"`
	Stakeholders []extractedPerson `json:"stakeholders"`
}

type extractedField struct {
	FieldNo    int     `json:"field_no"`
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
}

// extractedPerson mirrors one stakeholder spotted in a document. These are
// not emitted as candidates (candidates target singleton fields); callers
// create repeating rows from them through ExtractStakeholders.
type extractedPerson struct {
	Fields []extractedField `json:"fields"`
}

// NormalizeDocExtraction derives singleton-field candidates from an AI
// document-extraction payload. Each field keeps the extractor's own
// confidence. A field number the registry does not know, or one that targets
// a repeating record, fails the whole payload: extraction output addressing
// bogus fields is a producer bug, not data to be partially applied.
func NormalizeDocExtraction(payload json.RawMessage, evidenceID id.EvidenceID) ([]Candidate, error) {
	var p extractionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "malformed extraction payload")
	}

	out := make([]Candidate, 0, len(p.Fields))
	for _, f := range p.Fields {
		candidate, err := extractionCandidate(f, evidenceID)
		if err != nil {
			return nil, err
		}
		if candidate.Value.Kind == "" {
			continue // extractor found nothing for this field
		}
		out = append(out, candidate)
	}
	return out, nil
}

// ExtractStakeholders converts the stakeholder section of an extraction
// payload into per-row column values keyed by field number, ready for the
// repeating-row creation path. Deterministic like the candidate path.
func ExtractStakeholders(payload json.RawMessage, evidenceID id.EvidenceID) ([]map[fieldreg.FieldNo]record.Value, error) {
	var p extractionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "malformed extraction payload")
	}

	rows := make([]map[fieldreg.FieldNo]record.Value, 0, len(p.Stakeholders))
	for _, person := range p.Stakeholders {
		row := make(map[fieldreg.FieldNo]record.Value, len(person.Fields))
		for _, f := range person.Fields {
			def, err := fieldreg.Get(fieldreg.FieldNo(f.FieldNo))
			if err != nil {
				return nil, err
			}
			if !def.Repeating {
				return nil, dErrors.Newf(dErrors.CodeValidation,
					"field %d is not a repeating field and cannot appear on a stakeholder", f.FieldNo)
			}
			if f.Value == nil {
				continue
			}
			v, err := record.ParseValue(def.DataType, f.Value)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeValidation,
					"stakeholder field "+def.Name+" has a malformed value")
			}
			row[def.FieldNo] = v
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func extractionCandidate(f extractedField, evidenceID id.EvidenceID) (Candidate, error) {
	def, err := fieldreg.Get(fieldreg.FieldNo(f.FieldNo))
	if err != nil {
		return Candidate{}, err
	}
	if def.Repeating {
		return Candidate{}, dErrors.Newf(dErrors.CodeValidation,
			"field %d targets a repeating record; use the stakeholder extraction path", f.FieldNo)
	}
	if f.Value == nil {
		return Candidate{}, nil
	}
	v, err := record.ParseValue(def.DataType, f.Value)
	if err != nil {
		return Candidate{}, dErrors.Wrap(err, dErrors.CodeValidation,
			"extracted field "+def.Name+" has a malformed value")
	}
	confidence, err := id.NewConfidence(f.Confidence)
	if err != nil {
		return Candidate{}, dErrors.Newf(dErrors.CodeValidation,
			"extracted field %d carries an out-of-range confidence %v", f.FieldNo, f.Confidence)
	}
	return Candidate{
		FieldNo:    def.FieldNo,
		Value:      v,
		Source:     id.SourceDocExtraction,
		EvidenceID: evidenceID,
		Confidence: confidence,
	}, nil
}
