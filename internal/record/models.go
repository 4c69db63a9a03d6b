// Package record holds the canonical master record: the singleton profile and
// the repeating child rows, each with a provenance meta map that mirrors its
// populated columns. The reconcile service is the only writer; everything
// here is data plus the stores that persist it.
package record

import (
	"encoding/json"
	"fmt"
	"time"

	"masterfile/internal/fieldreg"
	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
)

// Value is a closed tagged union over the registry data types. A typo can
// select a wrong column name only at the registry, never by constructing a
// value of the wrong shape.
type Value struct {
	Kind fieldreg.DataType

	Str  string    // TypeString, TypeEnum
	Num  float64   // TypeNumber
	Bool bool      // TypeBoolean
	Date time.Time // TypeDate, normalized to UTC midnight
}

// StringValue builds a string-typed value.
func StringValue(s string) Value { return Value{Kind: fieldreg.TypeString, Str: s} }

// EnumValue builds an enum-typed value.
func EnumValue(s string) Value { return Value{Kind: fieldreg.TypeEnum, Str: s} }

// NumberValue builds a number-typed value.
func NumberValue(n float64) Value { return Value{Kind: fieldreg.TypeNumber, Num: n} }

// BoolValue builds a boolean-typed value.
func BoolValue(b bool) Value { return Value{Kind: fieldreg.TypeBoolean, Bool: b} }

// DateValue builds a date-typed value, truncated to the day in UTC.
func DateValue(t time.Time) Value {
	u := t.UTC()
	return Value{Kind: fieldreg.TypeDate, Date: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseValue converts a raw scalar into a Value of the field's declared type.
// Strings are accepted for every type (dates as YYYY-MM-DD, numbers and
// booleans in their usual text forms are not coerced — the caller sends the
// JSON type that matches).
func ParseValue(dt fieldreg.DataType, raw any) (Value, error) {
	switch dt {
	case fieldreg.TypeString, fieldreg.TypeEnum:
		s, ok := raw.(string)
		if !ok {
			return Value{}, dErrors.Newf(dErrors.CodeValidation, "expected string value, got %T", raw)
		}
		if dt == fieldreg.TypeEnum {
			return EnumValue(s), nil
		}
		return StringValue(s), nil
	case fieldreg.TypeNumber:
		switch n := raw.(type) {
		case float64:
			return NumberValue(n), nil
		case int:
			return NumberValue(float64(n)), nil
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return Value{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid number value")
			}
			return NumberValue(f), nil
		default:
			return Value{}, dErrors.Newf(dErrors.CodeValidation, "expected number value, got %T", raw)
		}
	case fieldreg.TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return Value{}, dErrors.Newf(dErrors.CodeValidation, "expected boolean value, got %T", raw)
		}
		return BoolValue(b), nil
	case fieldreg.TypeDate:
		s, ok := raw.(string)
		if !ok {
			return Value{}, dErrors.Newf(dErrors.CodeValidation, "expected date string, got %T", raw)
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return Value{}, dErrors.Wrap(err, dErrors.CodeValidation, "date must be formatted YYYY-MM-DD")
		}
		return DateValue(t), nil
	default:
		return Value{}, dErrors.Newf(dErrors.CodeValidation, "unsupported data type %q", dt)
	}
}

// Equal reports exact equality of kind and payload. Used by the writer to
// classify a same-source re-apply as NO_CHANGE.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case fieldreg.TypeNumber:
		return v.Num == other.Num
	case fieldreg.TypeBoolean:
		return v.Bool == other.Bool
	case fieldreg.TypeDate:
		return v.Date.Equal(other.Date)
	default:
		return v.Str == other.Str
	}
}

// Display renders the value for audit events and error messages.
func (v Value) Display() string {
	switch v.Kind {
	case fieldreg.TypeNumber:
		return fmt.Sprintf("%g", v.Num)
	case fieldreg.TypeBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case fieldreg.TypeDate:
		return v.Date.Format("2006-01-02")
	default:
		return v.Str
	}
}

// valueJSON is the storage shape of Value.
type valueJSON struct {
	Kind string  `json:"kind"`
	Str  *string `json:"str,omitempty"`
	Num  *float64 `json:"num,omitempty"`
	Bool *bool   `json:"bool,omitempty"`
	Date *string `json:"date,omitempty"`
}

// MarshalJSON serializes only the member selected by Kind.
func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{Kind: string(v.Kind)}
	switch v.Kind {
	case fieldreg.TypeNumber:
		out.Num = &v.Num
	case fieldreg.TypeBoolean:
		out.Bool = &v.Bool
	case fieldreg.TypeDate:
		d := v.Date.Format("2006-01-02")
		out.Date = &d
	default:
		out.Str = &v.Str
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a Value from its storage shape.
func (v *Value) UnmarshalJSON(data []byte) error {
	var in valueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	v.Kind = fieldreg.DataType(in.Kind)
	switch v.Kind {
	case fieldreg.TypeNumber:
		if in.Num != nil {
			v.Num = *in.Num
		}
	case fieldreg.TypeBoolean:
		if in.Bool != nil {
			v.Bool = *in.Bool
		}
	case fieldreg.TypeDate:
		if in.Date != nil {
			t, err := time.Parse("2006-01-02", *in.Date)
			if err != nil {
				return err
			}
			v.Date = t
		}
	default:
		if in.Str != nil {
			v.Str = *in.Str
		}
	}
	return nil
}

// Provenance records where a stored column value came from. A column has a
// value if and only if it has a provenance entry; the stores reject writes
// that would break the pairing.
type Provenance struct {
	Source     id.Source        `json:"source"`
	Confidence id.Confidence    `json:"confidence"`
	VerifiedBy string           `json:"verified_by"`
	Timestamp  time.Time        `json:"timestamp"`
	FieldNo    fieldreg.FieldNo `json:"field_no"`
}

// Profile is the singleton record for one entity. Version supports the
// compare-and-set write path; a zero version means the profile has never
// been written.
type Profile struct {
	EntityID id.EntityID
	Columns  map[fieldreg.Column]Value
	Meta     map[fieldreg.Column]Provenance
	Version  int64
}

// NewProfile returns an empty profile for the entity.
func NewProfile(entityID id.EntityID) *Profile {
	return &Profile{
		EntityID: entityID,
		Columns:  make(map[fieldreg.Column]Value),
		Meta:     make(map[fieldreg.Column]Provenance),
	}
}

// Clone deep-copies the profile so store internals never alias caller maps.
func (p *Profile) Clone() *Profile {
	out := NewProfile(p.EntityID)
	out.Version = p.Version
	for col, v := range p.Columns {
		out.Columns[col] = v
	}
	for col, m := range p.Meta {
		out.Meta[col] = m
	}
	return out
}

// Consistent reports whether columns and meta cover exactly the same keys.
func (p *Profile) Consistent() bool {
	return pairedKeys(p.Columns, p.Meta)
}

// Row is one repeating child record (e.g. a stakeholder) with its own meta
// map scoped to its own columns.
type Row struct {
	RowID     id.RowID
	EntityID  id.EntityID
	Target    fieldreg.TargetRecord
	Columns   map[fieldreg.Column]Value
	Meta      map[fieldreg.Column]Provenance
	CreatedAt time.Time
}

// Clone deep-copies the row.
func (r *Row) Clone() *Row {
	out := &Row{
		RowID:     r.RowID,
		EntityID:  r.EntityID,
		Target:    r.Target,
		Columns:   make(map[fieldreg.Column]Value, len(r.Columns)),
		Meta:      make(map[fieldreg.Column]Provenance, len(r.Meta)),
		CreatedAt: r.CreatedAt,
	}
	for col, v := range r.Columns {
		out.Columns[col] = v
	}
	for col, m := range r.Meta {
		out.Meta[col] = m
	}
	return out
}

// Consistent reports whether columns and meta cover exactly the same keys.
func (r *Row) Consistent() bool {
	return pairedKeys(r.Columns, r.Meta)
}

func pairedKeys(values map[fieldreg.Column]Value, meta map[fieldreg.Column]Provenance) bool {
	if len(values) != len(meta) {
		return false
	}
	for col := range values {
		if _, ok := meta[col]; !ok {
			return false
		}
	}
	return true
}
