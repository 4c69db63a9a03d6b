// Package fieldreg is the static field registry: the compiled-in catalogue
// mapping every stable field number to its storage target, data type, and
// shape flags. The catalogue is read-only after init and therefore safe for
// unsynchronized concurrent lookups.
//
// Field numbers are the public vocabulary of the whole system; storage column
// names never cross a service boundary. The range is dense over 1..119 with
// explicitly reserved gaps that fail lookup exactly like out-of-range numbers.
package fieldreg

import (
	"errors"
	"fmt"
	"sort"

	dErrors "masterfile/pkg/domain-errors"
)

// FieldNo is the stable integer identity of one canonical data point.
type FieldNo int

// DataType constrains the value shape a field accepts.
type DataType string

const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeDate    DataType = "date"
	TypeBoolean DataType = "boolean"
	TypeEnum    DataType = "enum"
)

// TargetRecord names the record a field lives on.
type TargetRecord string

const (
	// RecordProfile is the singleton profile record, one per entity.
	RecordProfile TargetRecord = "profile"

	// RecordStakeholder is the repeating stakeholder record (directors,
	// beneficial owners, signatories), many per entity.
	RecordStakeholder TargetRecord = "stakeholder"
)

// Column identifies one storage column within a target record.
type Column string

// Definition describes one canonical field.
type Definition struct {
	FieldNo      FieldNo
	Name         string
	DataType     DataType
	TargetRecord TargetRecord
	TargetColumn Column

	// Repeating marks fields living on a one-to-many child record.
	Repeating bool

	// DocumentOnly marks fields whose value is a reference to an uploaded
	// document. These are exempt from source precedence and change only by
	// explicit replacement.
	DocumentOnly bool
}

// ErrUnknownField is wrapped into every failed lookup so callers can branch
// with errors.Is regardless of the surrounding error code.
var ErrUnknownField = errors.New("unknown field number")

const (
	// MinFieldNo and MaxFieldNo bound the defined range. Numbers inside the
	// range may still be reserved.
	MinFieldNo FieldNo = 1
	MaxFieldNo FieldNo = 119
)

// reserved numbers are defined gaps: skipped by design, never valid, never
// silently defaulted.
var reserved = map[FieldNo]struct{}{
	13: {},
	47: {},
	48: {},
	90: {},
}

// Get resolves a field number to its definition. Out-of-range and reserved
// numbers fail identically.
func Get(n FieldNo) (Definition, error) {
	def, ok := byNumber[n]
	if !ok {
		return Definition{}, dErrors.Wrap(ErrUnknownField, dErrors.CodeValidation,
			fmt.Sprintf("unknown field number %d", n))
	}
	return def, nil
}

// IsValid reports whether n resolves to a definition.
func IsValid(n FieldNo) bool {
	_, ok := byNumber[n]
	return ok
}

// IsUnknownField reports whether err stems from a failed registry lookup.
func IsUnknownField(err error) bool {
	return errors.Is(err, ErrUnknownField)
}

// ForRecord returns all definitions targeting the record, ordered by field
// number. The returned slice is a copy.
func ForRecord(target TargetRecord) []Definition {
	defs := make([]Definition, 0, len(byNumber))
	for _, def := range byNumber {
		if def.TargetRecord == target {
			defs = append(defs, def)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].FieldNo < defs[j].FieldNo })
	return defs
}

// All returns every definition ordered by field number.
func All() []Definition {
	defs := make([]Definition, 0, len(byNumber))
	for _, def := range byNumber {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].FieldNo < defs[j].FieldNo })
	return defs
}

// byNumber is built once from the catalogue below. buildIndex panics on any
// catalogue defect (duplicate number, duplicate column, reserved collision,
// out-of-range number) so a bad edit fails at process start, not at runtime.
var byNumber = buildIndex()

func buildIndex() map[FieldNo]Definition {
	index := make(map[FieldNo]Definition, len(catalogue))
	columns := make(map[TargetRecord]map[Column]FieldNo)
	for _, def := range catalogue {
		if def.FieldNo < MinFieldNo || def.FieldNo > MaxFieldNo {
			panic(fmt.Sprintf("fieldreg: field %d outside defined range", def.FieldNo))
		}
		if _, isReserved := reserved[def.FieldNo]; isReserved {
			panic(fmt.Sprintf("fieldreg: field %d collides with a reserved number", def.FieldNo))
		}
		if _, dup := index[def.FieldNo]; dup {
			panic(fmt.Sprintf("fieldreg: duplicate field number %d", def.FieldNo))
		}
		if def.TargetColumn == "" || def.Name == "" {
			panic(fmt.Sprintf("fieldreg: field %d missing name or column", def.FieldNo))
		}
		cols, ok := columns[def.TargetRecord]
		if !ok {
			cols = make(map[Column]FieldNo)
			columns[def.TargetRecord] = cols
		}
		if prev, dup := cols[def.TargetColumn]; dup {
			panic(fmt.Sprintf("fieldreg: column %s/%s mapped by both field %d and %d",
				def.TargetRecord, def.TargetColumn, prev, def.FieldNo))
		}
		cols[def.TargetColumn] = def.FieldNo
		index[def.FieldNo] = def
	}
	return index
}
