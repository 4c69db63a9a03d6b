package fieldreg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "masterfile/pkg/domain-errors"
)

func TestGet_KnownField(t *testing.T) {
	def, err := Get(1)
	require.NoError(t, err)
	assert.Equal(t, FieldNo(1), def.FieldNo)
	assert.Equal(t, "Legal name", def.Name)
	assert.Equal(t, RecordProfile, def.TargetRecord)
	assert.Equal(t, Column("legal_name"), def.TargetColumn)
	assert.Equal(t, TypeString, def.DataType)
	assert.False(t, def.Repeating)
	assert.False(t, def.DocumentOnly)
}

func TestGet_RejectsUndefinedNumbers(t *testing.T) {
	tests := []struct {
		name string
		n    FieldNo
	}{
		{"zero", 0},
		{"negative", -7},
		{"past end of range", 120},
		{"far past end of range", 100000},
		{"reserved gap 13", 13},
		{"reserved gap 47", 47},
		{"reserved gap 48", 48},
		{"reserved gap 90", 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Get(tt.n)
			require.Error(t, err)
			assert.True(t, IsUnknownField(err), "expected unknown-field error, got %v", err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.False(t, IsValid(tt.n))
		})
	}
}

// Every number in 1..119 is either reserved or resolves to exactly one
// definition. No silent gaps, no silent defaults.
func TestCatalogue_DenseOverRange(t *testing.T) {
	for n := MinFieldNo; n <= MaxFieldNo; n++ {
		_, isReserved := reserved[n]
		def, err := Get(n)
		if isReserved {
			require.Error(t, err, "reserved field %d must not resolve", n)
			continue
		}
		require.NoError(t, err, "field %d must resolve", n)
		assert.Equal(t, n, def.FieldNo)
	}
}

func TestCatalogue_RepeatingMatchesTarget(t *testing.T) {
	for _, def := range All() {
		if def.TargetRecord == RecordStakeholder {
			assert.True(t, def.Repeating, "stakeholder field %d must be repeating", def.FieldNo)
		} else {
			assert.False(t, def.Repeating, "profile field %d must not be repeating", def.FieldNo)
		}
	}
}

func TestCatalogue_DocumentFieldsAreStrings(t *testing.T) {
	for _, def := range All() {
		if def.DocumentOnly {
			assert.Equal(t, TypeString, def.DataType,
				"document field %d stores a reference string", def.FieldNo)
		}
	}
}

func TestForRecord(t *testing.T) {
	stakeholders := ForRecord(RecordStakeholder)
	require.NotEmpty(t, stakeholders)
	for i, def := range stakeholders {
		assert.Equal(t, RecordStakeholder, def.TargetRecord)
		if i > 0 {
			assert.Greater(t, def.FieldNo, stakeholders[i-1].FieldNo, "ordered by field number")
		}
	}

	profiles := ForRecord(RecordProfile)
	require.NotEmpty(t, profiles)
	assert.Len(t, All(), len(profiles)+len(stakeholders))
}
