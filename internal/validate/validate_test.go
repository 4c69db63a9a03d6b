package validate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterfile/internal/fieldreg"
	"masterfile/internal/record"
	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
)

func populate(t *testing.T, store *record.MemoryStore, entityID id.EntityID, fieldNos ...fieldreg.FieldNo) {
	t.Helper()
	for _, fieldNo := range fieldNos {
		def, err := fieldreg.Get(fieldNo)
		require.NoError(t, err)

		var value record.Value
		switch def.DataType {
		case fieldreg.TypeDate:
			value = record.DateValue(time.Date(2001, 5, 14, 0, 0, 0, 0, time.UTC))
		case fieldreg.TypeNumber:
			value = record.NumberValue(1)
		case fieldreg.TypeBoolean:
			value = record.BoolValue(true)
		case fieldreg.TypeEnum:
			value = record.EnumValue("ACTIVE")
		default:
			value = record.StringValue("populated")
		}
		meta := record.Provenance{
			Source:     id.SourcePrimaryRegistry,
			Confidence: id.MustConfidence(0.9),
			VerifiedBy: "seed",
			Timestamp:  time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC),
			FieldNo:    fieldNo,
		}
		profile, err := store.GetProfile(context.Background(), entityID)
		require.NoError(t, err)
		require.NoError(t, store.UpdateProfileColumn(context.Background(), entityID, def.TargetColumn, value, meta, profile.Version))
	}
}

func TestValidate_CompleteModule(t *testing.T) {
	store := record.NewMemoryStore()
	entityID := id.NewEntityID()
	populate(t, store, entityID, 1, 3, 5, 7, 9, 10)

	svc, err := New(store)
	require.NoError(t, err)

	result, err := svc.Validate(context.Background(), entityID, ModuleCoreIdentity)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_ReportsEveryMissingFieldByName(t *testing.T) {
	store := record.NewMemoryStore()
	entityID := id.NewEntityID()
	populate(t, store, entityID, 1, 5)

	svc, err := New(store)
	require.NoError(t, err)

	result, err := svc.Validate(context.Background(), entityID, ModuleCoreIdentity)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "Entity type")
	assert.Contains(t, result.Errors[1], "Registration number")
}

func TestValidate_IgnoresSource(t *testing.T) {
	// A field populated by the weakest source still counts.
	store := record.NewMemoryStore()
	entityID := id.NewEntityID()
	def, err := fieldreg.Get(83)
	require.NoError(t, err)
	meta := record.Provenance{
		Source:     id.SourceSystemRefresh,
		Confidence: id.MustConfidence(0.5),
		VerifiedBy: "cron",
		Timestamp:  time.Now().UTC(),
		FieldNo:    83,
	}
	require.NoError(t, store.UpdateProfileColumn(context.Background(), entityID, def.TargetColumn,
		record.StringValue("Nimbus Group"), meta, 0))
	populate(t, store, entityID, 84, 85)

	svc, err := New(store)
	require.NoError(t, err)
	result, err := svc.Validate(context.Background(), entityID, ModuleOwnership)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidate_UnknownModule(t *testing.T) {
	svc, err := New(record.NewMemoryStore())
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), id.NewEntityID(), Module("billing"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestValidate_EmptyEntityFailsEverything(t *testing.T) {
	svc, err := New(record.NewMemoryStore())
	require.NoError(t, err)

	for _, module := range Modules() {
		result, err := svc.Validate(context.Background(), id.NewEntityID(), module)
		require.NoError(t, err)
		assert.False(t, result.Valid, "module %s", module)
		assert.NotEmpty(t, result.Errors)
	}
}
