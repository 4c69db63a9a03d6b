package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterfile/internal/audit"
	"masterfile/internal/record"
	id "masterfile/pkg/domain"
)

func newTestRouter(t *testing.T) (chi.Router, *audit.MemoryStore) {
	t.Helper()
	store := audit.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(store, logger).Register(r)
	return r, store
}

func seedTrail(t *testing.T, store *audit.MemoryStore, entityID id.EntityID) {
	t.Helper()
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	newLegalName := record.StringValue("Acme Holdings GmbH")
	oldLegalName := record.StringValue("Acme GmbH")
	newCity := record.StringValue("Berlin")

	events := []audit.Event{
		{
			EntityID:  entityID,
			FieldNo:   1,
			Action:    audit.ActionApplied,
			NewValue:  &oldLegalName,
			NewSource: id.SourceSecondaryRegistry,
			Actor:     "system",
			Timestamp: base,
		},
		{
			EntityID:  entityID,
			FieldNo:   16,
			Action:    audit.ActionApplied,
			NewValue:  &newCity,
			NewSource: id.SourceSecondaryRegistry,
			Actor:     "system",
			Timestamp: base.Add(time.Minute),
		},
		{
			EntityID:  entityID,
			FieldNo:   1,
			Action:    audit.ActionManualOverride,
			OldValue:  &oldLegalName,
			NewValue:  &newLegalName,
			OldSource: id.SourceSecondaryRegistry,
			NewSource: id.SourceManualOverride,
			Actor:     "kyc-lead@acme.test",
			Reason:    "name change registered 2026-01-15",
			Timestamp: base.Add(2 * time.Minute),
		},
	}
	for _, event := range events {
		require.NoError(t, store.Append(context.Background(), event))
	}
}

func TestHandleListReturnsTrailOldestFirst(t *testing.T) {
	r, store := newTestRouter(t)
	entityID := id.NewEntityID()
	seedTrail(t, store, entityID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/entities/"+entityID.String()+"/audit", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 3)
	assert.Equal(t, 1, resp.Events[0].FieldNo)
	assert.Equal(t, "applied", resp.Events[0].Action)
	assert.Equal(t, "manual_override", resp.Events[2].Action)
	require.NotNil(t, resp.Events[2].OldValue)
	assert.Equal(t, "Acme GmbH", *resp.Events[2].OldValue)
	assert.Equal(t, "name change registered 2026-01-15", resp.Events[2].Reason)
}

func TestHandleListFiltersByField(t *testing.T) {
	r, store := newTestRouter(t)
	entityID := id.NewEntityID()
	seedTrail(t, store, entityID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/entities/"+entityID.String()+"/audit?field_no=1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 2)
	for _, event := range resp.Events {
		assert.Equal(t, 1, event.FieldNo)
	}
}

func TestHandleListRejectsUnknownFieldFilter(t *testing.T) {
	r, _ := newTestRouter(t)
	entityID := id.NewEntityID()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/entities/"+entityID.String()+"/audit?field_no=47", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleListEmptyTrail(t *testing.T) {
	r, _ := newTestRouter(t)
	entityID := id.NewEntityID()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/entities/"+entityID.String()+"/audit", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Events)
}

func TestHandleListBadEntityID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/entities/nope/audit", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
