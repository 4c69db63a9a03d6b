package handler

import (
	"bytes"
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
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"masterfile/internal/evidence"
	"masterfile/internal/evidence/handler/mocks"
	"masterfile/internal/fieldreg"
	"masterfile/internal/normalize"
	"masterfile/internal/record"
	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
	"masterfile/pkg/requestcontext"
)

type EvidenceHandlerSuite struct {
	suite.Suite
	entityID id.EntityID
}

func (s *EvidenceHandlerSuite) SetupSuite() {
	s.entityID = id.NewEntityID()
}

func TestEvidenceHandlerSuite(t *testing.T) {
	suite.Run(t, new(EvidenceHandlerSuite))
}

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockService, logger).Register(r)
	return r, mockService
}

func (s *EvidenceHandlerSuite) do(r chi.Router, method, path string, body any, actor string) *httptest.ResponseRecorder {
	s.T().Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if actor != "" {
		req = req.WithContext(requestcontext.WithActor(req.Context(), actor))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (s *EvidenceHandlerSuite) sampleEvidence() *evidence.Evidence {
	return &evidence.Evidence{
		ID:            id.NewEvidenceID(),
		EntityID:      s.entityID,
		Provider:      id.SourcePrimaryRegistry,
		SchemaVersion: 1,
		Payload:       json.RawMessage(`{"lei":"529900T8BM49AURSDO55"}`),
		SubmittedBy:   "ops@acme.test",
		CreatedAt:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func (s *EvidenceHandlerSuite) TestHandleIngest() {
	r, mockService := newTestRouter(s.T())
	ev := s.sampleEvidence()
	payload := json.RawMessage(`{"lei":"529900T8BM49AURSDO55"}`)

	mockService.EXPECT().Ingest(
		gomock.Any(), s.entityID, id.SourcePrimaryRegistry, payload, "ops@acme.test",
	).Return(ev, []normalize.Candidate{{
		FieldNo:    8,
		Value:      record.StringValue("529900T8BM49AURSDO55"),
		Source:     id.SourcePrimaryRegistry,
		EvidenceID: ev.ID,
		Confidence: 1,
	}}, nil)

	body := ingestRequest{Provider: "PRIMARY_REGISTRY", Payload: payload}
	w := s.do(r, http.MethodPost, "/entities/"+s.entityID.String()+"/evidence", body, "ops@acme.test")

	assert.Equal(s.T(), http.StatusCreated, w.Code)
	var resp ingestResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), ev.ID.String(), resp.Evidence.ID)
	assert.Empty(s.T(), resp.Evidence.Payload, "list and create responses omit the raw payload")
	require.Len(s.T(), resp.Candidates, 1)
	assert.Equal(s.T(), 8, resp.Candidates[0].FieldNo)
	assert.Equal(s.T(), "529900T8BM49AURSDO55", resp.Candidates[0].Value)
}

func (s *EvidenceHandlerSuite) TestHandleIngestRejectsUnknownProvider() {
	r, _ := newTestRouter(s.T())

	body := ingestRequest{Provider: "CARRIER_PIGEON", Payload: json.RawMessage(`{}`)}
	w := s.do(r, http.MethodPost, "/entities/"+s.entityID.String()+"/evidence", body, "ops@acme.test")

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), w.Body.String(), "unknown provider")
}

func (s *EvidenceHandlerSuite) TestHandleGetIncludesPayload() {
	r, mockService := newTestRouter(s.T())
	ev := s.sampleEvidence()

	mockService.EXPECT().Get(gomock.Any(), ev.ID).Return(ev, nil)

	w := s.do(r, http.MethodGet, "/evidence/"+ev.ID.String(), nil, "")

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp evidenceDTO
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), ev.ID.String(), resp.ID)
	assert.JSONEq(s.T(), string(ev.Payload), string(resp.Payload))
	assert.Equal(s.T(), "2026-03-14T09:30:00Z", resp.CreatedAt)
}

func (s *EvidenceHandlerSuite) TestHandleGetNotFound() {
	r, mockService := newTestRouter(s.T())
	evidenceID := id.NewEvidenceID()

	mockService.EXPECT().Get(gomock.Any(), evidenceID).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "evidence not found"))

	w := s.do(r, http.MethodGet, "/evidence/"+evidenceID.String(), nil, "")

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *EvidenceHandlerSuite) TestHandleList() {
	r, mockService := newTestRouter(s.T())
	first := s.sampleEvidence()
	second := s.sampleEvidence()
	second.CreatedAt = first.CreatedAt.Add(time.Hour)

	mockService.EXPECT().ListByEntity(gomock.Any(), s.entityID).
		Return([]*evidence.Evidence{first, second}, nil)

	w := s.do(r, http.MethodGet, "/entities/"+s.entityID.String()+"/evidence", nil, "")

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp listResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(s.T(), resp.Evidence, 2)
	assert.Equal(s.T(), first.ID.String(), resp.Evidence[0].ID)
}

func (s *EvidenceHandlerSuite) TestHandleFetch() {
	r, mockService := newTestRouter(s.T())
	ev := s.sampleEvidence()

	mockService.EXPECT().FetchAndIngest(
		gomock.Any(), s.entityID, id.SourcePrimaryRegistry, "529900T8BM49AURSDO55", "ops@acme.test",
	).Return(ev, nil, nil)

	body := fetchRequest{Provider: "PRIMARY_REGISTRY", Identifier: "529900T8BM49AURSDO55"}
	w := s.do(r, http.MethodPost, "/entities/"+s.entityID.String()+"/evidence/fetch", body, "ops@acme.test")

	assert.Equal(s.T(), http.StatusCreated, w.Code)
}

func (s *EvidenceHandlerSuite) TestHandleFetchRequiresIdentifier() {
	r, _ := newTestRouter(s.T())

	body := fetchRequest{Provider: "PRIMARY_REGISTRY"}
	w := s.do(r, http.MethodPost, "/entities/"+s.entityID.String()+"/evidence/fetch", body, "ops@acme.test")

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), w.Body.String(), "identifier is required")
}

func (s *EvidenceHandlerSuite) TestHandleFetchUnavailableUpstream() {
	r, mockService := newTestRouter(s.T())

	mockService.EXPECT().FetchAndIngest(
		gomock.Any(), s.entityID, id.SourcePrimaryRegistry, "529900T8BM49AURSDO55", gomock.Any(),
	).Return(nil, nil, dErrors.New(dErrors.CodeUnavailable, "primary registry is unavailable"))

	body := fetchRequest{Provider: "PRIMARY_REGISTRY", Identifier: "529900T8BM49AURSDO55"}
	w := s.do(r, http.MethodPost, "/entities/"+s.entityID.String()+"/evidence/fetch", body, "ops@acme.test")

	assert.Equal(s.T(), http.StatusServiceUnavailable, w.Code)
}

func (s *EvidenceHandlerSuite) TestHandleStoreDocument() {
	r, mockService := newTestRouter(s.T())
	evidenceID := id.NewEvidenceID()

	mockService.EXPECT().StoreDocument(
		gomock.Any(), s.entityID, fieldreg.FieldNo(71), []byte("%PDF-1.7"), "certificate.pdf", "application/pdf", "ops@acme.test",
	).Return(evidence.DocumentRef{
		URL:        "https://blobs.acme.test/certificate.pdf",
		EvidenceID: evidenceID,
		FieldNo:    71,
	}, nil)

	body := storeDocumentRequest{
		FieldNo:     71,
		Filename:    "certificate.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.7"),
	}
	w := s.do(r, http.MethodPost, "/entities/"+s.entityID.String()+"/documents", body, "ops@acme.test")

	assert.Equal(s.T(), http.StatusCreated, w.Code)
	var resp documentRefDTO
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "https://blobs.acme.test/certificate.pdf", resp.URL)
	assert.Equal(s.T(), evidenceID.String(), resp.EvidenceID)
	assert.Equal(s.T(), 71, resp.FieldNo)
}

func (s *EvidenceHandlerSuite) TestHandleStoreDocumentRejectsNonDocumentField() {
	r, mockService := newTestRouter(s.T())

	mockService.EXPECT().StoreDocument(
		gomock.Any(), s.entityID, fieldreg.FieldNo(1), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
	).Return(evidence.DocumentRef{}, dErrors.New(dErrors.CodeValidation, "field 1 (Legal name) does not hold a document reference"))

	body := storeDocumentRequest{FieldNo: 1, Filename: "name.pdf", Data: []byte("x")}
	w := s.do(r, http.MethodPost, "/entities/"+s.entityID.String()+"/documents", body, "ops@acme.test")

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), w.Body.String(), "does not hold a document reference")
}

func (s *EvidenceHandlerSuite) TestHandleStoreDocumentUnconfigured() {
	r, mockService := newTestRouter(s.T())

	mockService.EXPECT().StoreDocument(
		gomock.Any(), s.entityID, fieldreg.FieldNo(72), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
	).Return(evidence.DocumentRef{}, dErrors.New(dErrors.CodeUnavailable, "document storage is not configured"))

	body := storeDocumentRequest{FieldNo: 72, Filename: "articles.pdf", Data: []byte("x")}
	w := s.do(r, http.MethodPost, "/entities/"+s.entityID.String()+"/documents", body, "ops@acme.test")

	assert.Equal(s.T(), http.StatusServiceUnavailable, w.Code)
}

func (s *EvidenceHandlerSuite) TestHandleReplay() {
	r, mockService := newTestRouter(s.T())

	mockService.EXPECT().Replay(gomock.Any(), s.entityID).
		Return(evidence.ReplayResult{EvidenceSeen: 4, Candidates: 11, Applied: 7, Skipped: 1}, nil)

	w := s.do(r, http.MethodPost, "/entities/"+s.entityID.String()+"/replay", nil, "ops@acme.test")

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp replayResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), 4, resp.EvidenceSeen)
	assert.Equal(s.T(), 7, resp.Applied)
}
