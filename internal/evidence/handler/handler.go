// Package handler exposes the evidence store over HTTP: manual payload
// submission, registry fetches, retrieval, and replay.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"masterfile/internal/evidence"
	"masterfile/internal/fieldreg"
	"masterfile/internal/normalize"
	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
	"masterfile/pkg/platform/httputil"
	"masterfile/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/evidence-mocks.go -package=mocks Service

// Service is the slice of the evidence service the handler needs.
type Service interface {
	Ingest(ctx context.Context, entityID id.EntityID, provider id.Source, payload json.RawMessage, submittedBy string) (*evidence.Evidence, []normalize.Candidate, error)
	Get(ctx context.Context, evidenceID id.EvidenceID) (*evidence.Evidence, error)
	ListByEntity(ctx context.Context, entityID id.EntityID) ([]*evidence.Evidence, error)
	FetchAndIngest(ctx context.Context, entityID id.EntityID, provider id.Source, identifier, submittedBy string) (*evidence.Evidence, []normalize.Candidate, error)
	StoreDocument(ctx context.Context, entityID id.EntityID, fieldNo fieldreg.FieldNo, data []byte, filename, contentType, submittedBy string) (evidence.DocumentRef, error)
	Replay(ctx context.Context, entityID id.EntityID) (evidence.ReplayResult, error)
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/evidence/{evidenceID}", h.handleGet)
	r.Post("/entities/{entityID}/evidence", h.handleIngest)
	r.Get("/entities/{entityID}/evidence", h.handleList)
	r.Post("/entities/{entityID}/evidence/fetch", h.handleFetch)
	r.Post("/entities/{entityID}/documents", h.handleStoreDocument)
	r.Post("/entities/{entityID}/replay", h.handleReplay)
}

type ingestRequest struct {
	Provider string          `json:"provider"`
	Payload  json.RawMessage `json:"payload"`
}

type evidenceDTO struct {
	ID            string          `json:"id"`
	EntityID      string          `json:"entity_id"`
	Provider      string          `json:"provider"`
	SchemaVersion int             `json:"schema_version"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	SubmittedBy   string          `json:"submitted_by"`
	CreatedAt     string          `json:"created_at"`
}

type candidateDTO struct {
	FieldNo    int     `json:"field_no"`
	Value      string  `json:"value"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

type ingestResponse struct {
	Evidence   evidenceDTO    `json:"evidence"`
	Candidates []candidateDTO `json:"candidates"`
}

func toEvidenceDTO(ev *evidence.Evidence, includePayload bool) evidenceDTO {
	dto := evidenceDTO{
		ID:            ev.ID.String(),
		EntityID:      ev.EntityID.String(),
		Provider:      ev.Provider.String(),
		SchemaVersion: ev.SchemaVersion,
		SubmittedBy:   ev.SubmittedBy,
		CreatedAt:     ev.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if includePayload {
		dto.Payload = ev.Payload
	}
	return dto
}

func toCandidateDTOs(candidates []normalize.Candidate) []candidateDTO {
	out := make([]candidateDTO, len(candidates))
	for i, c := range candidates {
		out[i] = candidateDTO{
			FieldNo:    int(c.FieldNo),
			Value:      c.Value.Display(),
			Source:     c.Source.String(),
			Confidence: c.Confidence.Float(),
		}
	}
	return out
}

func entityIDFrom(r *http.Request) (id.EntityID, error) {
	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		return id.EntityID{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid entity id")
	}
	return entityID, nil
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID, err := entityIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ingestRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	provider, err := id.ParseSource(req.Provider)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "unknown provider"))
		return
	}

	ev, candidates, err := h.svc.Ingest(ctx, entityID, provider, req.Payload, requestcontext.Actor(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "evidence ingest failed",
			"request_id", requestcontext.RequestID(ctx), "provider", provider.String(), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ingestResponse{
		Evidence:   toEvidenceDTO(ev, false),
		Candidates: toCandidateDTOs(candidates),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	evidenceID, err := id.ParseEvidenceID(chi.URLParam(r, "evidenceID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid evidence id"))
		return
	}

	ev, err := h.svc.Get(r.Context(), evidenceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEvidenceDTO(ev, true))
}

type listResponse struct {
	Evidence []evidenceDTO `json:"evidence"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	entityID, err := entityIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items, err := h.svc.ListByEntity(r.Context(), entityID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := listResponse{Evidence: make([]evidenceDTO, len(items))}
	for i, ev := range items {
		resp.Evidence[i] = toEvidenceDTO(ev, false)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type fetchRequest struct {
	Provider   string `json:"provider"`
	Identifier string `json:"identifier"`
}

func (h *Handler) handleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID, err := entityIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[fetchRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	provider, err := id.ParseSource(req.Provider)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "unknown provider"))
		return
	}
	if req.Identifier == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "identifier is required"))
		return
	}

	ev, candidates, err := h.svc.FetchAndIngest(ctx, entityID, provider, req.Identifier, requestcontext.Actor(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "registry fetch failed",
			"request_id", requestcontext.RequestID(ctx), "provider", provider.String(), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ingestResponse{
		Evidence:   toEvidenceDTO(ev, false),
		Candidates: toCandidateDTOs(candidates),
	})
}

type storeDocumentRequest struct {
	FieldNo     int    `json:"field_no"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"` // base64 in transit
}

type documentRefDTO struct {
	URL        string `json:"url"`
	EvidenceID string `json:"evidence_id"`
	FieldNo    int    `json:"field_no"`
}

func (h *Handler) handleStoreDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID, err := entityIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[storeDocumentRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	ref, err := h.svc.StoreDocument(ctx, entityID, fieldreg.FieldNo(req.FieldNo),
		req.Data, req.Filename, req.ContentType, requestcontext.Actor(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "document store failed",
			"request_id", requestcontext.RequestID(ctx), "field_no", req.FieldNo, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, documentRefDTO{
		URL:        ref.URL,
		EvidenceID: ref.EvidenceID.String(),
		FieldNo:    ref.FieldNo,
	})
}

type replayResponse struct {
	EvidenceSeen int `json:"evidence_seen"`
	Candidates   int `json:"candidates"`
	Applied      int `json:"applied"`
	Skipped      int `json:"skipped"`
}

func (h *Handler) handleReplay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID, err := entityIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.svc.Replay(ctx, entityID)
	if err != nil {
		h.logger.ErrorContext(ctx, "replay failed",
			"request_id", requestcontext.RequestID(ctx), "entity_id", entityID.String(), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, replayResponse{
		EvidenceSeen: result.EvidenceSeen,
		Candidates:   result.Candidates,
		Applied:      result.Applied,
		Skipped:      result.Skipped,
	})
}
