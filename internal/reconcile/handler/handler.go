// Package handler exposes the conflict-resolution write path over HTTP. The
// wire vocabulary is field numbers and source names; storage column names
// never cross this boundary except inside row payloads derived from the
// registry.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"masterfile/internal/fieldreg"
	"masterfile/internal/normalize"
	"masterfile/internal/platform/observability"
	"masterfile/internal/reconcile"
	"masterfile/internal/record"
	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
	"masterfile/pkg/platform/httputil"
	"masterfile/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/reconcile-mocks.go -package=mocks Service

// Service is the slice of the reconcile service the handler needs.
type Service interface {
	EvaluateAll(ctx context.Context, entityID id.EntityID, candidates []normalize.Candidate) ([]reconcile.Evaluation, error)
	ApplyBatch(ctx context.Context, entityID id.EntityID, candidates []normalize.Candidate, actor string) ([]reconcile.Evaluation, error)
	ApplyManualOverride(ctx context.Context, entityID id.EntityID, fieldNo fieldreg.FieldNo, value record.Value, actor, reason string) (reconcile.Evaluation, error)
	CreateRow(ctx context.Context, entityID id.EntityID, target fieldreg.TargetRecord, values map[fieldreg.Column]record.Value, meta map[fieldreg.Column]record.Provenance, actor string) (id.RowID, error)
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/entities/{entityID}/candidates/evaluate", h.handleEvaluate)
	r.Post("/entities/{entityID}/candidates/apply", h.handleApply)
	r.Post("/entities/{entityID}/overrides", h.handleOverride)
	r.Post("/entities/{entityID}/rows", h.handleCreateRow)
}

type candidateDTO struct {
	FieldNo    int     `json:"field_no"`
	Value      any     `json:"value"`
	Source     string  `json:"source"`
	EvidenceID string  `json:"evidence_id,omitempty"`
	Confidence float64 `json:"confidence"`
}

type candidatesRequest struct {
	Candidates []candidateDTO `json:"candidates"`
}

type evaluationDTO struct {
	FieldNo       int           `json:"field_no"`
	Action        string        `json:"action"`
	Reason        string        `json:"reason"`
	CurrentValue  *record.Value `json:"current_value,omitempty"`
	CurrentSource string        `json:"current_source,omitempty"`
}

type evaluationsResponse struct {
	Evaluations []evaluationDTO `json:"evaluations"`
}

func toEvaluationDTO(eval reconcile.Evaluation) evaluationDTO {
	return evaluationDTO{
		FieldNo:       int(eval.FieldNo),
		Action:        string(eval.Action),
		Reason:        eval.Reason,
		CurrentValue:  eval.CurrentValue,
		CurrentSource: eval.CurrentSource.String(),
	}
}

// toCandidate converts one wire candidate into a typed one, resolving the
// value against the registry's declared data type.
func toCandidate(dto candidateDTO) (normalize.Candidate, error) {
	def, err := fieldreg.Get(fieldreg.FieldNo(dto.FieldNo))
	if err != nil {
		return normalize.Candidate{}, err
	}
	value, err := record.ParseValue(def.DataType, dto.Value)
	if err != nil {
		return normalize.Candidate{}, dErrors.Wrap(err, dErrors.CodeValidation,
			"field "+def.Name+" has a malformed value")
	}
	source, err := id.ParseSource(dto.Source)
	if err != nil {
		return normalize.Candidate{}, dErrors.Wrap(err, dErrors.CodeValidation, "unknown source")
	}
	confidence, err := id.NewConfidence(dto.Confidence)
	if err != nil {
		return normalize.Candidate{}, dErrors.Wrap(err, dErrors.CodeValidation, "confidence out of range")
	}

	candidate := normalize.Candidate{
		FieldNo:    def.FieldNo,
		Value:      value,
		Source:     source,
		Confidence: confidence,
	}
	if dto.EvidenceID != "" {
		if candidate.EvidenceID, err = id.ParseEvidenceID(dto.EvidenceID); err != nil {
			return normalize.Candidate{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid evidence id")
		}
	}
	return candidate, nil
}

func entityIDFrom(r *http.Request) (id.EntityID, error) {
	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		return id.EntityID{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid entity id")
	}
	return entityID, nil
}

func (h *Handler) decodeCandidates(w http.ResponseWriter, r *http.Request) (id.EntityID, []normalize.Candidate, bool) {
	entityID, err := entityIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return id.EntityID{}, nil, false
	}
	req, ok := httputil.DecodeAndPrepare[candidatesRequest](w, r, h.logger, requestcontext.RequestID(r.Context()))
	if !ok {
		return id.EntityID{}, nil, false
	}
	if len(req.Candidates) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "at least one candidate is required"))
		return id.EntityID{}, nil, false
	}

	candidates := make([]normalize.Candidate, len(req.Candidates))
	for i, dto := range req.Candidates {
		candidate, err := toCandidate(dto)
		if err != nil {
			httputil.WriteError(w, err)
			return id.EntityID{}, nil, false
		}
		candidates[i] = candidate
	}
	return entityID, candidates, true
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID, candidates, ok := h.decodeCandidates(w, r)
	if !ok {
		return
	}

	evals, err := h.svc.EvaluateAll(ctx, entityID, candidates)
	if err != nil {
		h.logger.ErrorContext(ctx, "evaluate failed",
			"request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(evals))
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID, candidates, ok := h.decodeCandidates(w, r)
	if !ok {
		return
	}

	evals, err := h.svc.ApplyBatch(ctx, entityID, candidates, requestcontext.Actor(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "apply failed",
			"request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(evals))
}

type overrideRequest struct {
	FieldNo int    `json:"field_no"`
	Value   any    `json:"value"`
	Reason  string `json:"reason"`
}

func (h *Handler) handleOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID, err := entityIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[overrideRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	def, err := fieldreg.Get(fieldreg.FieldNo(req.FieldNo))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	value, err := record.ParseValue(def.DataType, req.Value)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation,
			"field "+def.Name+" has a malformed value"))
		return
	}

	actor := requestcontext.Actor(ctx)
	eval, err := h.svc.ApplyManualOverride(ctx, entityID, def.FieldNo, value, actor, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	observability.LogAudit(ctx, h.logger, "manual_override",
		"entity_id", entityID.String(),
		"field_no", req.FieldNo,
		"actor", actor,
		"reason", req.Reason,
	)
	httputil.WriteJSON(w, http.StatusOK, toEvaluationDTO(eval))
}

type rowColumnDTO struct {
	FieldNo    int     `json:"field_no"`
	Value      any     `json:"value"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

type rowRequest struct {
	Target  string         `json:"target"`
	Columns []rowColumnDTO `json:"columns"`
}

type rowResponse struct {
	RowID string `json:"row_id"`
}

func (h *Handler) handleCreateRow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID, err := entityIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[rowRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	actor := requestcontext.Actor(ctx)
	target := fieldreg.TargetRecord(req.Target)
	values := make(map[fieldreg.Column]record.Value, len(req.Columns))
	meta := make(map[fieldreg.Column]record.Provenance, len(req.Columns))
	for _, col := range req.Columns {
		def, err := fieldreg.Get(fieldreg.FieldNo(col.FieldNo))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		if _, dup := values[def.TargetColumn]; dup {
			// Last-wins collapsing would silently drop a caller's value.
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeValidation,
				"field %d appears more than once", col.FieldNo))
			return
		}
		value, err := record.ParseValue(def.DataType, col.Value)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation,
				"field "+def.Name+" has a malformed value"))
			return
		}
		source, err := id.ParseSource(col.Source)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "unknown source"))
			return
		}
		confidence, err := id.NewConfidence(col.Confidence)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "confidence out of range"))
			return
		}
		values[def.TargetColumn] = value
		meta[def.TargetColumn] = record.Provenance{
			Source:     source,
			Confidence: confidence,
			VerifiedBy: actor,
			Timestamp:  requestcontext.Now(ctx),
			FieldNo:    def.FieldNo,
		}
	}

	rowID, err := h.svc.CreateRow(ctx, entityID, target, values, meta, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rowResponse{RowID: rowID.String()})
}

func toResponse(evals []reconcile.Evaluation) evaluationsResponse {
	out := evaluationsResponse{Evaluations: make([]evaluationDTO, len(evals))}
	for i, eval := range evals {
		out.Evaluations[i] = toEvaluationDTO(eval)
	}
	return out
}
