// Package handler serves module validation over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"masterfile/internal/validate"
	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
	"masterfile/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/validate-mocks.go -package=mocks Service

// Service is the slice of the validate service the handler needs.
type Service interface {
	Validate(ctx context.Context, entityID id.EntityID, module validate.Module) (validate.Result, error)
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/modules", h.handleListModules)
	r.Get("/entities/{entityID}/modules/{module}/validation", h.handleValidate)
	r.Get("/entities/{entityID}/validation", h.handleValidateAll)
}

type modulesResponse struct {
	Modules []validate.Module `json:"modules"`
}

func (h *Handler) handleListModules(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, modulesResponse{Modules: validate.Modules()})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid entity id"))
		return
	}

	result, err := h.svc.Validate(r.Context(), entityID, validate.Module(chi.URLParam(r, "module")))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

type validateAllResponse struct {
	Results []validate.Result `json:"results"`
}

// handleValidateAll runs every known module for one entity in one call.
func (h *Handler) handleValidateAll(w http.ResponseWriter, r *http.Request) {
	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid entity id"))
		return
	}

	resp := validateAllResponse{Results: make([]validate.Result, 0, len(validate.Modules()))}
	for _, module := range validate.Modules() {
		result, err := h.svc.Validate(r.Context(), entityID, module)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "module validation failed",
				"entity_id", entityID.String(), "module", string(module), "error", err)
			httputil.WriteError(w, err)
			return
		}
		resp.Results = append(resp.Results, result)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
