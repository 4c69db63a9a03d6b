// Package handler serves the audit trail read path. Writes never come
// through HTTP; they happen inside the reconcile write transaction.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"masterfile/internal/audit"
	"masterfile/internal/fieldreg"
	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
	"masterfile/pkg/platform/httputil"
)

// Reader is the read-only slice of the audit store the handler needs.
type Reader interface {
	ListByEntity(ctx context.Context, entityID id.EntityID) ([]audit.Event, error)
}

type Handler struct {
	trail  Reader
	logger *slog.Logger
}

func New(trail Reader, logger *slog.Logger) *Handler {
	return &Handler{trail: trail, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/entities/{entityID}/audit", h.handleList)
}

type eventDTO struct {
	FieldNo   int     `json:"field_no"`
	Action    string  `json:"action"`
	OldValue  *string `json:"old_value,omitempty"`
	NewValue  *string `json:"new_value,omitempty"`
	OldSource string  `json:"old_source,omitempty"`
	NewSource string  `json:"new_source"`
	Actor     string  `json:"actor"`
	Reason    string  `json:"reason,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
	Timestamp string  `json:"timestamp"`
}

type listResponse struct {
	Events []eventDTO `json:"events"`
}

func toEventDTO(event audit.Event) eventDTO {
	dto := eventDTO{
		FieldNo:   int(event.FieldNo),
		Action:    string(event.Action),
		OldSource: event.OldSource.String(),
		NewSource: event.NewSource.String(),
		Actor:     event.Actor,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		Timestamp: event.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if event.OldValue != nil {
		display := event.OldValue.Display()
		dto.OldValue = &display
	}
	if event.NewValue != nil {
		display := event.NewValue.Display()
		dto.NewValue = &display
	}
	return dto
}

// handleList returns the trail for one entity, oldest first. An optional
// field_no query parameter narrows it to a single field's history.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid entity id"))
		return
	}

	var fieldNo fieldreg.FieldNo
	if raw := r.URL.Query().Get("field_no"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "field_no must be an integer"))
			return
		}
		if !fieldreg.IsValid(fieldreg.FieldNo(n)) {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeValidation, "unknown field number %d", n))
			return
		}
		fieldNo = fieldreg.FieldNo(n)
	}

	events, err := h.trail.ListByEntity(r.Context(), entityID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "audit list failed",
			"entity_id", entityID.String(), "error", err)
		httputil.WriteError(w, err)
		return
	}

	resp := listResponse{Events: make([]eventDTO, 0, len(events))}
	for _, event := range events {
		if fieldNo != 0 && event.FieldNo != fieldNo {
			continue
		}
		resp.Events = append(resp.Events, toEventDTO(event))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
