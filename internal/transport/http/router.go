// Package httptransport assembles the HTTP surface: middleware chain, module
// handlers, health, and metrics. Business logic stays in the per-module
// services; this package only routes.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	auditHandler "masterfile/internal/audit/handler"
	evidenceHandler "masterfile/internal/evidence/handler"
	"masterfile/internal/platform/middleware"
	reconcileHandler "masterfile/internal/reconcile/handler"
	validateHandler "masterfile/internal/validate/handler"
)

// Handlers collects the per-module handlers the router mounts.
type Handlers struct {
	Reconcile *reconcileHandler.Handler
	Evidence  *evidenceHandler.Handler
	Audit     *auditHandler.Handler
	Validate  *validateHandler.Handler
}

// NewRouter builds the full router. Reads are open; every write route sits
// behind bearer-token actor resolution because each write records who made it.
func NewRouter(h Handlers, resolver *middleware.ActorResolver, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireActor(resolver, logger))
		h.Reconcile.Register(r)
		h.Evidence.Register(r)
	})

	r.Group(func(r chi.Router) {
		h.Audit.Register(r)
		h.Validate.Register(r)
	})

	return r
}
