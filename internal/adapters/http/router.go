// Package http provides the inbound HTTP adapter: the operational router
// and server lifecycle around the application's handler chain.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/onion/internal/adapters/http/handlers"
)

// NewRouter creates the process's top-level HTTP handler. Health endpoints
// are answered by chi directly; every other request is handed to app, so
// the application's own chain decides what unknown paths return.
func NewRouter(healthHandler *handlers.HealthHandler, app http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Handle("/*", app)

	return r
}
