package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		RequestID(),
		Recovery(h.logger),
		Logging(h.logger),
		Metrics(),
	)

	// Compilation
	mux.Handle("POST /api/v1/compile", chain(http.HandlerFunc(h.Compile)))
	mux.Handle("POST /api/v1/upload", chain(http.HandlerFunc(h.Upload)))
	mux.Handle("POST /api/v1/validate", chain(http.HandlerFunc(h.Validate)))
	mux.Handle("POST /api/v1/resolve", chain(http.HandlerFunc(h.Resolve)))
	mux.Handle("GET /api/v1/example", chain(http.HandlerFunc(h.Example)))

	// Async jobs
	mux.Handle("POST /api/v1/jobs", chain(http.HandlerFunc(h.CreateJob)))
}
