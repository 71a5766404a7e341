package handlers

import (
	"context"
	"net/http"
)

// HealthHandler reports process and document-store liveness
type HealthHandler struct {
	check func(context.Context) error
}

// NewHealthHandler creates a health handler. The check probes the document
// store; nil means no probe.
func NewHealthHandler(check func(context.Context) error) *HealthHandler {
	return &HealthHandler{check: check}
}

// ServeHTTP handles GET /health
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		if err := h.check(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]bool{"ok": false})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
