package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/houseoftheai/server/internal/repo"
)

// VisitorHandler tracks unique visitors and serves the running total
type VisitorHandler struct {
	visitors repo.VisitorRepo
	log      *slog.Logger
}

// NewVisitorHandler creates a new visitor handler
func NewVisitorHandler(visitors repo.VisitorRepo, log *slog.Logger) *VisitorHandler {
	return &VisitorHandler{visitors: visitors, log: log}
}

type visitorResponse struct {
	Success bool  `json:"success"`
	Count   int64 `json:"count"`
}

// HandleTrack handles GET /api/visitors. A previously unseen visitorId bumps
// the counter; a repeat or missing id just reads it.
func (h *VisitorHandler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	visitorID := r.URL.Query().Get("visitorId")

	if visitorID == "" {
		h.respondCurrentCount(w, r)
		return
	}

	seen, err := h.visitors.Exists(r.Context(), visitorID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if seen {
		h.respondCurrentCount(w, r)
		return
	}

	if err := h.visitors.Create(r.Context(), visitorID); err != nil {
		// Duplicate-key race: another request counted this visitor first.
		if errors.Is(err, repo.ErrDuplicate) {
			h.respondCurrentCount(w, r)
			return
		}
		h.fail(w, err)
		return
	}

	count, err := h.visitors.IncrementCount(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	respondJSON(w, http.StatusOK, visitorResponse{Success: true, Count: count})
}

func (h *VisitorHandler) respondCurrentCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.visitors.CurrentCount(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, visitorResponse{Success: true, Count: count})
}

func (h *VisitorHandler) fail(w http.ResponseWriter, err error) {
	h.log.Error("visitor tracking failed", slog.Any("error", err))
	respondJSON(w, http.StatusInternalServerError, visitorResponse{Success: false, Count: 0})
}
