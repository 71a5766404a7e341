package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/houseoftheai/server/internal/email"
	"github.com/houseoftheai/server/internal/model"
	"github.com/houseoftheai/server/internal/repo"
)

// FeedbackHandler persists feedback and forwards it to the support inbox
type FeedbackHandler struct {
	feedback repo.FeedbackRepo
	sender   email.Sender
	toEmail  string
	log      *slog.Logger
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedback repo.FeedbackRepo, sender email.Sender, toEmail string, log *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedback: feedback,
		sender:   sender,
		toEmail:  toEmail,
		log:      log,
	}
}

type feedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// HandleSubmit handles POST /api/feedback
func (h *FeedbackHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid request body."})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		respondJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Name, email and message are required."})
		return
	}

	if _, err := h.feedback.Create(r.Context(), model.Feedback{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}); err != nil {
		h.fail(w, err)
		return
	}

	if err := h.sender.Send(r.Context(), email.FeedbackEmail(h.toEmail, req.Name, req.Email, req.Message)); err != nil {
		h.fail(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Feedback sent successfully!"})
}

func (h *FeedbackHandler) fail(w http.ResponseWriter, err error) {
	h.log.Error("feedback submission failed", slog.Any("error", err))
	respondJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Unable to send feedback."})
}
