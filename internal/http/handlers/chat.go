package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/houseoftheai/server/internal/middleware"
	"github.com/houseoftheai/server/internal/repo"
)

// ChatHandler persists and serves per-assistant chat history
type ChatHandler struct {
	chats repo.ChatRepo
	log   *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chats repo.ChatRepo, log *slog.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, log: log}
}

type saveChatRequest struct {
	AIType   string `json:"aiType"`
	Message  string `json:"message"`
	Response string `json:"response"`
}

// HandleSave handles POST /api/chats/save (protected)
func (h *ChatHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user == nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized — No valid token"})
		return
	}

	var req saveChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if req.AIType == "" || req.Message == "" || req.Response == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Missing fields. Received aiType: %s", req.AIType),
		})
		return
	}

	if err := h.chats.Save(r.Context(), req.AIType, user.ID, req.Message, req.Response); err != nil {
		if errors.Is(err, repo.ErrUnknownAssistant) {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("Invalid AI type: %s", req.AIType),
			})
			return
		}
		h.log.Error("save chat failed", slog.Any("error", err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server error while saving chat."})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Chat saved successfully."})
}

// HandleHistory handles GET /api/chats/history/{aiType} (protected)
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user == nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized — No valid token"})
		return
	}

	aiType := chi.URLParam(r, "aiType")

	history, err := h.chats.History(r.Context(), aiType, user.ID)
	if err != nil {
		if errors.Is(err, repo.ErrUnknownAssistant) {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("Invalid AI type: %s", aiType),
			})
			return
		}
		h.log.Error("fetch chat history failed", slog.Any("error", err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch chat history."})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "history": history})
}
