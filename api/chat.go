package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jackgladowsky/tierjobs/internal/chat"
	"github.com/jackgladowsky/tierjobs/pkg/models"
)

type ChatHandler struct {
	service *chat.Service
}

func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// Post serves POST /api/chat. Model failures come back as a degraded 200
// reply, never a 5xx; only malformed input earns a 400.
func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	reply, err := h.service.Respond(r.Context(), &req)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, reply, http.StatusOK)
}

// History serves GET /api/chat/history/{sessionId} in chronological order.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	messages, err := h.service.History(r.Context(), sessionID, queryInt(r, "limit"))
	if err != nil {
		logger.Error("chat history", "session_id", sessionID, "err", err)
		writeError(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	writeJSON(w, messages, http.StatusOK)
}

// Suggestions serves GET /api/chat/suggestions.
func (h *ChatHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"suggestions": h.service.Suggestions()}, http.StatusOK)
}
