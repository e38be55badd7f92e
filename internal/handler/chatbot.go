package handler

import (
	"log/slog"
	"net/http"

	"docvault/internal/domain/services"
	"docvault/internal/httputil"
)

// ChatbotHandler serves the document assistant
type ChatbotHandler struct {
	chatbot services.ChatbotService
	logger  *slog.Logger
}

func NewChatbotHandler(chatbot services.ChatbotService, logger *slog.Logger) *ChatbotHandler {
	return &ChatbotHandler{chatbot: chatbot, logger: logger}
}

// Chat answers a message with the chosen model
// POST /api/chatbot/chat and POST /api/chatbot/query
func (h *ChatbotHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req services.ChatRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.chatbot.Chat(r.Context(), user, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// Models lists the model catalog
// GET /api/chatbot/models
func (h *ChatbotHandler) Models(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"models": h.chatbot.Models()})
}
