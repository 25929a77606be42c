package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"gamevault-backend/internal/models"
)

// chatService is satisfied by *services.AssistantService; tests provide a
// stub.
type chatService interface {
	Chat(ctx context.Context, messages []models.ChatMessage) *models.ChatResponse
}

type AIHandler struct {
	assistant chatService
}

func NewAIHandler(assistant chatService) *AIHandler {
	return &AIHandler{assistant: assistant}
}

// Chat is the public assistant endpoint. The only request-shape rule is that
// messages must be an array; everything past that is the pipeline's problem.
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "messages must be an array", r))
		return
	}

	raw := bytes.TrimSpace(body.Messages)
	if len(raw) == 0 || raw[0] != '[' {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "messages must be an array", r))
		return
	}

	var messages []models.ChatMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "messages must be an array", r))
		return
	}

	resp := h.assistant.Chat(r.Context(), messages)
	writeJSON(w, http.StatusOK, resp)
}
