package server

import (
	"net/http"

	"github.com/millie-ai/millie/pkg/models"
)

type ChatRequest struct {
	Messages []models.ChatMessage `json:"messages" validate:"required"`
}

type ChatResponse struct {
	Content string `json:"content"`
}

// ChatHandler answers the last message of a conversation.
func ChatHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := decodeJSON(r, &req); err != nil {
			renderError(w, "messages array required", err, http.StatusBadRequest)
			return
		}

		content, err := appState.Assistant.Answer(r.Context(), req.Messages)
		if err != nil {
			renderError(w, "LLM error", err, http.StatusInternalServerError)
			return
		}

		encodeJSON(w, http.StatusOK, ChatResponse{Content: content})
	}
}
