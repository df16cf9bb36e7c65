package server

import (
	"net/http"

	"github.com/millie-ai/millie/pkg/models"
)

type CollectiveRequest struct {
	Text string `json:"text" validate:"required"`
	Type string `json:"type"`
	Date string `json:"date"`
}

type SystemPromptRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type SystemPromptResponse struct {
	Prompt string `json:"prompt"`
}

type DailyQuotesRequest struct {
	Quotes []string `json:"quotes" validate:"required"`
}

func GetUploadHistoryHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		encodeJSON(w, http.StatusOK, appState.UploadHistory.List().Value)
	}
}

func GetAllTranscriptsHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		encodeJSON(w, http.StatusOK, appState.Transcripts.List().Value)
	}
}

// PostCollectiveHandler adds community knowledge to the vector store.
func PostCollectiveHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CollectiveRequest
		if err := decodeJSON(r, &req); err != nil {
			renderError(w, "Text required", err, http.StatusBadRequest)
			return
		}
		date, err := parseDate(req.Date)
		if err != nil {
			renderError(w, err.Error(), err, http.StatusBadRequest)
			return
		}

		if _, err := appState.Ingestor.IngestCollective(r.Context(), req.Text, req.Type, date); err != nil {
			renderError(w, "Failed to process", err, http.StatusInternalServerError)
			return
		}

		encodeJSON(w, http.StatusOK, MessageResponse{Message: "Added to collective consciousness"})
	}
}

func GetSystemPromptHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		encodeJSON(w, http.StatusOK, SystemPromptResponse{Prompt: appState.SystemPrompt.Get()})
	}
}

func PostSystemPromptHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SystemPromptRequest
		if err := decodeJSON(r, &req); err != nil {
			renderError(w, "Prompt required", err, http.StatusBadRequest)
			return
		}

		if err := appState.SystemPrompt.Put(req.Prompt); err != nil {
			renderError(w, "Failed to save system prompt", err, http.StatusInternalServerError)
			return
		}

		encodeJSON(w, http.StatusOK, MessageResponse{Message: "System prompt updated"})
	}
}

func PostDailyQuotesHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DailyQuotesRequest
		if err := decodeJSON(r, &req); err != nil {
			renderError(w, "Quotes array required", err, http.StatusBadRequest)
			return
		}

		if err := appState.Dashboard.SetDailyQuotes(req.Quotes); err != nil {
			renderError(w, "Failed to save daily quotes", err, http.StatusInternalServerError)
			return
		}

		encodeJSON(w, http.StatusOK, MessageResponse{Message: "Daily quotes updated"})
	}
}
