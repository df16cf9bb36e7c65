package server

import (
	"net/http"
	"time"

	"github.com/jinzhu/copier"

	"github.com/millie-ai/millie/pkg/models"
)

type TranscriptRequest struct {
	Text string `json:"text" validate:"required"`
	Date string `json:"date"`
}

type TranscriptResponse struct {
	Message   string   `json:"message"`
	Topic     string   `json:"topic"`
	KeyPoints []string `json:"keyPoints"`
}

// SummaryResponse is the dashboard payload. Dashboard fields are omitted until
// a dashboard has been generated.
type SummaryResponse struct {
	WeeklyMeeting *models.TranscriptMeta `json:"weeklyMeeting"`
	DailyQuotes   []string               `json:"dailyQuotes,omitempty"`
	CommunityNews []models.CommunityNews `json:"communityNews,omitempty"`
	CoinOfWeek    *models.CoinOfWeek     `json:"coinOfWeek,omitempty"`
	LastUpdated   *time.Time             `json:"lastUpdated,omitempty"`
}

// PostTranscriptHandler ingests a weekly meeting transcript.
func PostTranscriptHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TranscriptRequest
		if err := decodeJSON(r, &req); err != nil {
			renderError(w, "text field required", err, http.StatusBadRequest)
			return
		}
		date, err := parseDate(req.Date)
		if err != nil {
			renderError(w, err.Error(), err, http.StatusBadRequest)
			return
		}

		meta, err := appState.Ingestor.IngestTranscript(r.Context(), req.Text, date)
		if err != nil {
			renderError(w, "Failed to ingest transcript", err, http.StatusInternalServerError)
			return
		}

		encodeJSON(w, http.StatusCreated, TranscriptResponse{
			Message:   "Transcript ingested",
			Topic:     meta.Topic,
			KeyPoints: meta.KeyPoints,
		})
	}
}

// GetWeeklyHandler returns the most recent transcript's metadata.
func GetWeeklyHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		latest, err := appState.Transcripts.Latest()
		if err != nil {
			renderError(w, "No transcripts found", err, http.StatusNotFound)
			return
		}
		encodeJSON(w, http.StatusOK, latest)
	}
}

// GetSummaryHandler returns the latest meeting together with the dashboard.
func GetSummaryHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp SummaryResponse

		if latest, err := appState.Transcripts.Latest(); err == nil {
			resp.WeeklyMeeting = latest
		}

		if dashboard := appState.Dashboard.Get().Value; dashboard != nil {
			if err := copier.Copy(&resp, dashboard); err != nil {
				renderError(w, "Failed to read dashboard", err, http.StatusInternalServerError)
				return
			}
		}

		encodeJSON(w, http.StatusOK, resp)
	}
}
