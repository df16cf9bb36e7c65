package server

import (
	"fmt"
	"net/http"
	"time"

	httpLogger "github.com/chi-middleware/logrus-logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/millie-ai/millie/pkg/models"
)

const (
	RouterName        = "millie"
	ReadHeaderTimeout = 5 * time.Second
	MaxRequestBytes   = 10 << 20
)

// Create creates a new HTTP server with the given app state
func Create(appState *models.AppState) *http.Server {
	router := setupRouter(appState)
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", appState.Config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
}

func setupRouter(appState *models.AppState) *chi.Mux {
	router := chi.NewRouter()
	router.Use(httpLogger.Logger("router", log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(SendVersion)
	router.Use(otelchi.Middleware(
		RouterName,
		otelchi.WithChiRoutes(router),
		otelchi.WithRequestMethodInSpanName(true),
	))
	router.Use(middleware.Heartbeat("/healthz"))
	router.Use(middleware.RequestSize(MaxRequestBytes))

	router.Route("/api", func(r chi.Router) {
		r.Post("/chat", ChatHandler(appState))

		r.Post("/transcripts", PostTranscriptHandler(appState))
		r.Get("/weekly", GetWeeklyHandler(appState))
		r.Get("/summary", GetSummaryHandler(appState))

		r.Route("/admin", func(r chi.Router) {
			r.Get("/upload-history", GetUploadHistoryHandler(appState))
			r.Get("/transcripts-all", GetAllTranscriptsHandler(appState))
			r.Post("/collective", PostCollectiveHandler(appState))
			r.Get("/system-prompt", GetSystemPromptHandler(appState))
			r.Post("/system-prompt", PostSystemPromptHandler(appState))
			r.Post("/daily-quotes", PostDailyQuotesHandler(appState))
		})
	})

	return router
}
