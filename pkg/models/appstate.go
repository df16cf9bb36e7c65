package models

import (
	"github.com/millie-ai/millie/config"
)

// AppState is a struct that holds the state of the application
// Use cmd.NewAppState to create a new instance
type AppState struct {
	Config           *config.Config
	LLMClient        LLM
	EmbeddingsClient EmbeddingsClient
	VectorStore      VectorStore
	Transcripts      TranscriptStore
	Dashboard        DashboardStore
	UploadHistory    UploadHistoryStore
	SystemPrompt     SystemPromptStore
	Archive          TranscriptArchive
	WebSearcher      WebSearcher
	Assistant        Assistant
	Ingestor         Ingestor
	TaskRouter       TaskRouter
	TaskPublisher    TaskPublisher
}
