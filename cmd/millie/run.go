package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/millie-ai/millie/config"
	"github.com/millie-ai/millie/pkg/llms"
	"github.com/millie-ai/millie/pkg/models"
	"github.com/millie-ai/millie/pkg/rag"
	"github.com/millie-ai/millie/pkg/server"
	"github.com/millie-ai/millie/pkg/store"
	"github.com/millie-ai/millie/pkg/tasks"
	"github.com/millie-ai/millie/pkg/vectorstore"
	"github.com/millie-ai/millie/pkg/websearch"
)

const ShutdownTimeout = 30 * time.Second

// run is the entrypoint for the millie server
func run() {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error configuring millie: %s", err)
	}

	handleCLIOptions(cfg)

	log.Infof("Starting millie server version %s", config.VersionString)

	config.SetLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := setupTracing(ctx, cfg.Tracing)
	if err != nil {
		log.Fatalf("Error configuring tracing: %s", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Errorf("Error flushing traces: %v", err)
		}
	}()

	appState, err := NewAppState(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeAppState(appState)

	srv := server.Create(appState)

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Error shutting down server: %v", err)
		}
	}()

	log.Infof("Listening on: %s", srv.Addr)
	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// NewAppState wires every component from cfg. The vector snapshot is loaded
// before it returns, so no request can observe a half-loaded store.
func NewAppState(ctx context.Context, cfg *config.Config) (*models.AppState, error) {
	llmClient, err := llms.NewLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	embeddings, err := llms.NewOpenAIEmbeddingsClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dir := cfg.Store.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, store.NewStorageError("failed to create storage directory", err)
	}
	archive, err := store.NewBoltArchive(filepath.Join(dir, store.TranscriptArchiveFile))
	if err != nil {
		return nil, err
	}

	vectors := vectorstore.New(filepath.Join(dir, vectorstore.SnapshotFile), embeddings)
	vectors.Load()

	appState := &models.AppState{
		Config:           cfg,
		LLMClient:        llmClient,
		EmbeddingsClient: embeddings,
		VectorStore:      vectors,
		Transcripts:      store.NewTranscriptFileStore(filepath.Join(dir, store.TranscriptsFile)),
		Dashboard:        store.NewDashboardFileStore(filepath.Join(dir, store.DashboardFile)),
		UploadHistory:    store.NewUploadHistoryFileStore(filepath.Join(dir, store.UploadHistoryFile)),
		SystemPrompt: store.NewSystemPromptFileStore(
			filepath.Join(dir, store.SystemPromptFile),
			rag.DefaultSystemPrompt,
		),
		Archive:     archive,
		WebSearcher: websearch.NewClient(cfg.WebSearch),
	}

	var writer models.KnowledgeWriter
	if cfg.RAG.AsyncWriteback {
		if err := tasks.RunTaskRouter(ctx, appState); err != nil {
			_ = archive.Close()
			return nil, fmt.Errorf("failed to start task router: %w", err)
		}
		writer = tasks.NewKnowledgePublisher(appState.TaskPublisher, "chat")
		log.Info("Q&A write-back runs on the task queue")
	}

	appState.Assistant = rag.NewOrchestrator(appState, writer)
	appState.Ingestor = rag.NewIngestor(appState)

	log.Infof("Knowledge base ready with %d records in %s", vectors.Len(), dir)

	return appState, nil
}

func closeAppState(appState *models.AppState) {
	if appState.TaskRouter != nil {
		if err := appState.TaskRouter.Close(); err != nil {
			log.Errorf("Error closing task router: %v", err)
		}
	}
	if appState.Archive != nil {
		if err := appState.Archive.Close(); err != nil {
			log.Errorf("Error closing transcript archive: %v", err)
		}
	}
}

// handleCLIOptions handles CLI options that don't require the server to run
func handleCLIOptions(cfg *config.Config) {
	if showVersion {
		fmt.Println(config.VersionString)
		os.Exit(0)
	}
	if dumpConfig {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			log.Fatalf("Error dumping config: %s", err)
		}
		fmt.Print(string(out))
		os.Exit(0)
	}
}
