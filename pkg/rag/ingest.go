package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/millie-ai/millie/internal"
	"github.com/millie-ai/millie/pkg/chunker"
	"github.com/millie-ai/millie/pkg/llms"
	"github.com/millie-ai/millie/pkg/models"
)

const DefaultTopic = "Weekly Meeting"

var _ models.Ingestor = &TranscriptIngestor{}

// TranscriptIngestor turns raw text into vector records and, for meeting
// transcripts, into summary metadata and dashboard content.
type TranscriptIngestor struct {
	appState *models.AppState
	now      func() time.Time
}

func NewIngestor(appState *models.AppState) *TranscriptIngestor {
	return &TranscriptIngestor{appState: appState, now: time.Now}
}

// IngestTranscript stores a weekly meeting transcript. Only archive and
// storage failures are returned; embedding and summarization failures degrade
// the result instead.
func (i *TranscriptIngestor) IngestTranscript(
	ctx context.Context,
	text string,
	date time.Time,
) (_ *models.TranscriptMeta, err error) {
	ctx, span := tracer.Start(ctx, "rag.IngestTranscript", trace.WithAttributes(
		attribute.Int("transcript.chars", len(text)),
	))
	defer func() { endSpan(span, err) }()

	if text == "" {
		return nil, models.NewBadRequestError("text field required")
	}
	if date.IsZero() {
		date = i.now()
	}
	cfg := i.appState.Config.RAG

	fileName := fmt.Sprintf("%d.txt", i.now().UnixMilli())
	if i.appState.Archive != nil {
		if err := i.appState.Archive.Put(ctx, fileName, text); err != nil {
			return nil, fmt.Errorf("failed to archive transcript: %w", err)
		}
	}

	records := i.embedChunks(ctx, chunker.Chunk(text, cfg.ChunkSize))

	summaryText, err := internal.ParsePrompt(summaryRecordTemplate, summaryRecordData{
		Date:    date.Format(time.RFC3339),
		Excerpt: internal.TruncateRunes(text, cfg.SummaryExcerptChars),
	})
	if err != nil {
		return nil, err
	}
	if embedding, err := llms.EmbedText(ctx, i.appState.EmbeddingsClient, summaryText); err != nil {
		log.Warnf("transcript summary embedding failed: %v", err)
	} else {
		records = append(records, models.VectorRecord{Text: summaryText, Embedding: embedding})
	}

	if err := i.appState.VectorStore.Commit(records...); err != nil {
		return nil, fmt.Errorf("failed to save transcript vectors: %w", err)
	}

	input := internal.TruncateRunes(text, cfg.SummarizerInputChars)
	summary := i.summarize(ctx, input)

	_, week := date.ISOWeek()
	meta := models.TranscriptMeta{
		Date:           date,
		WeekNumber:     week,
		Topic:          summary.Topic,
		KeyPoints:      summary.KeyPoints,
		MentionedCoins: summary.MentionedCoins,
		ActionItems:    summary.ActionItems,
		File:           fileName,
		UploadedAt:     i.now().UTC(),
	}
	if err := i.appState.Transcripts.Append(meta); err != nil {
		return nil, fmt.Errorf("failed to save transcript metadata: %w", err)
	}

	i.recordUpload(models.UploadHistoryEntry{
		Type:  models.UploadTypeTranscript,
		Title: fmt.Sprintf("Week %d - %s", week, summary.Topic),
		Metadata: map[string]any{
			"date":           date.Format(time.RFC3339),
			"weekNumber":     week,
			"keyPointsCount": len(summary.KeyPoints),
			"mentionedCoins": summary.MentionedCoins,
		},
	})

	i.generateDashboard(ctx, input)

	log.Infof("ingested transcript %s: week %d, %d records", fileName, week, len(records))

	return &meta, nil
}

// IngestCollective stores community knowledge under a labelled prefix and
// returns the number of records added.
func (i *TranscriptIngestor) IngestCollective(
	ctx context.Context,
	text, kind string,
	date time.Time,
) (int, error) {
	if text == "" {
		return 0, models.NewBadRequestError("Text required")
	}
	if date.IsZero() {
		date = i.now()
	}

	prefix, err := internal.ParsePrompt(collectivePrefixTemplate, collectivePrefixData{
		Kind: kind,
		Date: date.Format(displayDate),
	})
	if err != nil {
		return 0, err
	}

	records := i.embedChunks(ctx, chunker.Chunk(prefix+text, i.appState.Config.RAG.ChunkSize))
	if err := i.appState.VectorStore.Commit(records...); err != nil {
		return 0, fmt.Errorf("failed to save collective vectors: %w", err)
	}

	if kind == "" {
		kind = "general"
	}
	i.recordUpload(models.UploadHistoryEntry{
		Type:  models.UploadTypeCollective,
		Title: "Collective Consciousness - " + kind,
		Metadata: map[string]any{
			"type":       kind,
			"date":       date.Format(time.RFC3339),
			"textLength": len([]rune(text)),
		},
	})

	return len(records), nil
}

// IngestDirectory embeds every .txt and .md file in dir and returns the
// number of records added.
func (i *TranscriptIngestor) IngestDirectory(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var records []models.VectorRecord
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".txt", ".md":
		default:
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		chunks := chunker.Chunk(string(content), i.appState.Config.RAG.ChunkSize)
		log.Infof("%s: %d chunks", entry.Name(), len(chunks))

		embedded := i.embedChunks(ctx, chunks)
		records = append(records, embedded...)

		i.recordUpload(models.UploadHistoryEntry{
			Type:  models.UploadTypeDocument,
			Title: entry.Name(),
			Metadata: map[string]any{
				"chunks": len(embedded),
			},
		})
	}

	if err := i.appState.VectorStore.Commit(records...); err != nil {
		return 0, fmt.Errorf("failed to save document vectors: %w", err)
	}

	return len(records), nil
}

// embedChunks embeds each chunk on its own so that one failure only loses
// that chunk.
func (i *TranscriptIngestor) embedChunks(ctx context.Context, chunks []string) []models.VectorRecord {
	records := make([]models.VectorRecord, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := llms.EmbedText(ctx, i.appState.EmbeddingsClient, chunk)
		if err != nil {
			log.Warnf("chunk embedding failed, skipping: %v", err)
			continue
		}
		records = append(records, models.VectorRecord{Text: chunk, Embedding: embedding})
	}
	return records
}

func (i *TranscriptIngestor) summarize(ctx context.Context, input string) models.TranscriptSummary {
	summary := models.TranscriptSummary{
		Topic:          DefaultTopic,
		KeyPoints:      []string{},
		MentionedCoins: []string{},
		ActionItems:    []string{},
	}

	if tokens, err := i.appState.LLMClient.GetTokenCount(input); err == nil {
		log.Debugf("summarizing transcript (%d tokens)", tokens)
	}

	reply, err := i.appState.LLMClient.Complete(ctx, []models.ChatMessage{
		{Role: models.RoleSystem, Content: transcriptSummaryPrompt},
		{Role: models.RoleUser, Content: input},
	})
	if err != nil {
		log.Warnf("transcript summarization failed: %v", err)
		return summary
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &raw); err != nil {
		log.Warnf("transcript summary was not valid JSON: %v", err)
		return summary
	}

	var topic string
	if json.Unmarshal(raw["topic"], &topic) == nil && topic != "" {
		summary.Topic = topic
	}
	if v, ok := stringList(raw["keyPoints"]); ok {
		summary.KeyPoints = v
	}
	if v, ok := stringList(raw["mentionedCoins"]); ok {
		summary.MentionedCoins = v
	}
	if v, ok := stringList(raw["actionItems"]); ok {
		summary.ActionItems = v
	}

	return summary
}

// generateDashboard replaces the dashboard only when the reply carries all
// three sections.
func (i *TranscriptIngestor) generateDashboard(ctx context.Context, input string) {
	if i.appState.Dashboard == nil {
		return
	}

	reply, err := i.appState.LLMClient.Complete(ctx, []models.ChatMessage{
		{Role: models.RoleSystem, Content: dashboardPrompt},
		{Role: models.RoleUser, Content: input},
	})
	if err != nil {
		log.Warnf("dashboard generation failed: %v", err)
		return
	}

	var data models.DashboardData
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &data); err != nil {
		log.Warnf("dashboard reply was not valid JSON: %v", err)
		return
	}
	if !data.Complete() {
		log.Warn("dashboard reply was incomplete, keeping the previous dashboard")
		return
	}

	if err := i.appState.Dashboard.Put(&data); err != nil {
		log.Errorf("failed to save dashboard: %v", err)
	}
}

func (i *TranscriptIngestor) recordUpload(entry models.UploadHistoryEntry) {
	if i.appState.UploadHistory == nil {
		return
	}
	if _, err := i.appState.UploadHistory.Add(entry); err != nil {
		log.Warnf("failed to record upload history: %v", err)
	}
}

// stripCodeFence removes a surrounding markdown code fence, if any.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// stringList decodes a JSON array, keeping string items as they are and
// rendering any other item as compact JSON.
func stringList(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, item); err != nil {
			return nil, false
		}
		out = append(out, buf.String())
	}
	return out, true
}
