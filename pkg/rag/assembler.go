package rag

import (
	"context"
	"strings"
	"time"

	"github.com/millie-ai/millie/internal"
	"github.com/millie-ai/millie/pkg/models"
)

const (
	hitSeparator     = "\n---\n"
	webResultsHeader = "\n---\nWeb search results:\n"
	displayDate      = "Jan 2, 2006"
)

var log = internal.GetLogger()

// TriggerPolicy decides whether a question needs live web results.
type TriggerPolicy interface {
	ShouldSearch(question string) bool
}

// KeywordTrigger fires when the lowercased question contains any keyword as a
// raw substring, so "nowhere" matches "now".
type KeywordTrigger struct {
	Keywords []string
}

func NewKeywordTrigger(keywords []string) KeywordTrigger {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return KeywordTrigger{Keywords: lowered}
}

func (k KeywordTrigger) ShouldSearch(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range k.Keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// ContextAssembler gathers the facts handed to the model alongside a
// question. Every source is optional: a failing source is logged and left out.
type ContextAssembler struct {
	vectors     models.VectorStore
	transcripts models.TranscriptStore
	searcher    models.WebSearcher
	trigger     TriggerPolicy
	topK        int
	now         func() time.Time
}

func NewContextAssembler(appState *models.AppState) *ContextAssembler {
	return &ContextAssembler{
		vectors:     appState.VectorStore,
		transcripts: appState.Transcripts,
		searcher:    appState.WebSearcher,
		trigger:     NewKeywordTrigger(appState.Config.RAG.TriggerKeywords),
		topK:        appState.Config.RAG.TopK,
		now:         time.Now,
	}
}

// WithTrigger replaces the web search trigger policy.
func (a *ContextAssembler) WithTrigger(trigger TriggerPolicy) *ContextAssembler {
	a.trigger = trigger
	return a
}

// Assemble returns the recency header, the nearest stored texts and, when the
// trigger fires, live web results, in that order.
func (a *ContextAssembler) Assemble(ctx context.Context, question string) string {
	var sb strings.Builder

	sb.WriteString(a.recencyHeader())
	sb.WriteString(strings.Join(a.vectorHits(ctx, question), hitSeparator))

	if results := a.webResults(ctx, question); results != "" {
		sb.WriteString(webResultsHeader)
		sb.WriteString(results)
	}

	return sb.String()
}

func (a *ContextAssembler) vectorHits(ctx context.Context, question string) []string {
	if a.vectors == nil {
		return nil
	}
	hits, err := a.vectors.Search(ctx, question, a.topK)
	if err != nil {
		log.Warnf("vector search failed: %v", err)
		return nil
	}
	return hits
}

func (a *ContextAssembler) recencyHeader() string {
	if a.transcripts == nil {
		return ""
	}
	r := a.transcripts.List()
	if len(r.Value) == 0 {
		return ""
	}

	latest := r.Value[0]
	_, currentWeek := a.now().ISOWeek()

	header, err := internal.ParsePrompt(recencyHeaderTemplate, recencyHeaderData{
		LatestDate:  latest.Date.Format(displayDate),
		LatestWeek:  latest.WeekNumber,
		CurrentWeek: currentWeek,
		Count:       len(r.Value),
	})
	if err != nil {
		log.Warnf("failed to render transcript context: %v", err)
		return ""
	}
	return header
}

func (a *ContextAssembler) webResults(ctx context.Context, question string) string {
	if a.searcher == nil || a.trigger == nil || !a.trigger.ShouldSearch(question) {
		return ""
	}
	return a.searcher.Search(ctx, question)
}
