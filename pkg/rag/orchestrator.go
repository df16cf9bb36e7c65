package rag

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/millie-ai/millie/internal"
	"github.com/millie-ai/millie/pkg/llms"
	"github.com/millie-ai/millie/pkg/models"
)

var _ models.Assistant = &Orchestrator{}

// Orchestrator answers chat turns: it assembles context, makes one completion
// call and hands the resulting Q&A pair to a KnowledgeWriter.
type Orchestrator struct {
	llm       models.LLM
	assembler *ContextAssembler
	prompts   models.SystemPromptStore
	writer    models.KnowledgeWriter
}

// NewOrchestrator returns an Orchestrator that writes Q&A pairs back through
// writer. A nil writer falls back to the vector store itself.
func NewOrchestrator(appState *models.AppState, writer models.KnowledgeWriter) *Orchestrator {
	if writer == nil {
		writer = appState.VectorStore
	}
	return &Orchestrator{
		llm:       appState.LLMClient,
		assembler: NewContextAssembler(appState),
		prompts:   appState.SystemPrompt,
		writer:    writer,
	}
}

func (o *Orchestrator) Assembler() *ContextAssembler {
	return o.assembler
}

func (o *Orchestrator) Answer(ctx context.Context, history []models.ChatMessage) (answer string, err error) {
	ctx, span := tracer.Start(ctx, "rag.Answer", trace.WithAttributes(
		attribute.Int("chat.messages", len(history)),
	))
	defer func() { endSpan(span, err) }()

	question := lastQuestion(history)
	facts := o.assembler.Assemble(ctx, question)

	prompt, err := o.buildPrompt(facts, history)
	if err != nil {
		return "", err
	}

	answer, err = o.llm.Complete(ctx, prompt)
	if err != nil {
		var llmErr *llms.LLMError
		if errors.As(err, &llmErr) {
			return "", err
		}
		return "", llms.NewLLMError("chat completion failed", err)
	}

	o.remember(ctx, question, answer)

	return answer, nil
}

func (o *Orchestrator) buildPrompt(facts string, history []models.ChatMessage) ([]models.ChatMessage, error) {
	persona := DefaultSystemPrompt
	if o.prompts != nil {
		persona = o.prompts.Get()
	}

	factsPrompt, err := internal.ParsePrompt(factsPromptTemplate, factsPromptData{Context: facts})
	if err != nil {
		return nil, err
	}

	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages,
		models.ChatMessage{Role: models.RoleSystem, Content: persona},
		models.ChatMessage{Role: models.RoleSystem, Content: factsPrompt},
	)
	return append(messages, history...), nil
}

// remember stores the exchange for future retrieval. Failures never reach the
// caller, and the write outlives a cancelled request.
func (o *Orchestrator) remember(ctx context.Context, question, answer string) {
	if o.writer == nil {
		return
	}
	if err := o.writer.Remember(context.WithoutCancel(ctx), QAText(question, answer)); err != nil {
		log.Warnf("failed to save Q&A pair: %v", err)
	}
}

// QAText is the text stored for an answered question.
func QAText(question, answer string) string {
	return "Q: " + question + "\nA: " + answer
}

func lastQuestion(history []models.ChatMessage) string {
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1].Content
}
