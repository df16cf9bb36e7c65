package llms

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"

	"github.com/millie-ai/millie/config"
	"github.com/millie-ai/millie/pkg/models"
)

const AnthropicAPITimeout = 60 * time.Second
const AnthropicAPIKeyNotSetError = "MILLIE_ANTHROPIC_API_KEY is not set" //nolint:gosec

var _ models.LLM = &AnthropicLLM{}

func NewAnthropicLLM(_ context.Context, cfg *config.Config) (*AnthropicLLM, error) {
	apiKey := cfg.LLM.AnthropicAPIKey
	if apiKey == "" {
		return nil, errors.New(AnthropicAPIKeyNotSetError)
	}
	if cfg.LLM.Model == "" {
		return nil, NewLLMError(InvalidLLMModelError, nil)
	}

	client, err := anthropic.New(
		anthropic.WithModel(cfg.LLM.Model),
		anthropic.WithToken(apiKey),
	)
	if err != nil {
		return nil, err
	}

	return &AnthropicLLM{client: client}, nil
}

type AnthropicLLM struct {
	client *anthropic.LLM
}

func (a *AnthropicLLM) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	// If the LLM is not initialized, return an error
	if a.client == nil {
		return "", NewLLMError(InvalidLLMModelError, nil)
	}

	thisCtx, cancel := context.WithTimeout(ctx, AnthropicAPITimeout)
	defer cancel()

	resp, err := a.client.GenerateContent(
		thisCtx,
		toMessageContent(messages),
		llms.WithTemperature(DefaultTemperature),
	)
	if err != nil {
		return "", NewLLMError("error while creating chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", NewLLMError("chat completion returned no choices", nil)
	}

	return resp.Choices[0].Content, nil
}

// GetTokenCount returns a four-characters-per-token estimate. Anthropic does
// not publish a local tokenizer.
func (a *AnthropicLLM) GetTokenCount(text string) (int, error) {
	return len(text) / 4, nil
}

// toMessageContent folds every system message into one leading system turn,
// separated by blank lines. The client concatenates system parts as-is.
func toMessageContent(messages []models.ChatMessage) []llms.MessageContent {
	var system []string
	out := make([]llms.MessageContent, 0, len(messages)+1)
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			system = append(system, m.Content)
		case models.RoleAssistant:
			out = append(out, llms.TextParts(llms.ChatMessageTypeAI, m.Content))
		default:
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		}
	}
	if len(system) == 0 {
		return out
	}
	return append(
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeSystem, strings.Join(system, "\n\n"))},
		out...,
	)
}
