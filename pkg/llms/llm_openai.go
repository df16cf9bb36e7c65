package llms

import (
	"context"
	"errors"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"

	"github.com/millie-ai/millie/config"
	"github.com/millie-ai/millie/pkg/models"
)

const OpenAIAPIKeyNotSetError = "MILLIE_OPENAI_API_KEY is not set" //nolint:gosec
const tiktokenEncoding = "cl100k_base"

var _ models.LLM = &OpenAILLM{}

func NewOpenAILLM(_ context.Context, cfg *config.Config) (*OpenAILLM, error) {
	if cfg.LLM.OpenAIAPIKey == "" {
		return nil, errors.New(OpenAIAPIKeyNotSetError)
	}
	if cfg.LLM.Model == "" {
		return nil, NewLLMError(InvalidLLMModelError, nil)
	}

	return &OpenAILLM{
		client: newOpenAIClient(
			cfg.LLM.OpenAIAPIKey,
			cfg.LLM.OpenAIEndpoint,
			MaxOpenAIAPIRequestAttempts,
		),
		model: cfg.LLM.Model,
	}, nil
}

type OpenAILLM struct {
	client *openai.Client
	model  string

	tkmOnce sync.Once
	tkm     *tiktoken.Tiktoken
}

func (o *OpenAILLM) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	// If the LLM is not initialized, return an error
	if o.client == nil {
		return "", NewLLMError(InvalidLLMModelError, nil)
	}

	thisCtx, cancel := context.WithTimeout(ctx, OpenAIAPITimeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: DefaultTemperature,
	}

	resp, err := o.client.CreateChatCompletion(thisCtx, req)
	if err != nil {
		return "", NewLLMError("error while creating chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", NewLLMError("chat completion returned no choices", nil)
	}

	return resp.Choices[0].Message.Content, nil
}

// GetTokenCount returns the number of tokens in the text. The encoding is
// fetched on first use; if that fails a four-characters-per-token estimate is
// returned instead.
func (o *OpenAILLM) GetTokenCount(text string) (int, error) {
	o.tkmOnce.Do(func() {
		tkm, err := tiktoken.GetEncoding(tiktokenEncoding)
		if err != nil {
			log.Warnf("unable to load tiktoken encoding, estimating token counts: %v", err)
			return
		}
		o.tkm = tkm
	})
	if o.tkm == nil {
		return len(text) / 4, nil
	}
	return len(o.tkm.Encode(text, nil, nil)), nil
}

func toOpenAIMessages(messages []models.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		var role string
		switch m.Role {
		case models.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case models.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		default:
			role = openai.ChatMessageRoleUser
		}
		out[i] = openai.ChatCompletionMessage{Role: role, Content: m.Content}
	}
	return out
}
