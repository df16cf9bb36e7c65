package llms

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/millie-ai/millie/config"
	"github.com/millie-ai/millie/pkg/models"
)

const EmbeddingsOpenAIAPIKeyNotSetError = "MILLIE_EMBEDDINGS_OPENAI_API_KEY is not set" //nolint:gosec
const InvalidEmbeddingsClientError = "embeddings client is not set or is invalid"

// EmbeddingError is returned when the upstream model errors, times out or
// returns no vector.
type EmbeddingError struct {
	message       string
	originalError error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embeddings client error: %s (original error: %v)", e.message, e.originalError)
}

func (e *EmbeddingError) Unwrap() []error {
	if e.originalError == nil {
		return []error{models.ErrEmbedding}
	}
	return []error{models.ErrEmbedding, e.originalError}
}

func NewEmbeddingError(message string, originalError error) *EmbeddingError {
	return &EmbeddingError{message: message, originalError: originalError}
}

var _ models.EmbeddingsClient = &OpenAIEmbeddingsClient{}

func NewOpenAIEmbeddingsClient(_ context.Context, cfg *config.Config) (*OpenAIEmbeddingsClient, error) {
	if cfg.Embeddings.OpenAIAPIKey == "" {
		return nil, errors.New(EmbeddingsOpenAIAPIKeyNotSetError)
	}

	// Embedding failures are skipped by callers, so the transport does not
	// retry beyond a single attempt.
	return &OpenAIEmbeddingsClient{
		client: newOpenAIClient(cfg.Embeddings.OpenAIAPIKey, cfg.Embeddings.OpenAIEndpoint, 1),
		model:  openai.EmbeddingModel(cfg.Embeddings.Model),
	}, nil
}

type OpenAIEmbeddingsClient struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func (c *OpenAIEmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if c.client == nil {
		return nil, NewEmbeddingError(InvalidEmbeddingsClientError, nil)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	thisCtx, cancel := context.WithTimeout(ctx, OpenAIAPITimeout)
	defer cancel()

	resp, err := c.client.CreateEmbeddings(thisCtx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, NewEmbeddingError("error while creating embedding", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, NewEmbeddingError(
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Data)),
			nil,
		)
	}

	embeddings := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || len(d.Embedding) == 0 {
			return nil, NewEmbeddingError("embedding response contained no vector", nil)
		}
		embeddings[d.Index] = d.Embedding
	}
	for _, e := range embeddings {
		if e == nil {
			return nil, NewEmbeddingError("embedding response is missing an index", nil)
		}
	}

	return embeddings, nil
}

// EmbedText embeds a single text with client.
func EmbedText(ctx context.Context, client models.EmbeddingsClient, text string) ([]float32, error) {
	if client == nil {
		return nil, NewEmbeddingError(InvalidEmbeddingsClientError, nil)
	}
	embeddings, err := client.EmbedTexts(ctx, []string{text})
	if err != nil {
		var embeddingErr *EmbeddingError
		if errors.As(err, &embeddingErr) {
			return nil, err
		}
		return nil, NewEmbeddingError("error while creating embedding", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, NewEmbeddingError("embedding response contained no vector", nil)
	}
	return embeddings[0], nil
}
