package llms

import (
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/millie-ai/millie/internal"
)

const OpenAIAPITimeout = 90 * time.Second
const MaxOpenAIAPIRequestAttempts = 3

// newOpenAIClient builds a go-openai client whose transport retries transient
// failures. endpoint overrides the public API base URL when set.
func newOpenAIClient(apiKey, endpoint string, retryMax int) *openai.Client {
	clientConfig := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		clientConfig.BaseURL = endpoint
	}
	retryableHTTPClient := NewRetryableHTTPClient(retryMax, OpenAIAPITimeout)
	clientConfig.HTTPClient = internal.NewTracedHTTPClient(retryableHTTPClient.StandardClient().Transport)

	return openai.NewClientWithConfig(clientConfig)
}
