package testutils

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/millie-ai/millie/pkg/models"
)

// FakeEmbeddingWidth is the length of every vector produced by FakeEmbedder.
const FakeEmbeddingWidth = 37

var _ models.EmbeddingsClient = &FakeEmbedder{}

// FakeEmbedder produces deterministic bag-of-characters vectors: one slot per
// ASCII letter, one per digit, and one for everything else. Texts sharing
// characters are therefore similar.
type FakeEmbedder struct {
	// Vectors overrides the computed vector for exact texts
	Vectors map[string][]float32
	// Fail makes EmbedTexts fail for any text it returns true for
	Fail func(text string) bool
	Err  error

	mu    sync.Mutex
	calls []string
}

func (f *FakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, texts...)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if f.Fail != nil && f.Fail(text) {
			return nil, models.ErrEmbedding
		}
		if v, ok := f.Vectors[text]; ok {
			out[i] = v
			continue
		}
		out[i] = BagOfCharacters(text)
	}
	return out, nil
}

// Calls returns every text embedded so far.
func (f *FakeEmbedder) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func BagOfCharacters(text string) []float32 {
	v := make([]float32, FakeEmbeddingWidth)
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z':
			v[r-'a']++
		case r >= '0' && r <= '9':
			v[26+r-'0']++
		case unicode.IsSpace(r):
		default:
			v[36]++
		}
	}
	return v
}

var _ models.LLM = &FakeLLM{}

// FakeLLM answers from Responses in order, repeating the last one, or from
// Respond when set. Every prompt it receives is recorded.
type FakeLLM struct {
	Responses []string
	Respond   func(messages []models.ChatMessage) (string, error)
	Err       error

	mu      sync.Mutex
	prompts [][]models.ChatMessage
}

func (f *FakeLLM) Complete(_ context.Context, messages []models.ChatMessage) (string, error) {
	f.mu.Lock()
	n := len(f.prompts)
	f.prompts = append(f.prompts, append([]models.ChatMessage(nil), messages...))
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	if f.Respond != nil {
		return f.Respond(messages)
	}
	if len(f.Responses) == 0 {
		return "", nil
	}
	if n >= len(f.Responses) {
		n = len(f.Responses) - 1
	}
	return f.Responses[n], nil
}

func (f *FakeLLM) GetTokenCount(text string) (int, error) {
	return len(text) / 4, nil
}

// Prompts returns the message lists passed to Complete, oldest first.
func (f *FakeLLM) Prompts() [][]models.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]models.ChatMessage(nil), f.prompts...)
}

var _ models.WebSearcher = &FakeSearcher{}

type FakeSearcher struct {
	Result string

	mu      sync.Mutex
	queries []string
}

func (f *FakeSearcher) Search(_ context.Context, query string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.Result
}

func (f *FakeSearcher) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}
