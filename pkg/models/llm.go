package models

import (
	"context"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn of a conversation as exchanged with the chat UI.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type LLM interface {
	// Complete runs one chat completion over the given messages and returns
	// the assistant's reply.
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
	// GetTokenCount returns the number of tokens in the given text
	GetTokenCount(text string) (int, error)
}

type EmbeddingsClient interface {
	// EmbedTexts embeds the given texts. The result has one vector per text,
	// in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
