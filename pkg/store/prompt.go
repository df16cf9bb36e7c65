package store

import (
	"strings"
	"time"

	"github.com/millie-ai/millie/pkg/models"
)

const SystemPromptFile = "system-prompt.json"

var _ models.SystemPromptStore = &SystemPromptFileStore{}

type systemPromptRecord struct {
	Prompt    string    `json:"prompt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SystemPromptFileStore persists an override of the assistant persona prompt.
type SystemPromptFileStore struct {
	path     string
	fallback string
	now      func() time.Time
}

// NewSystemPromptFileStore returns a store that answers fallback until a
// prompt has been saved.
func NewSystemPromptFileStore(path, fallback string) *SystemPromptFileStore {
	return &SystemPromptFileStore{path: path, fallback: fallback, now: time.Now}
}

func (s *SystemPromptFileStore) Get() string {
	r := ReadJSON(s.path, systemPromptRecord{})
	logRead(SystemPromptFile, r)
	if strings.TrimSpace(r.Value.Prompt) == "" {
		return s.fallback
	}
	return r.Value.Prompt
}

func (s *SystemPromptFileStore) Put(prompt string) error {
	return WriteJSON(s.path, systemPromptRecord{Prompt: prompt, UpdatedAt: s.now().UTC()})
}
