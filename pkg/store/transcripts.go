package store

import (
	"sort"
	"sync"

	"github.com/millie-ai/millie/pkg/models"
)

const TranscriptsFile = "transcripts.json"

var _ models.TranscriptStore = &TranscriptFileStore{}

// TranscriptFileStore keeps transcript metadata in a JSON array sorted by
// meeting date, most recent first.
type TranscriptFileStore struct {
	path string
	mu   sync.Mutex
}

func NewTranscriptFileStore(path string) *TranscriptFileStore {
	return &TranscriptFileStore{path: path}
}

func (s *TranscriptFileStore) List() models.ReadResult[[]models.TranscriptMeta] {
	r := ReadJSON(s.path, []models.TranscriptMeta{})
	if r.Value == nil {
		r.Value = []models.TranscriptMeta{}
	}
	logRead(TranscriptsFile, r)
	return r
}

func (s *TranscriptFileStore) Latest() (*models.TranscriptMeta, error) {
	metas := s.List().Value
	if len(metas) == 0 {
		return nil, models.NewNotFoundError("transcripts")
	}
	return &metas[0], nil
}

// Append adds meta and rewrites the file. A corrupt file is replaced.
func (s *TranscriptFileStore) Append(meta models.TranscriptMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	metas := append(s.List().Value, meta)
	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].Date.After(metas[j].Date)
	})

	return WriteJSON(s.path, metas)
}
