package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/millie-ai/millie/pkg/models"
)

const (
	UploadHistoryFile     = "upload-history.json"
	MaxUploadHistoryItems = 100
)

var _ models.UploadHistoryStore = &UploadHistoryFileStore{}

// UploadHistoryFileStore records ingestions, newest first, keeping the last
// MaxUploadHistoryItems entries.
type UploadHistoryFileStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func NewUploadHistoryFileStore(path string) *UploadHistoryFileStore {
	return &UploadHistoryFileStore{path: path, now: time.Now}
}

func (s *UploadHistoryFileStore) List() models.ReadResult[[]models.UploadHistoryEntry] {
	r := ReadJSON(s.path, []models.UploadHistoryEntry{})
	if r.Value == nil {
		r.Value = []models.UploadHistoryEntry{}
	}
	logRead(UploadHistoryFile, r)
	return r
}

// Add assigns the entry an ID and upload time and prepends it.
func (s *UploadHistoryFileStore) Add(entry models.UploadHistoryEntry) (*models.UploadHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.UploadedAt = s.now().UTC()

	history := append([]models.UploadHistoryEntry{entry}, s.List().Value...)
	if len(history) > MaxUploadHistoryItems {
		history = history[:MaxUploadHistoryItems]
	}

	if err := WriteJSON(s.path, history); err != nil {
		return nil, err
	}
	return &entry, nil
}
