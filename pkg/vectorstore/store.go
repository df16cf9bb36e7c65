package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/viterin/vek/vek32"

	"github.com/millie-ai/millie/internal"
	"github.com/millie-ai/millie/pkg/llms"
	"github.com/millie-ai/millie/pkg/models"
	"github.com/millie-ai/millie/pkg/store"
)

const (
	SnapshotFile = "vectors.json"
	DefaultTopK  = 3
)

var log = internal.GetLogger()

var _ models.VectorStore = &Store{}

// Store is an append-only list of embedded texts, searched by brute-force
// cosine similarity and persisted as a single JSON snapshot.
type Store struct {
	path     string
	embedder models.EmbeddingsClient

	mu      sync.RWMutex
	records []models.VectorRecord

	// writeMu serializes snapshot writes so that Commit is add+save as one unit
	writeMu sync.Mutex
}

func New(path string, embedder models.EmbeddingsClient) *Store {
	return &Store{
		path:     path,
		embedder: embedder,
		records:  []models.VectorRecord{},
	}
}

// Load replaces the in-memory records with the snapshot on disk. A missing or
// unreadable snapshot leaves the store empty.
func (s *Store) Load() models.LoadState {
	r := store.ReadJSON(s.path, []models.VectorRecord{})
	records := r.Value
	if records == nil {
		records = []models.VectorRecord{}
	}

	switch r.State {
	case models.Loaded:
		log.Infof("loaded %d vector records from %s", len(records), s.path)
	case models.Missing:
		log.Infof("no vector snapshot at %s, starting with an empty store", s.path)
	case models.Corrupt:
		log.Warnf("vector snapshot at %s could not be read, starting with an empty store: %v", s.path, r.Err)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	return r.State
}

func (s *Store) Add(record models.VectorRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
}

func (s *Store) Save() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.save()
}

func (s *Store) save() error {
	s.mu.RLock()
	snapshot := make([]models.VectorRecord, len(s.records))
	copy(snapshot, s.records)
	s.mu.RUnlock()

	if err := store.WriteJSON(s.path, snapshot); err != nil {
		return err
	}
	log.Debugf("saved %d vector records", len(snapshot))
	return nil
}

// Commit appends records and saves the snapshot. Concurrent commits never
// interleave their writes.
func (s *Store) Commit(records ...models.VectorRecord) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.records = append(s.records, records...)
	s.mu.Unlock()

	return s.save()
}

// Remember embeds text and commits it.
func (s *Store) Remember(ctx context.Context, text string) error {
	embedding, err := llms.EmbedText(ctx, s.embedder, text)
	if err != nil {
		return err
	}
	return s.Commit(models.VectorRecord{Text: text, Embedding: embedding})
}

// Search embeds query and returns the texts of the k most similar records.
// An empty store returns an empty slice without calling the embedder.
func (s *Store) Search(ctx context.Context, query string, k int) ([]string, error) {
	if s.Len() == 0 {
		return []string{}, nil
	}

	embedding, err := llms.EmbedText(ctx, s.embedder, query)
	if err != nil {
		return nil, err
	}

	results, err := s.SearchVector(embedding, k)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return texts, nil
}

// SearchVector ranks every record against embedding. Equal scores keep
// insertion order.
func (s *Store) SearchVector(embedding []float32, k int) ([]models.SearchResult, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	s.mu.RLock()
	records := s.records
	s.mu.RUnlock()

	results := make([]models.SearchResult, 0, len(records))
	for i, r := range records {
		if len(r.Embedding) != len(embedding) {
			return nil, store.NewEmbeddingMismatchError(len(embedding), len(r.Embedding))
		}
		results = append(results, models.SearchResult{
			Text:  r.Text,
			Score: cosineSimilarity(embedding, r.Embedding),
			Index: i,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns a copy of the stored records in insertion order.
func (s *Store) Records() []models.VectorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.VectorRecord, len(s.records))
	copy(out, s.records)
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 {
		return 0
	}
	sim := float64(vek32.CosineSimilarity(a, b))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0
	}
	return sim
}
