package vectorstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/millie-ai/millie/pkg/models"
	"github.com/millie-ai/millie/pkg/store"
	"github.com/millie-ai/millie/pkg/testutils"
)

func newTestStore(t *testing.T, embedder models.EmbeddingsClient) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), SnapshotFile), embedder)
}

func TestSearch_OrderAndBounds(t *testing.T) {
	embedder := &testutils.FakeEmbedder{Vectors: map[string][]float32{
		"query": {1, 0, 0},
	}}
	s := newTestStore(t, embedder)
	s.Add(models.VectorRecord{Text: "orthogonal", Embedding: []float32{0, 1, 0}})
	s.Add(models.VectorRecord{Text: "exact", Embedding: []float32{2, 0, 0}})
	s.Add(models.VectorRecord{Text: "close", Embedding: []float32{1, 0.2, 0}})
	s.Add(models.VectorRecord{Text: "opposite", Embedding: []float32{-1, 0, 0}})

	ctx := context.Background()

	got, err := s.Search(ctx, "query", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"exact", "close", "orthogonal"}, got)

	got, err = s.Search(ctx, "query", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"exact", "close", "orthogonal", "opposite"}, got)

	got, err = s.Search(ctx, "query", 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultTopK)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	embedder := &testutils.FakeEmbedder{Vectors: map[string][]float32{
		"query": {1, 1},
	}}
	s := newTestStore(t, embedder)
	for _, text := range []string{"first", "second", "third", "fourth"} {
		s.Add(models.VectorRecord{Text: text, Embedding: []float32{3, 3}})
	}

	got, err := s.Search(context.Background(), "query", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, got)

	results, err := s.SearchVector([]float32{1, 1}, 4)
	require.NoError(t, err)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.InDelta(t, 1.0, r.Score, 1e-6)
	}
}

func TestSearch_EmptyStoreDoesNotEmbed(t *testing.T) {
	embedder := &testutils.FakeEmbedder{}
	s := newTestStore(t, embedder)

	got, err := s.Search(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, embedder.Calls())
}

func TestSearch_RandomStoreProperties(t *testing.T) {
	embedder := &testutils.FakeEmbedder{}
	s := newTestStore(t, embedder)

	n := gofakeit.Number(1, 40)
	for i := 0; i < n; i++ {
		text := gofakeit.Sentence(6)
		s.Add(models.VectorRecord{Text: text, Embedding: testutils.BagOfCharacters(text)})
	}

	k := gofakeit.Number(1, 10)
	results, err := s.SearchVector(testutils.BagOfCharacters(gofakeit.Sentence(4)), k)
	require.NoError(t, err)
	assert.Len(t, results, min(k, n))
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		assert.GreaterOrEqual(t, prev.Score, cur.Score)
		if prev.Score == cur.Score {
			assert.Less(t, prev.Index, cur.Index)
		}
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	embedder := &testutils.FakeEmbedder{Vectors: map[string][]float32{"query": {1, 0, 0}}}
	s := newTestStore(t, embedder)
	s.Add(models.VectorRecord{Text: "short", Embedding: []float32{1, 0}})

	_, err := s.Search(context.Background(), "query", 3)
	assert.ErrorIs(t, err, store.ErrEmbeddingMismatch)
}

func TestSearch_ZeroVectorScoresZero(t *testing.T) {
	s := newTestStore(t, &testutils.FakeEmbedder{})
	s.Add(models.VectorRecord{Text: "zero", Embedding: []float32{0, 0}})
	s.Add(models.VectorRecord{Text: "unit", Embedding: []float32{0, 1}})

	results, err := s.SearchVector([]float32{0, 1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "unit", results[0].Text)
	assert.Equal(t, 0.0, results[1].Score)
}

func TestSearch_EmbeddingFailure(t *testing.T) {
	embedder := &testutils.FakeEmbedder{Err: models.ErrEmbedding}
	s := newTestStore(t, embedder)
	s.Add(models.VectorRecord{Text: "a", Embedding: []float32{1}})

	_, err := s.Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, models.ErrEmbedding)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", SnapshotFile)
	s := New(path, &testutils.FakeEmbedder{})

	var want []models.VectorRecord
	for i := 0; i < 5; i++ {
		text := gofakeit.Sentence(5)
		r := models.VectorRecord{Text: text, Embedding: testutils.BagOfCharacters(text)}
		want = append(want, r)
		s.Add(r)
	}
	require.NoError(t, s.Save())

	loaded := New(path, &testutils.FakeEmbedder{})
	assert.Equal(t, models.Loaded, loaded.Load())
	assert.Equal(t, want, loaded.Records())
}

func TestLoad_MissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	s := New(filepath.Join(dir, SnapshotFile), &testutils.FakeEmbedder{})
	s.Add(models.VectorRecord{Text: "stale", Embedding: []float32{1}})
	assert.Equal(t, models.Missing, s.Load())
	assert.Equal(t, 0, s.Len())

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte(`[{"text": "a", "embedding": [1,`), 0o644))
	s = New(corrupt, &testutils.FakeEmbedder{})
	assert.Equal(t, models.Corrupt, s.Load())
	assert.Equal(t, 0, s.Len())
}

func TestRemember(t *testing.T) {
	embedder := &testutils.FakeEmbedder{}
	path := filepath.Join(t.TempDir(), SnapshotFile)
	s := New(path, embedder)

	require.NoError(t, s.Remember(context.Background(), "Q: hi\nA: hello"))
	assert.Equal(t, 1, s.Len())

	loaded := New(path, embedder)
	loaded.Load()
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, "Q: hi\nA: hello", loaded.Records()[0].Text)

	failing := New(filepath.Join(t.TempDir(), SnapshotFile), &testutils.FakeEmbedder{Err: models.ErrEmbedding})
	assert.ErrorIs(t, failing.Remember(context.Background(), "x"), models.ErrEmbedding)
	assert.Equal(t, 0, failing.Len())
}

func TestCommit_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), SnapshotFile)
	s := New(path, &testutils.FakeEmbedder{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text := gofakeit.Word()
			assert.NoError(t, s.Commit(models.VectorRecord{Text: text, Embedding: testutils.BagOfCharacters(text)}))
		}()
	}
	wg.Wait()

	loaded := New(path, &testutils.FakeEmbedder{})
	assert.Equal(t, models.Loaded, loaded.Load())
	assert.Equal(t, 20, loaded.Len())
}
