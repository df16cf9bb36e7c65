package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/millie-ai/millie/pkg/models"
)

func TestReadJSON(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		r := ReadJSON(filepath.Join(dir, "nope.json"), []string{"fallback"})
		assert.Equal(t, models.Missing, r.State)
		assert.Equal(t, []string{"fallback"}, r.Value)
		assert.NoError(t, r.Err)
		assert.False(t, r.OK())
	})

	t.Run("corrupt", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		r := ReadJSON(path, []string{})
		assert.Equal(t, models.Corrupt, r.State)
		assert.Empty(t, r.Value)
		assert.Error(t, r.Err)
	})

	t.Run("loaded", func(t *testing.T) {
		path := filepath.Join(dir, "ok.json")
		require.NoError(t, WriteJSON(path, []string{"a", "b"}))

		r := ReadJSON(path, []string{})
		assert.True(t, r.OK())
		assert.Equal(t, []string{"a", "b"}, r.Value)
	})
}

func TestWriteJSON_CreatesDirAndLeavesNoTempFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "storage")
	path := filepath.Join(dir, "data.json")

	require.NoError(t, WriteJSON(path, map[string]int{"one": 1}))
	require.NoError(t, WriteJSON(path, map[string]int{"two": 2}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	r := ReadJSON(path, map[string]int{})
	assert.Equal(t, map[string]int{"two": 2}, r.Value)
}

func TestTranscriptFileStore(t *testing.T) {
	s := NewTranscriptFileStore(filepath.Join(t.TempDir(), TranscriptsFile))

	_, err := s.Latest()
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, models.Missing, s.List().State)
	assert.NotNil(t, s.List().Value)

	older := models.TranscriptMeta{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Topic: "older"}
	newer := models.TranscriptMeta{Date: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), Topic: "newer"}
	oldest := models.TranscriptMeta{Date: time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC), Topic: "oldest"}

	require.NoError(t, s.Append(older))
	require.NoError(t, s.Append(newer))
	require.NoError(t, s.Append(oldest))

	r := s.List()
	require.True(t, r.OK())
	require.Len(t, r.Value, 3)
	assert.Equal(t, "newer", r.Value[0].Topic)
	assert.Equal(t, "older", r.Value[1].Topic)
	assert.Equal(t, "oldest", r.Value[2].Topic)

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "newer", latest.Topic)
}

func TestTranscriptFileStore_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), TranscriptsFile)
	require.NoError(t, os.WriteFile(path, []byte("]["), 0o644))
	s := NewTranscriptFileStore(path)

	r := s.List()
	assert.Equal(t, models.Corrupt, r.State)
	assert.Empty(t, r.Value)

	require.NoError(t, s.Append(models.TranscriptMeta{Topic: "fresh"}))
	assert.Len(t, s.List().Value, 1)
}

func TestDashboardFileStore(t *testing.T) {
	s := NewDashboardFileStore(filepath.Join(t.TempDir(), DashboardFile))
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	r := s.Get()
	assert.Equal(t, models.Missing, r.State)
	assert.Nil(t, r.Value)

	require.NoError(t, s.SetDailyQuotes([]string{"stay humble"}))
	r = s.Get()
	require.True(t, r.OK())
	assert.Equal(t, []string{"stay humble"}, r.Value.DailyQuotes)
	assert.False(t, r.Value.Complete())

	data := &models.DashboardData{
		DailyQuotes:   []string{"q1", "q2"},
		CommunityNews: []models.CommunityNews{{Title: "t", Content: "c", Type: "update"}},
		CoinOfWeek:    &models.CoinOfWeek{Name: "PulseChain", Symbol: "PLS"},
	}
	require.NoError(t, s.Put(data))
	assert.Nil(t, data.LastUpdated)

	r = s.Get()
	require.True(t, r.OK())
	assert.True(t, r.Value.Complete())
	require.NotNil(t, r.Value.LastUpdated)
	assert.True(t, fixed.Equal(*r.Value.LastUpdated))

	require.NoError(t, s.SetDailyQuotes([]string{"new"}))
	r = s.Get()
	assert.Equal(t, []string{"new"}, r.Value.DailyQuotes)
	assert.Equal(t, "PLS", r.Value.CoinOfWeek.Symbol)
}

func TestUploadHistoryFileStore(t *testing.T) {
	s := NewUploadHistoryFileStore(filepath.Join(t.TempDir(), UploadHistoryFile))

	first, err := s.Add(models.UploadHistoryEntry{Type: models.UploadTypeTranscript, Title: "Week 1 - Launch"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.UploadedAt.IsZero())

	second, err := s.Add(models.UploadHistoryEntry{Type: models.UploadTypeCollective, Title: gofakeit.Sentence(4)})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	history := s.List().Value
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
}

func TestUploadHistoryFileStore_Cap(t *testing.T) {
	s := NewUploadHistoryFileStore(filepath.Join(t.TempDir(), UploadHistoryFile))

	var last *models.UploadHistoryEntry
	for i := 0; i < MaxUploadHistoryItems+5; i++ {
		e, err := s.Add(models.UploadHistoryEntry{Type: models.UploadTypeDocument, Title: gofakeit.Word()})
		require.NoError(t, err)
		last = e
	}

	history := s.List().Value
	assert.Len(t, history, MaxUploadHistoryItems)
	assert.Equal(t, last.ID, history[0].ID)
}

func TestSystemPromptFileStore(t *testing.T) {
	s := NewSystemPromptFileStore(filepath.Join(t.TempDir(), SystemPromptFile), "default persona")

	assert.Equal(t, "default persona", s.Get())

	require.NoError(t, s.Put("custom persona"))
	assert.Equal(t, "custom persona", s.Get())

	require.NoError(t, s.Put("   "))
	assert.Equal(t, "default persona", s.Get())
}

func TestBoltArchive(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), TranscriptArchiveFile)

	a, err := NewBoltArchive(path)
	require.NoError(t, err)

	text := gofakeit.Paragraph(3, 4, 10, " ")
	require.NoError(t, a.Put(ctx, "1700000000000.txt", text))

	got, err := a.Get(ctx, "1700000000000.txt")
	require.NoError(t, err)
	assert.Equal(t, text, got)

	_, err = a.Get(ctx, "missing.txt")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, a.Close())

	// reopen to check the write was durable
	a, err = NewBoltArchive(path)
	require.NoError(t, err)
	defer a.Close()
	got, err = a.Get(ctx, "1700000000000.txt")
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestBoltArchive_CanceledContext(t *testing.T) {
	a, err := NewBoltArchive(filepath.Join(t.TempDir(), TranscriptArchiveFile))
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = a.Put(ctx, "x.txt", "x")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEmbeddingMismatchError(t *testing.T) {
	err := NewEmbeddingMismatchError(3, 2)
	assert.ErrorIs(t, err, ErrEmbeddingMismatch)
	assert.Contains(t, err.Error(), "query has 3 dimensions")
}
