package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.yaml")
		err := os.WriteFile(configPath, []byte(`
llm:
  model: gpt-4o
rag:
  chunk_size: 400
websearch:
  timeout: 2s
store:
  dir: /tmp/millie-test
`), 0o600)
		require.NoError(t, err)

		cfg, err := LoadConfig(configPath)
		require.NoError(t, err)

		assert.Equal(t, "gpt-4o", cfg.LLM.Model)
		assert.Equal(t, 400, cfg.RAG.ChunkSize)
		assert.Equal(t, 2*time.Second, cfg.WebSearch.Timeout)
		assert.Equal(t, "/tmp/millie-test", cfg.Store.Dir)

		// untouched keys come from Defaults
		assert.Equal(t, DefaultTopK, cfg.RAG.TopK)
		assert.Equal(t, DefaultEmbedModel, cfg.Embeddings.Model)
		assert.Equal(t, 3*time.Second, cfg.WebSearch.PriceTimeout)
		assert.Len(t, cfg.WebSearch.PriceAssets, 3)
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("env overrides", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("log:\n  level: debug\n"), 0o600))

		t.Setenv("MILLIE_OPENAI_API_KEY", "sk-test")
		t.Setenv("MILLIE_RAG_TOP_K", "5")

		cfg, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, "sk-test", cfg.LLM.OpenAIAPIKey)
		assert.Equal(t, "sk-test", cfg.Embeddings.OpenAIAPIKey)
		assert.Equal(t, 5, cfg.RAG.TopK)
		assert.Equal(t, "debug", cfg.Log.Level)
	})
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{RAG: RAGConfig{TriggerKeywords: []string{"price"}}}
	err := ApplyDefaults(cfg)
	assert.NoError(t, err)
	assert.Equal(t, []string{"price"}, cfg.RAG.TriggerKeywords)
	assert.Equal(t, DefaultChunkSize, cfg.RAG.ChunkSize)
	assert.Equal(t, DefaultStoreDir, cfg.Store.Dir)
	assert.False(t, cfg.WebSearch.Disabled)
}
