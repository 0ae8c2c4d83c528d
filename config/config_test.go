package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing-but-unused"))
	require.Error(t, err)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.VectorStore.Backend)
	assert.Equal(t, 1000, cfg.Ingestion.ChunkSize)
	assert.Equal(t, 200, cfg.Ingestion.ChunkOverlap)
	assert.Equal(t, 768, cfg.AI.EmbeddingDimension)
	assert.Equal(t, 5, cfg.Agent.TopK)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docmind.yaml")
	content := `
storage:
  path: /tmp/docmind-test
vectorstore:
  backend: qdrant
  url: http://qdrant:6333
ai:
  embedding_model: custom-embedder
  embedding_dimension: 384
ingestion:
  chunk_size: 500
agent:
  top_k: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/docmind-test", cfg.Storage.Path)
	assert.Equal(t, "qdrant", cfg.VectorStore.Backend)
	assert.Equal(t, "http://qdrant:6333", cfg.VectorStore.URL)
	assert.Equal(t, "custom-embedder", cfg.AI.EmbeddingModel)
	assert.Equal(t, 384, cfg.AI.EmbeddingDimension)
	assert.Equal(t, 500, cfg.Ingestion.ChunkSize)
	assert.Equal(t, 3, cfg.Agent.TopK)

	// Unset values still get defaults
	assert.Equal(t, 200, cfg.Ingestion.ChunkOverlap)
	assert.Equal(t, "qwen2.5:3b", cfg.AI.ChatModel)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DOCMIND_VECTOR_BACKEND", "qdrant")
	t.Setenv("DOCMIND_EMBEDDING_DIMENSION", "1024")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "qdrant", cfg.VectorStore.Backend)
	assert.Equal(t, 1024, cfg.AI.EmbeddingDimension)
}
