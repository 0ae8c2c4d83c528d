package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.ChatModel)
	assert.Equal(t, 768, cfg.EmbeddingDimension)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 10.0, cfg.RequestsPerSecond)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.ChatHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithChatHost("http://chat:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://chat:9090/v1", cfg.ChatHost)
	})

	t.Run("with custom models", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("text-embedding-3-small"),
			WithChatModel("gpt-4o-mini"),
		)

		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("http://custom:8080/v1"),
			WithEmbeddingDimension(384),
			WithTemperature(0.7),
			WithRequestsPerSecond(2),
		)

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, 384, cfg.EmbeddingDimension)
		assert.Equal(t, 0.7, cfg.Temperature)
		assert.Equal(t, 2.0, cfg.RequestsPerSecond)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return NewConfig()
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("normalizes trailing slashes", func(t *testing.T) {
		cfg := valid()
		cfg.EmbeddingHost = "http://localhost:11434/v1/"
		cfg.ChatHost = " http://localhost:11434/v1 "

		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	})

	t.Run("missing embedding host", func(t *testing.T) {
		cfg := valid()
		cfg.EmbeddingHost = ""
		assert.ErrorIs(t, cfg.Validate(), ErrEmbeddingHostRequired)
	})

	t.Run("missing chat host", func(t *testing.T) {
		cfg := valid()
		cfg.ChatHost = "  "
		assert.ErrorIs(t, cfg.Validate(), ErrChatHostRequired)
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := valid()
		cfg.EmbeddingModel = ""
		assert.ErrorIs(t, cfg.Validate(), ErrEmbeddingModelRequired)
	})

	t.Run("missing chat model", func(t *testing.T) {
		cfg := valid()
		cfg.ChatModel = ""
		assert.ErrorIs(t, cfg.Validate(), ErrChatModelRequired)
	})

	t.Run("non-positive dimension", func(t *testing.T) {
		cfg := valid()
		cfg.EmbeddingDimension = 0
		assert.ErrorIs(t, cfg.Validate(), ErrDimensionRequired)
	})

	t.Run("non-positive rate", func(t *testing.T) {
		cfg := valid()
		cfg.RequestsPerSecond = -1
		assert.ErrorIs(t, cfg.Validate(), ErrRateInvalid)
	})
}
