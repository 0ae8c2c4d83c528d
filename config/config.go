// Package config loads docmind configuration from YAML with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full docmind configuration.
type Config struct {
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	VectorStore struct {
		// Backend selects "memory" or "qdrant".
		Backend string `yaml:"backend"`
		URL     string `yaml:"url"`
		APIKey  string `yaml:"api_key"`
		// Collection, when set, routes all files into one shared
		// collection instead of one collection per file.
		Collection string `yaml:"collection"`
	} `yaml:"vectorstore"`

	AI struct {
		EmbeddingHost      string  `yaml:"embedding_host"`
		ChatHost           string  `yaml:"chat_host"`
		EmbeddingModel     string  `yaml:"embedding_model"`
		ChatModel          string  `yaml:"chat_model"`
		EmbeddingDimension int     `yaml:"embedding_dimension"`
		Temperature        float64 `yaml:"temperature"`
		RequestsPerSecond  float64 `yaml:"requests_per_second"`
	} `yaml:"ai"`

	Ingestion struct {
		ChunkSize         int     `yaml:"chunk_size"`
		ChunkOverlap      int     `yaml:"chunk_overlap"`
		SemanticThreshold float64 `yaml:"semantic_threshold"`
		BatchSize         int     `yaml:"batch_size"`
		PoolSize          int     `yaml:"pool_size"`
		MaxFileSizeBytes  int64   `yaml:"max_file_size_bytes"`
	} `yaml:"ingestion"`

	Agent struct {
		TopK          int `yaml:"top_k"`
		MaxTokens     int `yaml:"max_tokens"`
		ContextBudget int `yaml:"context_budget"`
		MaxTurns      int `yaml:"max_turns"`
	} `yaml:"agent"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// LoadConfig reads configuration from path. An empty path searches
// default locations and falls back to built-in defaults. Environment
// variables override file values.
func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"docmind.yaml",
			"docmind.yml",
			filepath.Join(os.Getenv("HOME"), ".config/docmind/config.yaml"),
			"/etc/docmind/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	config := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %v", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %v", err)
		}
	}

	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Storage.Path == "" {
		config.Storage.Path = filepath.Join(os.Getenv("HOME"), ".docmind", "db")
	}

	if config.VectorStore.Backend == "" {
		config.VectorStore.Backend = "memory"
	}
	if config.VectorStore.URL == "" {
		config.VectorStore.URL = "http://localhost:6333"
	}

	if config.AI.EmbeddingHost == "" {
		config.AI.EmbeddingHost = "http://localhost:11434/v1"
	}
	if config.AI.ChatHost == "" {
		config.AI.ChatHost = config.AI.EmbeddingHost
	}
	if config.AI.EmbeddingModel == "" {
		config.AI.EmbeddingModel = "embeddinggemma"
	}
	if config.AI.ChatModel == "" {
		config.AI.ChatModel = "qwen2.5:3b"
	}
	if config.AI.EmbeddingDimension == 0 {
		config.AI.EmbeddingDimension = 768
	}
	if config.AI.Temperature == 0 {
		config.AI.Temperature = 0.2
	}
	if config.AI.RequestsPerSecond == 0 {
		config.AI.RequestsPerSecond = 10
	}

	if config.Ingestion.ChunkSize == 0 {
		config.Ingestion.ChunkSize = 1000
	}
	if config.Ingestion.ChunkOverlap == 0 {
		config.Ingestion.ChunkOverlap = 200
	}
	if config.Ingestion.SemanticThreshold == 0 {
		config.Ingestion.SemanticThreshold = 0.5
	}
	if config.Ingestion.BatchSize == 0 {
		config.Ingestion.BatchSize = 32
	}
	if config.Ingestion.MaxFileSizeBytes == 0 {
		config.Ingestion.MaxFileSizeBytes = 50 << 20
	}

	if config.Agent.TopK == 0 {
		config.Agent.TopK = 5
	}
	if config.Agent.MaxTokens == 0 {
		config.Agent.MaxTokens = 512
	}
	if config.Agent.ContextBudget == 0 {
		config.Agent.ContextBudget = 2000
	}
	if config.Agent.MaxTurns == 0 {
		config.Agent.MaxTurns = 20
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
}

func mergeWithEnv(config *Config) {
	if path := os.Getenv("DOCMIND_STORAGE_PATH"); path != "" {
		config.Storage.Path = path
	}
	if backend := os.Getenv("DOCMIND_VECTOR_BACKEND"); backend != "" {
		config.VectorStore.Backend = backend
	}
	if url := os.Getenv("QDRANT_URL"); url != "" {
		config.VectorStore.URL = url
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" {
		config.VectorStore.APIKey = key
	}
	if host := os.Getenv("OLLAMA_BASE_URL"); host != "" {
		config.AI.EmbeddingHost = host
		config.AI.ChatHost = host
	}
	if model := os.Getenv("DOCMIND_EMBEDDING_MODEL"); model != "" {
		config.AI.EmbeddingModel = model
	}
	if model := os.Getenv("DOCMIND_CHAT_MODEL"); model != "" {
		config.AI.ChatModel = model
	}
	if dim := os.Getenv("DOCMIND_EMBEDDING_DIMENSION"); dim != "" {
		if n, err := strconv.Atoi(dim); err == nil {
			config.AI.EmbeddingDimension = n
		}
	}
	if level := os.Getenv("DOCMIND_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
}
