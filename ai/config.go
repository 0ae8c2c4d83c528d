// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	EmbeddingHost string

	// ChatHost is the base URL for the answer generation service API.
	ChatHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// ChatModel is the model identifier to use for answer generation.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	ChatModel string

	// EmbeddingDimension is the dimensionality of vectors produced by
	// EmbeddingModel. It must match the vector-store collection dimension.
	EmbeddingDimension int

	// Temperature controls answer generation randomness. Default: 0.2
	Temperature float64

	// RequestsPerSecond bounds the embedding request rate to the provider.
	// Default: 10
	RequestsPerSecond float64
}

// Config validation errors.
var (
	ErrEmbeddingHostRequired  = errors.New("embedding host required")
	ErrChatHostRequired       = errors.New("chat host required")
	ErrEmbeddingModelRequired = errors.New("embedding model required")
	ErrChatModelRequired      = errors.New("chat model required")
	ErrDimensionRequired      = errors.New("embedding dimension must be positive")
	ErrRateInvalid            = errors.New("requests per second must be positive")
)

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithChatHost sets the answer generation service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithHost sets both embedding and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ChatHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithEmbeddingDimension sets the embedding dimensionality.
func WithEmbeddingDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingDimension = dim
	}
}

// WithTemperature sets the answer generation temperature.
func WithTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithRequestsPerSecond sets the embedding request rate bound.
func WithRequestsPerSecond(rps float64) ConfigOption {
	return func(c *Config) {
		c.RequestsPerSecond = rps
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services. By default, embedding and chat use the
// same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:      defaultHost,
		ChatHost:           defaultHost,
		EmbeddingModel:     "embeddinggemma",
		ChatModel:          "qwen2.5:3b",
		EmbeddingDimension: 768,
		Temperature:        0.2,
		RequestsPerSecond:  10,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks the configuration and normalizes host URLs.
func (c *Config) Validate() error {
	c.EmbeddingHost = strings.TrimRight(strings.TrimSpace(c.EmbeddingHost), "/")
	c.ChatHost = strings.TrimRight(strings.TrimSpace(c.ChatHost), "/")
	if c.EmbeddingHost == "" {
		return ErrEmbeddingHostRequired
	}
	if c.ChatHost == "" {
		return ErrChatHostRequired
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		return ErrEmbeddingModelRequired
	}
	if strings.TrimSpace(c.ChatModel) == "" {
		return ErrChatModelRequired
	}
	if c.EmbeddingDimension <= 0 {
		return ErrDimensionRequired
	}
	if c.RequestsPerSecond <= 0 {
		return ErrRateInvalid
	}
	return nil
}
