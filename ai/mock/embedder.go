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


package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultDimension is the vector size produced by MockEmbedder when no
// dimension is specified.
const DefaultDimension = 64

// MockEmbedder provides a deterministic test implementation of ai.Embedder.
//
// By default it produces bag-of-words vectors: each lowercased token in
// the input hashes to a bucket, so texts sharing words yield vectors
// with high cosine similarity. This makes retrieval tests meaningful
// without a live model.
type MockEmbedder struct {
	// EmbedTextFunc allows customizing single-text embedding behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc allows customizing batch embedding behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// Dim is the vector dimensionality. Defaults to DefaultDimension.
	Dim int

	mu        sync.Mutex
	callCount int
}

// NewMockEmbedder creates a mock embedder with default behavior.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{Dim: DefaultDimension}
}

// EmbedText generates a deterministic embedding for the text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return m.bagOfWords(text), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.bagOfWords(text)
	}
	return vectors, nil
}

// Dimension returns the mock vector dimensionality.
func (m *MockEmbedder) Dimension() int {
	return m.dim()
}

// Model returns a fixed mock model identifier.
func (m *MockEmbedder) Model() string { return "mock-embedder" }

// CallCount returns the number of embedding calls made.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func (m *MockEmbedder) dim() int {
	if m.Dim > 0 {
		return m.Dim
	}
	return DefaultDimension
}

// bagOfWords hashes each token to a bucket and counts occurrences, so
// word overlap between texts translates into vector similarity.
func (m *MockEmbedder) bagOfWords(text string) []float32 {
	dim := m.dim()
	vec := make([]float32, dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,;:!?\"'()[]")
		if tok == "" {
			continue
		}
		bucket := xxhash.Sum64String(tok) % uint64(dim)
		vec[bucket]++
	}
	return vec
}
