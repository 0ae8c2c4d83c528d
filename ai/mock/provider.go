package mock

import "github.com/poiesic/docmind/ai"

// MockProvider aggregates mock AI services for testing.
type MockProvider struct {
	MockEmbedder  *MockEmbedder
	MockResponder *MockResponder
}

// NewMockProvider creates a provider backed by mock services.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		MockEmbedder:  NewMockEmbedder(),
		MockResponder: NewMockResponder(),
	}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.MockEmbedder
}

// Responder returns the mock answer generation service.
func (p *MockProvider) Responder() ai.Responder {
	return p.MockResponder
}

// Close is a no-op for mocks.
func (p *MockProvider) Close() error { return nil }
