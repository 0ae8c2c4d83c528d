package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input
	// texts, one per input. A provider-level failure fails the whole batch;
	// partial results are never returned.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the fixed embedding dimensionality of this instance.
	Dimension() int

	// Model returns the backing model identifier.
	Model() string
}

// Role identifies the author of a prompt message.
type Role int

const (
	// RoleSystem carries instructions to the model.
	RoleSystem Role = iota + 1
	// RoleUser carries user input.
	RoleUser
	// RoleAssistant carries prior model output.
	RoleAssistant
)

// Message is a single prompt message.
type Message struct {
	Role Role
	Text string
}

// Responder generates a completion from a composed prompt.
// Implementations must be thread-safe for concurrent use.
type Responder interface {
	// Respond generates an answer for the given messages. maxTokens bounds
	// the completion length; zero means the provider default.
	Respond(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// Responder instances, ensuring they share configuration appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Responder returns the answer generation service.
	Responder() Responder

	// Close releases resources held by the provider and its services.
	Close() error
}
