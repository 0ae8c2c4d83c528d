package agent

import "errors"

var (
	// ErrEmptyQuery indicates the query text was blank.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrEmbedderRequired indicates a nil embedder was provided.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrResponderRequired indicates a nil responder was provided.
	ErrResponderRequired = errors.New("responder is required")

	// ErrVectorStoreRequired indicates a nil vector store was provided.
	ErrVectorStoreRequired = errors.New("vector store is required")

	// ErrFileRepositoryRequired indicates a nil file repository was provided.
	ErrFileRepositoryRequired = errors.New("file repository is required")

	// ErrSessionsRequired indicates a nil session memory was provided.
	ErrSessionsRequired = errors.New("session memory is required")

	// ErrBookingIncomplete indicates the booking tool could not extract
	// the required fields from the query.
	ErrBookingIncomplete = errors.New("booking details incomplete")
)
