package chunking

import "errors"

var (
	// ErrUnknownMethod is returned for a chunking method with no registered splitter.
	ErrUnknownMethod = errors.New("unknown chunking method")

	// ErrChunkSizeRequired indicates a non-positive target chunk size.
	ErrChunkSizeRequired = errors.New("chunk size must be positive")

	// ErrOverlapTooLarge indicates an overlap that is negative or not
	// smaller than the chunk size.
	ErrOverlapTooLarge = errors.New("overlap must be non-negative and smaller than chunk size")

	// ErrThresholdRange indicates a semantic threshold outside [0, 1].
	ErrThresholdRange = errors.New("semantic threshold must be in [0, 1]")

	// ErrEmbedderRequired is returned when the semantic splitter is built without an embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrSplitFuncRequired is returned when a custom splitter is built without a function.
	ErrSplitFuncRequired = errors.New("split function required")

	// ErrBadSpans indicates splitter output violating the span contract.
	ErrBadSpans = errors.New("splitter produced invalid spans")
)
