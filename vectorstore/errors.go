package vectorstore

import "errors"

var (
	// ErrCollectionNotFound indicates an operation referenced a
	// collection that does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDimensionMismatch indicates a vector's length does not match
	// the collection's configured dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrUnknownMetric indicates an unrecognized similarity metric name.
	ErrUnknownMetric = errors.New("unknown similarity metric")
)
