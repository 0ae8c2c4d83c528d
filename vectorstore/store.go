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


package vectorstore

import (
	"context"
	"fmt"
)

// Metric identifies the similarity function used by a collection.
type Metric int

const (
	MetricCosine Metric = iota + 1
	MetricDot
)

// String returns the metric name.
func (m Metric) String() string {
	switch m {
	case MetricCosine:
		return "cosine"
	case MetricDot:
		return "dot"
	default:
		return "unknown"
	}
}

// ParseMetric converts a metric name to a Metric. Returns
// ErrUnknownMetric for unrecognized names.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "cosine":
		return MetricCosine, nil
	case "dot":
		return MetricDot, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

// Payload is the metadata stored alongside each vector. It carries
// enough context to render a search hit as a source attribution
// without a round trip to the metadata store.
type Payload struct {
	FileID         uint64 `json:"file_id"`
	Filename       string `json:"filename"`
	ChunkIndex     int    `json:"chunk_index"`
	Text           string `json:"text"`
	ChunkingMethod string `json:"chunking_method"`
	EmbeddingModel string `json:"embedding_model"`
}

// Point is a vector with its identifier and payload.
type Point struct {
	ID      uint64
	Vector  []float32
	Payload Payload
}

// Hit is a single search result.
type Hit struct {
	ID      uint64
	Score   float32
	Payload Payload
}

// Store is the interface to a vector database. Implementations must
// treat Upsert as idempotent per point ID and return hits ordered by
// descending score.
type Store interface {
	// EnsureCollection creates the named collection with the given
	// dimension if it does not already exist.
	EnsureCollection(ctx context.Context, name string, dimension int, metric Metric) error

	// Upsert inserts or replaces points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the topK most similar points to the query vector,
	// ordered by descending score.
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]Hit, error)

	// Delete removes the points with the given IDs from the collection.
	Delete(ctx context.Context, collection string, ids []uint64) error

	// DeleteCollection removes an entire collection and its points.
	DeleteCollection(ctx context.Context, name string) error

	// Close releases resources held by the store.
	Close() error
}

// CollectionForFile returns the per-file collection name used when
// documents are indexed into isolated collections.
func CollectionForFile(fileID uint64) string {
	return fmt.Sprintf("file_%d", fileID)
}
