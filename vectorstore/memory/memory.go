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


// Package memory provides an in-process vectorstore.Store backed by
// maps. Search is exhaustive; suitable for tests and small corpora.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/poiesic/docmind/vectorstore"
)

type collection struct {
	dimension int
	metric    vectorstore.Metric
	points    map[uint64]vectorstore.Point
}

// Store is an in-memory vector store. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// EnsureCollection creates the collection if it does not exist. An
// existing collection with a different dimension is an error.
func (s *Store) EnsureCollection(ctx context.Context, name string, dimension int, metric vectorstore.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		if c.dimension != dimension {
			return fmt.Errorf("%w: collection %q has dimension %d, requested %d",
				vectorstore.ErrDimensionMismatch, name, c.dimension, dimension)
		}
		return nil
	}
	s.collections[name] = &collection{
		dimension: dimension,
		metric:    metric,
		points:    make(map[uint64]vectorstore.Point),
	}
	return nil
}

// Upsert inserts or replaces points by ID.
func (s *Store) Upsert(ctx context.Context, name string, points []vectorstore.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("%w: %q", vectorstore.ErrCollectionNotFound, name)
	}
	for _, p := range points {
		if len(p.Vector) != c.dimension {
			return fmt.Errorf("%w: point %d has dimension %d, collection %q expects %d",
				vectorstore.ErrDimensionMismatch, p.ID, len(p.Vector), name, c.dimension)
		}
	}
	for _, p := range points {
		c.points[p.ID] = p
	}
	return nil
}

// Search scores every point against the query vector and returns the
// topK best, ordered by descending score.
func (s *Store) Search(ctx context.Context, name string, vector []float32, topK int) ([]vectorstore.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", vectorstore.ErrCollectionNotFound, name)
	}
	if len(vector) != c.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, collection %q expects %d",
			vectorstore.ErrDimensionMismatch, len(vector), name, c.dimension)
	}
	if topK <= 0 {
		topK = 5
	}

	hits := make([]vectorstore.Hit, 0, len(c.points))
	for _, p := range c.points {
		var score float32
		switch c.metric {
		case vectorstore.MetricDot:
			score = vectorstore.Dot(vector, p.Vector)
		default:
			score = vectorstore.Cosine(vector, p.Vector)
		}
		hits = append(hits, vectorstore.Hit{ID: p.ID, Score: score, Payload: p.Payload})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Delete removes points by ID. Missing IDs are ignored.
func (s *Store) Delete(ctx context.Context, name string, ids []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("%w: %q", vectorstore.ErrCollectionNotFound, name)
	}
	for _, id := range ids {
		delete(c.points, id)
	}
	return nil
}

// DeleteCollection removes the collection and all its points. Deleting
// an absent collection is a no-op.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// Count returns the number of points in a collection. Used by tests.
func (s *Store) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return 0
	}
	return len(c.points)
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
