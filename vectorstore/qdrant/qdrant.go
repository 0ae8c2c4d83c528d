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


// Package qdrant implements vectorstore.Store as a minimal REST client
// to a Qdrant server.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/docmind/vectorstore"
)

// Config holds connection settings for a Qdrant server.
type Config struct {
	// URL is the server base URL, e.g. "http://localhost:6333".
	URL string

	// APIKey is sent in the api-key header when non-empty.
	APIKey string

	// Timeout bounds each HTTP request. Default: 15s.
	Timeout time.Duration
}

// Store is a REST client to Qdrant implementing vectorstore.Store.
type Store struct {
	url    string
	apiKey string
	client *http.Client
	logger *slog.Logger
}

// NewStore creates a Qdrant-backed vector store.
func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
		logger: slog.Default().With("component", "qdrant"),
	}
}

func metricName(m vectorstore.Metric) string {
	if m == vectorstore.MetricDot {
		return "Dot"
	}
	return "Cosine"
}

// EnsureCollection creates the collection if missing. An existing
// collection is verified against the requested dimension rather than
// re-created, since Qdrant rejects create calls for existing names.
func (s *Store) EnsureCollection(ctx context.Context, name string, dimension int, metric vectorstore.Metric) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension %d", vectorstore.ErrDimensionMismatch, dimension)
	}

	var info struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	err := s.do(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s", s.url, name), nil, &info)
	if err == nil {
		if got := info.Result.Config.Params.Vectors.Size; got != dimension {
			return fmt.Errorf("%w: collection %q has dimension %d, want %d",
				vectorstore.ErrDimensionMismatch, name, got, dimension)
		}
		return nil
	}
	if !errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return err
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": metricName(metric),
		},
	}
	return s.do(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, name), body, nil)
}

// Upsert inserts or replaces points, waiting for the write to be
// applied before returning.
func (s *Store) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}
	qPoints := make([]map[string]any, len(points))
	for i, p := range points {
		qPoints[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}
	body := map[string]any{"points": qPoints}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, collection)
	return s.do(ctx, http.MethodPut, url, body, nil)
}

// Search returns the topK nearest points with payloads.
func (s *Store) Search(ctx context.Context, collection string, vector []float32, topK int) ([]vectorstore.Hit, error) {
	if topK <= 0 {
		topK = 5
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      uint64              `json:"id"`
			Score   float32             `json:"score"`
			Payload vectorstore.Payload `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", s.url, collection)
	if err := s.do(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, err
	}
	hits := make([]vectorstore.Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, vectorstore.Hit{ID: r.ID, Score: r.Score, Payload: r.Payload})
	}
	return hits, nil
}

// Delete removes points by ID.
func (s *Store) Delete(ctx context.Context, collection string, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	body := map[string]any{"points": ids}
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", s.url, collection)
	return s.do(ctx, http.MethodPost, url, body, nil)
}

// DeleteCollection drops the collection.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	return s.do(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, name), nil, nil)
}

// Close is a no-op; the HTTP client holds no persistent connections
// worth tearing down explicitly.
func (s *Store) Close() error { return nil }

func (s *Store) do(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", vectorstore.ErrCollectionNotFound, method, url)
	}
	if resp.StatusCode >= 300 {
		s.logger.Error("qdrant request failed", "method", method, "url", url, "status", resp.Status)
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
