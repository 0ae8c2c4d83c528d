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


package chunking

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/core"
)

// semanticSplitter breaks where the embedding similarity between
// adjacent sentences drops below the configured threshold. It embeds
// every sentence before the main embedding pass, which is a deliberate
// extra cost of this strategy.
type semanticSplitter struct {
	embedder ai.Embedder
}

func (semanticSplitter) Name() string { return MethodSemantic }

func (s semanticSplitter) Split(ctx context.Context, text string, params Params) ([]core.Span, error) {
	if s.embedder == nil {
		return nil, ErrEmbedderRequired
	}

	starts := append([]int{0}, sentenceBoundaries(text)...)
	if len(starts) <= 1 {
		return []core.Span{{Text: text, Start: 0, End: len(text)}}, nil
	}

	sentences := make([]string, len(starts))
	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		sentences[i] = strings.TrimSpace(text[start:end])
	}

	vectors, err := s.embedder.EmbedTexts(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("embedding sentences: %w", err)
	}
	if len(vectors) != len(sentences) {
		return nil, fmt.Errorf("embedding result mismatch: expected %d, received %d", len(sentences), len(vectors))
	}

	// Cut where similarity drops, or where the running segment would
	// outgrow the target size.
	var cuts []int
	segStart := 0
	for i := 1; i < len(starts); i++ {
		drop := cosineSimilarity(vectors[i-1], vectors[i]) < float32(params.SemanticThreshold)
		oversize := starts[i]-segStart > params.ChunkSize
		if drop || oversize {
			cuts = append(cuts, starts[i])
			segStart = starts[i]
		}
	}
	return cutsToSpans(text, cuts, params.Overlap), nil
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths compare over the shorter prefix.
func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float32
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
