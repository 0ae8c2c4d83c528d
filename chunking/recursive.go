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

	"github.com/poiesic/docmind/core"
)

// recursiveSplitter cuts on a priority list of separators: paragraph
// breaks first, then sentence ends, then word starts, then a hard cut
// inside a single oversized word.
type recursiveSplitter struct{}

func (recursiveSplitter) Name() string { return MethodRecursive }

func (recursiveSplitter) Split(ctx context.Context, text string, params Params) ([]core.Span, error) {
	cuts := recursiveCuts(text, 0, len(text), params.ChunkSize)
	return cutsToSpans(text, cuts, params.Overlap), nil
}

// recursiveCuts returns interior cut offsets for text[from:to] such that
// every resulting segment is at most size bytes. Cut positions prefer
// the coarsest boundary available within the size window.
func recursiveCuts(text string, from, to, size int) []int {
	if to-from <= size {
		return nil
	}
	sub := text[from:to]
	paras := paragraphBoundaries(sub)
	sents := sentenceBoundaries(sub)
	words := wordBoundaries(sub)

	var cuts []int
	s := 0
	for len(sub)-s > size {
		limit := s + size
		b := lastBoundaryIn(paras, s, limit)
		if b < 0 {
			b = lastBoundaryIn(sents, s, limit)
		}
		if b < 0 {
			b = lastBoundaryIn(words, s, limit)
		}
		if b < 0 {
			b = limit // no separator in the window: hard cut
		}
		cuts = append(cuts, from+b)
		s = b
	}
	return cuts
}
