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
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/core"
)

// Built-in chunking method names.
const (
	MethodRecursive = "recursive"
	MethodSemantic  = "semantic"
	MethodSection   = "section"
)

// Params configures a chunking run.
type Params struct {
	// ChunkSize is the target maximum span size in bytes.
	ChunkSize int

	// Overlap is the number of bytes shared between consecutive spans.
	// Must be smaller than ChunkSize.
	Overlap int

	// SemanticThreshold is the similarity below which the semantic
	// splitter breaks between adjacent sentences. Ignored by other
	// strategies.
	SemanticThreshold float64
}

// DefaultParams returns the default chunking parameters.
func DefaultParams() Params {
	return Params{
		ChunkSize:         1000,
		Overlap:           200,
		SemanticThreshold: 0.5,
	}
}

// Validate checks the parameters. Misconfiguration fails fast here,
// before any document is touched.
func (p Params) Validate() error {
	if p.ChunkSize <= 0 {
		return fmt.Errorf("%w: %w: %d", core.ErrValidation, ErrChunkSizeRequired, p.ChunkSize)
	}
	if p.Overlap < 0 || p.Overlap >= p.ChunkSize {
		return fmt.Errorf("%w: %w: overlap %d, chunk size %d", core.ErrValidation, ErrOverlapTooLarge, p.Overlap, p.ChunkSize)
	}
	if p.SemanticThreshold < 0 || p.SemanticThreshold > 1 {
		return fmt.Errorf("%w: %w: %v", core.ErrValidation, ErrThresholdRange, p.SemanticThreshold)
	}
	return nil
}

// Splitter is a chunking strategy. Implementations must return ordered,
// non-empty spans that are literal slices of the input text.
type Splitter interface {
	// Name returns the method name the splitter registers under.
	Name() string

	// Split chunks text according to params. The input is never empty.
	Split(ctx context.Context, text string, params Params) ([]core.Span, error)
}

// Engine dispatches chunking requests to registered splitters.
type Engine struct {
	splitters map[string]Splitter
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithSplitter registers an additional splitter, such as a custom
// strategy built with NewCustomSplitter. A splitter with a built-in
// name overrides the built-in.
func WithSplitter(s Splitter) Option {
	return func(e *Engine) error {
		if s == nil {
			return ErrSplitFuncRequired
		}
		e.splitters[s.Name()] = s
		return nil
	}
}

// NewEngine creates an engine with the built-in strategies registered.
// The embedder is used by the semantic splitter; it may be nil if the
// semantic method is never selected.
func NewEngine(embedder ai.Embedder, opts ...Option) (*Engine, error) {
	e := &Engine{
		splitters: map[string]Splitter{
			MethodRecursive: recursiveSplitter{},
			MethodSection:   sectionSplitter{},
			MethodSemantic:  semanticSplitter{embedder: embedder},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Methods returns the registered method names, sorted.
func (e *Engine) Methods() []string {
	methods := make([]string, 0, len(e.splitters))
	for name := range e.splitters {
		methods = append(methods, name)
	}
	slices.Sort(methods)
	return methods
}

// Chunk splits text using the named method. Empty or whitespace-only
// input yields zero spans without error. The splitter output is checked
// against the span contract before being returned.
func (e *Engine) Chunk(ctx context.Context, text, method string, params Params) ([]core.Span, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	splitter, ok := e.splitters[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	spans, err := splitter.Split(ctx, text, params)
	if err != nil {
		return nil, err
	}
	if err := validateSpans(text, spans); err != nil {
		return nil, fmt.Errorf("method %q: %w", method, err)
	}
	e.logger.Debug("chunked document", "method", method, "bytes", len(text), "spans", len(spans))
	return spans, nil
}

// validateSpans enforces the splitter output contract: spans are
// non-empty, in bounds, ordered, advance monotonically, and carry text
// matching their offsets.
func validateSpans(text string, spans []core.Span) error {
	prevStart, prevEnd := -1, 0
	for i, s := range spans {
		if s.Start < 0 || s.End > len(text) || s.Start >= s.End {
			return fmt.Errorf("%w: span %d has bounds [%d, %d)", ErrBadSpans, i, s.Start, s.End)
		}
		if s.Text != text[s.Start:s.End] {
			return fmt.Errorf("%w: span %d text does not match its offsets", ErrBadSpans, i)
		}
		if strings.TrimSpace(s.Text) == "" {
			return fmt.Errorf("%w: span %d is blank", ErrBadSpans, i)
		}
		if i > 0 {
			if s.Start <= prevStart || s.End <= prevEnd {
				return fmt.Errorf("%w: span %d does not advance", ErrBadSpans, i)
			}
			if s.Start > prevEnd {
				return fmt.Errorf("%w: gap before span %d", ErrBadSpans, i)
			}
		}
		prevStart, prevEnd = s.Start, s.End
	}
	return nil
}
