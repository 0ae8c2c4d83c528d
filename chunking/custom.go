package chunking

import (
	"context"

	"github.com/poiesic/docmind/core"
)

// SplitFunc is a caller-supplied chunking strategy. It receives the
// cleaned document text and must return ordered, contiguous, non-empty
// spans whose text matches their offsets.
type SplitFunc func(text string, params Params) ([]core.Span, error)

type customSplitter struct {
	name string
	fn   SplitFunc
}

// NewCustomSplitter wraps fn as a Splitter registered under name.
// The engine validates the output against the span contract on every call.
func NewCustomSplitter(name string, fn SplitFunc) (Splitter, error) {
	if fn == nil {
		return nil, ErrSplitFuncRequired
	}
	return customSplitter{name: name, fn: fn}, nil
}

func (c customSplitter) Name() string { return c.name }

func (c customSplitter) Split(ctx context.Context, text string, params Params) ([]core.Span, error) {
	return c.fn(text, params)
}
