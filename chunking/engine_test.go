package chunking

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docmind/ai/mock"
	"github.com/poiesic/docmind/core"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(mock.NewMockEmbedder(), opts...)
	require.NoError(t, err)
	return engine
}

// assertCovers checks the span contract from the caller's side: spans
// are ordered, contiguous, and with zero overlap reassemble the input.
func assertCovers(t *testing.T, text string, spans []core.Span) {
	t.Helper()
	require.NotEmpty(t, spans)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, len(text), spans[len(spans)-1].End)
	for i, s := range spans {
		assert.Equal(t, text[s.Start:s.End], s.Text, "span %d", i)
		if i > 0 {
			assert.LessOrEqual(t, s.Start, spans[i-1].End, "gap before span %d", i)
		}
	}
}

func TestRecursiveChunking(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	text := "Apples grow on trees in the orchard." +
		"\n\n" +
		"Bananas ripen quickly in warm weather." +
		"\n\n" +
		"Cherries are harvested early in summer."

	t.Run("cuts at paragraph boundaries", func(t *testing.T) {
		spans, err := engine.Chunk(ctx, text, MethodRecursive, Params{ChunkSize: 70})
		require.NoError(t, err)
		require.Len(t, spans, 3)
		assert.True(t, strings.HasPrefix(spans[0].Text, "Apples"))
		assert.True(t, strings.HasPrefix(spans[1].Text, "Bananas"))
		assert.True(t, strings.HasPrefix(spans[2].Text, "Cherries"))
		assertCovers(t, text, spans)
	})

	t.Run("zero overlap reassembles the document", func(t *testing.T) {
		spans, err := engine.Chunk(ctx, text, MethodRecursive, Params{ChunkSize: 70})
		require.NoError(t, err)
		var b strings.Builder
		for _, s := range spans {
			b.WriteString(s.Text)
		}
		assert.Equal(t, text, b.String())
	})

	t.Run("overlap extends spans backwards", func(t *testing.T) {
		spans, err := engine.Chunk(ctx, text, MethodRecursive, Params{ChunkSize: 70, Overlap: 10})
		require.NoError(t, err)
		require.Len(t, spans, 3)
		assert.Equal(t, spans[0].End-10, spans[1].Start)
		assert.Equal(t, spans[1].End-10, spans[2].Start)
		assertCovers(t, text, spans)
	})

	t.Run("small document is a single span", func(t *testing.T) {
		spans, err := engine.Chunk(ctx, "just one short line", MethodRecursive, DefaultParams())
		require.NoError(t, err)
		require.Len(t, spans, 1)
		assert.Equal(t, "just one short line", spans[0].Text)
	})

	t.Run("oversized word is hard cut", func(t *testing.T) {
		long := strings.Repeat("a", 2500)
		spans, err := engine.Chunk(ctx, long, MethodRecursive, Params{ChunkSize: 1000})
		require.NoError(t, err)
		require.Len(t, spans, 3)
		for _, s := range spans {
			assert.LessOrEqual(t, len(s.Text), 1000)
		}
		assertCovers(t, long, spans)
	})
}

func TestChunkEmptyDocument(t *testing.T) {
	engine := newTestEngine(t)

	for _, text := range []string{"", "   ", "\n\n\t\n"} {
		spans, err := engine.Chunk(context.Background(), text, MethodRecursive, DefaultParams())
		require.NoError(t, err)
		assert.Empty(t, spans)
	}
}

func TestChunkParamValidation(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	t.Run("chunk size required", func(t *testing.T) {
		_, err := engine.Chunk(ctx, "text", MethodRecursive, Params{ChunkSize: 0})
		assert.ErrorIs(t, err, core.ErrValidation)
		assert.ErrorIs(t, err, ErrChunkSizeRequired)
	})

	t.Run("overlap must be smaller than chunk size", func(t *testing.T) {
		_, err := engine.Chunk(ctx, "text", MethodRecursive, Params{ChunkSize: 100, Overlap: 100})
		assert.ErrorIs(t, err, ErrOverlapTooLarge)

		_, err = engine.Chunk(ctx, "text", MethodRecursive, Params{ChunkSize: 100, Overlap: -1})
		assert.ErrorIs(t, err, ErrOverlapTooLarge)
	})

	t.Run("threshold out of range", func(t *testing.T) {
		_, err := engine.Chunk(ctx, "text", MethodRecursive, Params{ChunkSize: 100, SemanticThreshold: 1.5})
		assert.ErrorIs(t, err, ErrThresholdRange)
	})
}

func TestChunkUnknownMethod(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Chunk(context.Background(), "text", "telepathic", DefaultParams())
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestSemanticChunking(t *testing.T) {
	text := "Apples are red fruit. Apples taste sweet. " +
		"Rockets fly to space. Rockets burn fuel."

	t.Run("cuts where similarity drops", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i, s := range texts {
				if strings.HasPrefix(s, "Apples") {
					vectors[i] = []float32{1, 0}
				} else {
					vectors[i] = []float32{0, 1}
				}
			}
			return vectors, nil
		}
		engine, err := NewEngine(embedder)
		require.NoError(t, err)

		spans, err := engine.Chunk(context.Background(), text, MethodSemantic,
			Params{ChunkSize: 1000, SemanticThreshold: 0.5})
		require.NoError(t, err)
		require.Len(t, spans, 2)
		assert.Equal(t, strings.Index(text, "Rockets"), spans[1].Start)
		assertCovers(t, text, spans)
	})

	t.Run("requires an embedder", func(t *testing.T) {
		engine, err := NewEngine(nil)
		require.NoError(t, err)
		_, err = engine.Chunk(context.Background(), text, MethodSemantic,
			Params{ChunkSize: 1000, SemanticThreshold: 0.5})
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("single sentence is one span", func(t *testing.T) {
		engine := newTestEngine(t)
		spans, err := engine.Chunk(context.Background(), "Only one sentence here",
			MethodSemantic, Params{ChunkSize: 1000, SemanticThreshold: 0.5})
		require.NoError(t, err)
		require.Len(t, spans, 1)
	})
}

func TestSectionChunking(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	t.Run("cuts at markdown headers", func(t *testing.T) {
		text := "# Intro\nWelcome to the handbook.\n\n" +
			"## Setup\nInstall the binary.\n\n" +
			"## Usage\nRun it from the shell."
		spans, err := engine.Chunk(ctx, text, MethodSection, Params{ChunkSize: 500})
		require.NoError(t, err)
		require.Len(t, spans, 3)
		assert.True(t, strings.HasPrefix(spans[0].Text, "# Intro"))
		assert.True(t, strings.HasPrefix(spans[1].Text, "## Setup"))
		assert.True(t, strings.HasPrefix(spans[2].Text, "## Usage"))
		assertCovers(t, text, spans)
	})

	t.Run("falls back to recursive without structure", func(t *testing.T) {
		spans, err := engine.Chunk(ctx, "plain text, no headers at all", MethodSection, DefaultParams())
		require.NoError(t, err)
		require.Len(t, spans, 1)
	})
}

func TestCustomSplitter(t *testing.T) {
	ctx := context.Background()

	t.Run("registered and dispatched", func(t *testing.T) {
		halves, err := NewCustomSplitter("halves", func(text string, params Params) ([]core.Span, error) {
			mid := len(text) / 2
			return []core.Span{
				{Text: text[:mid], Start: 0, End: mid},
				{Text: text[mid:], Start: mid, End: len(text)},
			}, nil
		})
		require.NoError(t, err)

		engine := newTestEngine(t, WithSplitter(halves))
		assert.Contains(t, engine.Methods(), "halves")

		spans, err := engine.Chunk(ctx, "abcdefgh", "halves", DefaultParams())
		require.NoError(t, err)
		require.Len(t, spans, 2)
		assert.Equal(t, "abcd", spans[0].Text)
		assert.Equal(t, "efgh", spans[1].Text)
	})

	t.Run("contract violations are rejected", func(t *testing.T) {
		bogus, err := NewCustomSplitter("bogus", func(text string, params Params) ([]core.Span, error) {
			return []core.Span{{Text: "wrong", Start: 0, End: 5}}, nil
		})
		require.NoError(t, err)

		engine := newTestEngine(t, WithSplitter(bogus))
		_, err = engine.Chunk(ctx, "something else entirely", "bogus", DefaultParams())
		assert.ErrorIs(t, err, ErrBadSpans)
	})

	t.Run("nil function rejected", func(t *testing.T) {
		_, err := NewCustomSplitter("nope", nil)
		assert.ErrorIs(t, err, ErrSplitFuncRequired)
	})
}

func TestMethods(t *testing.T) {
	engine := newTestEngine(t)
	assert.Equal(t, []string{MethodRecursive, MethodSection, MethodSemantic}, engine.Methods())
}
