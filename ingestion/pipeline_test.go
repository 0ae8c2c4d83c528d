package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docmind/ai/mock"
	"github.com/poiesic/docmind/chunking"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
	storagebadger "github.com/poiesic/docmind/storage/badger"
	"github.com/poiesic/docmind/vectorstore"
	"github.com/poiesic/docmind/vectorstore/memory"
)

type testEnv struct {
	repos    *storagebadger.Repositories
	vectors  *memory.Store
	embedder *mock.MockEmbedder
	pipeline *Pipeline
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	repos, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	embedder := mock.NewMockEmbedder()
	engine, err := chunking.NewEngine(embedder)
	require.NoError(t, err)

	vectors := memory.NewStore()

	opts = append([]Option{WithRetry(1, time.Millisecond)}, opts...)
	pipeline, err := NewPipeline(repos.Files, repos.Chunks, repos.Metrics, vectors, engine, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &testEnv{repos: repos, vectors: vectors, embedder: embedder, pipeline: pipeline}
}

const testDoc = `Our refund policy allows returns within 14 days of purchase.

Shipping is free for orders over 50 euros. Delivery takes 3-5 business days.

Support is available around the clock through the contact form.`

func TestPipelineIngest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	record, err := env.pipeline.Ingest(ctx, "faq.txt", testDoc, nil)
	require.NoError(t, err)

	assert.Equal(t, core.FileStatusCompleted, record.Status)
	assert.Equal(t, 1, record.Attempts)
	assert.NotZero(t, record.ChunkCount)
	assert.Equal(t, vectorstore.CollectionForFile(uint64(record.Id)), record.Collection)
	assert.False(t, record.FinishedAt.IsZero())

	t.Run("chunks persisted in order", func(t *testing.T) {
		chunks, err := env.repos.Chunks.GetChunks(ctx, record.Id)
		require.NoError(t, err)
		require.Len(t, chunks, record.ChunkCount)
		for i, chunk := range chunks {
			assert.Equal(t, i, chunk.Index)
			assert.Equal(t, core.PointIDFor(record.Id, i), chunk.PointId)
		}
	})

	t.Run("vectors indexed", func(t *testing.T) {
		assert.Equal(t, record.ChunkCount, env.vectors.Count(record.Collection))
	})

	t.Run("metrics recorded", func(t *testing.T) {
		perfs, err := env.repos.Metrics.GetPerformanceRecords(ctx, record.Id)
		require.NoError(t, err)
		require.Len(t, perfs, 1)
		assert.Equal(t, chunking.MethodRecursive, perfs[0].ChunkingMethod)
		assert.Equal(t, record.ChunkCount, perfs[0].ChunkCount)
	})

	t.Run("retrieval finds the relevant chunk", func(t *testing.T) {
		query, err := env.embedder.EmbedText(ctx, "what is the refund policy?")
		require.NoError(t, err)
		hits, err := env.vectors.Search(ctx, record.Collection, vectorstore.Normalize(query), 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Contains(t, hits[0].Payload.Text, "14 days")
	})
}

func TestPipelineDuplicateShortCircuit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.pipeline.Ingest(ctx, "faq.txt", testDoc, nil)
	require.NoError(t, err)

	// Same content under a different filename
	dup, err := env.pipeline.Ingest(ctx, "copy.md", testDoc, nil)
	assert.ErrorIs(t, err, ErrDuplicateDocument)
	require.NotNil(t, dup)
	assert.Equal(t, first.Id, dup.Id)
}

func TestPipelineValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := env.pipeline.Ingest(ctx, "report.pdf", testDoc, nil)
		assert.ErrorIs(t, err, core.ErrUnsupportedFileType)
	})

	t.Run("blank document", func(t *testing.T) {
		_, err := env.pipeline.Ingest(ctx, "empty.txt", "   \n\t  ", nil)
		assert.ErrorIs(t, err, core.ErrEmptyDocument)
	})

	t.Run("oversized document", func(t *testing.T) {
		env := newTestEnv(t, WithMaxFileSize(10))
		_, err := env.pipeline.Ingest(ctx, "big.txt", testDoc, nil)
		assert.ErrorIs(t, err, core.ErrFileTooLarge)
	})

	t.Run("bad chunk params", func(t *testing.T) {
		params := chunking.Params{ChunkSize: 100, Overlap: 100}
		_, err := env.pipeline.Ingest(ctx, "doc.txt", testDoc, &IngestOptions{Params: &params})
		assert.ErrorIs(t, err, core.ErrValidation)
	})
}

func TestPipelineEmbeddingFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	embedErr := errors.New("provider unavailable")
	env.embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, embedErr
	}

	// The pipeline reports stage failures on the record, not as an error.
	record, err := env.pipeline.Ingest(ctx, "faq.txt", testDoc, nil)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, core.FileStatusFailed, record.Status)
	assert.Equal(t, StageEmbedding, record.FailedStage)
	assert.Contains(t, record.ErrorDetail, "provider unavailable")

	t.Run("requeue and resume succeeds", func(t *testing.T) {
		env.embedder.EmbedTextsFunc = nil

		_, err := env.pipeline.Tracker().Requeue(ctx, record.Id)
		require.NoError(t, err)

		resumed, err := env.pipeline.Resume(ctx, record.Id, testDoc, nil)
		require.NoError(t, err)
		assert.Equal(t, core.FileStatusCompleted, resumed.Status)
		assert.Equal(t, 2, resumed.Attempts)
		assert.Empty(t, resumed.FailedStage)
	})
}

func TestPipelineFailedDuplicateRetry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	embedErr := errors.New("provider unavailable")
	env.embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, embedErr
	}

	failed, err := env.pipeline.Ingest(ctx, "faq.txt", testDoc, nil)
	require.NoError(t, err)
	require.Equal(t, core.FileStatusFailed, failed.Status)

	// Re-uploading the same content surfaces the failed record, not a fresh one.
	dup, err := env.pipeline.Ingest(ctx, "faq.txt", testDoc, nil)
	assert.ErrorIs(t, err, ErrDuplicateDocument)
	require.NotNil(t, dup)
	assert.Equal(t, failed.Id, dup.Id)
	assert.Equal(t, core.FileStatusFailed, dup.Status)

	// A retried upload requeues the record and reprocesses it in place.
	env.embedder.EmbedTextsFunc = nil
	_, err = env.pipeline.Tracker().Requeue(ctx, dup.Id)
	require.NoError(t, err)
	resumed, err := env.pipeline.Resume(ctx, dup.Id, testDoc, nil)
	require.NoError(t, err)
	assert.Equal(t, core.FileStatusCompleted, resumed.Status)
	assert.NotZero(t, resumed.ChunkCount)
}

func TestPipelineResumeContentMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	record, err := env.pipeline.Ingest(ctx, "faq.txt", testDoc, nil)
	require.NoError(t, err)

	_, err = env.pipeline.Resume(ctx, record.Id, "entirely different content", nil)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestPipelineDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	record, err := env.pipeline.Ingest(ctx, "faq.txt", testDoc, nil)
	require.NoError(t, err)

	require.NoError(t, env.pipeline.Delete(ctx, record.Id))

	_, err = env.repos.Files.GetFileRecord(ctx, record.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	chunks, err := env.repos.Chunks.GetChunks(ctx, record.Id)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	assert.Equal(t, 0, env.vectors.Count(record.Collection))

	t.Run("content can be re-ingested", func(t *testing.T) {
		again, err := env.pipeline.Ingest(ctx, "faq.txt", testDoc, nil)
		require.NoError(t, err)
		assert.Equal(t, core.FileStatusCompleted, again.Status)
	})
}

func TestPipelineSharedCollection(t *testing.T) {
	env := newTestEnv(t, WithSharedCollection("documents"))
	ctx := context.Background()

	first, err := env.pipeline.Ingest(ctx, "faq.txt", testDoc, nil)
	require.NoError(t, err)
	second, err := env.pipeline.Ingest(ctx, "other.txt", "Completely unrelated text about gardening tools.", nil)
	require.NoError(t, err)

	assert.Equal(t, "documents", first.Collection)
	assert.Equal(t, "documents", second.Collection)
	total := first.ChunkCount + second.ChunkCount
	assert.Equal(t, total, env.vectors.Count("documents"))

	// Deleting one file removes only its points
	require.NoError(t, env.pipeline.Delete(ctx, first.Id))
	assert.Equal(t, second.ChunkCount, env.vectors.Count("documents"))
}

func TestStatusTrackerRecoverStale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	record := &core.FileRecord{Filename: "stuck.txt", ContentHash: core.IDFromContent("stuck"), FileType: ".txt"}
	_, err := env.repos.Files.AddFileRecord(ctx, record)
	require.NoError(t, err)
	_, err = env.repos.Files.TransitionStatus(ctx, record.Id,
		core.FileStatusUploaded, core.FileStatusProcessing, nil)
	require.NoError(t, err)

	// The record was just updated; a long cutoff finds nothing.
	recovered, err := env.pipeline.Tracker().RecoverStale(ctx, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, recovered)

	// A zero cutoff treats it as stale immediately.
	recovered, err = env.pipeline.Tracker().RecoverStale(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recovered, 1)
	assert.Equal(t, record.Id, recovered[0])

	got, err := env.repos.Files.GetFileRecord(ctx, record.Id)
	require.NoError(t, err)
	assert.Equal(t, core.FileStatusFailed, got.Status)
	assert.Equal(t, "recovery", got.FailedStage)
}

func TestStatusTrackerSingleActiveAttempt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	record := &core.FileRecord{Filename: "doc.txt", ContentHash: core.IDFromContent("doc"), FileType: ".txt"}
	_, err := env.repos.Files.AddFileRecord(ctx, record)
	require.NoError(t, err)

	tracker := env.pipeline.Tracker()
	_, err = tracker.Begin(ctx, record.Id)
	require.NoError(t, err)

	_, err = tracker.Begin(ctx, record.Id)
	assert.ErrorIs(t, err, ErrIngestInProgress)

	_, err = tracker.Complete(ctx, record.Id, nil)
	require.NoError(t, err)
}
