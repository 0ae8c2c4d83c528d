package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docmind/core"
)

func TestChunkRepositoryPutAndGet(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	fileID := core.ID(42)
	chunks := []core.Chunk{
		{FileId: fileID, Index: 0, Text: "first chunk", Start: 0, End: 11, PointId: core.PointIDFor(fileID, 0)},
		{FileId: fileID, Index: 1, Text: "second chunk", Start: 11, End: 23, PointId: core.PointIDFor(fileID, 1)},
		{FileId: fileID, Index: 2, Text: "third chunk", Start: 23, End: 34, PointId: core.PointIDFor(fileID, 2)},
	}
	require.NoError(t, repos.Chunks.PutChunks(ctx, fileID, chunks))

	got, err := repos.Chunks.GetChunks(ctx, fileID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, chunk := range got {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, chunks[i].Text, chunk.Text)
		assert.Equal(t, chunks[i].PointId, chunk.PointId)
	}

	t.Run("put replaces previous set", func(t *testing.T) {
		replacement := []core.Chunk{
			{FileId: fileID, Index: 0, Text: "only chunk", Start: 0, End: 10},
		}
		require.NoError(t, repos.Chunks.PutChunks(ctx, fileID, replacement))

		got, err := repos.Chunks.GetChunks(ctx, fileID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "only chunk", got[0].Text)
	})

	t.Run("other files are isolated", func(t *testing.T) {
		got, err := repos.Chunks.GetChunks(ctx, core.ID(7))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestChunkRepositoryDelete(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	fileID := core.ID(9)
	require.NoError(t, repos.Chunks.PutChunks(ctx, fileID, []core.Chunk{
		{FileId: fileID, Index: 0, Text: "a"},
		{FileId: fileID, Index: 1, Text: "b"},
	}))

	require.NoError(t, repos.Chunks.DeleteChunks(ctx, fileID))

	got, err := repos.Chunks.GetChunks(ctx, fileID)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Deleting chunks of an unknown file is a no-op
	assert.NoError(t, repos.Chunks.DeleteChunks(ctx, core.ID(12345)))
}
