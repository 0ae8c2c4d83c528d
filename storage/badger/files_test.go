package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

func TestFileRepositoryAddAndGet(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	record := &core.FileRecord{
		Filename:       "handbook.txt",
		ContentHash:    core.IDFromContent("handbook contents"),
		SizeBytes:      1024,
		FileType:       ".txt",
		ChunkingMethod: "recursive",
		EmbeddingModel: "mock-embedder",
	}

	added, err := repos.Files.AddFileRecord(ctx, record)
	require.NoError(t, err)
	assert.NotZero(t, added.Id)
	assert.Equal(t, core.FileStatusUploaded, added.Status)
	assert.False(t, added.UploadedAt.IsZero())

	got, err := repos.Files.GetFileRecord(ctx, added.Id)
	require.NoError(t, err)
	assert.Equal(t, "handbook.txt", got.Filename)
	assert.Equal(t, record.ContentHash, got.ContentHash)

	t.Run("missing record", func(t *testing.T) {
		_, err := repos.Files.GetFileRecord(ctx, 99999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("duplicate content hash rejected", func(t *testing.T) {
		dup := &core.FileRecord{
			Filename:    "handbook-copy.txt",
			ContentHash: record.ContentHash,
			FileType:    ".txt",
		}
		_, err := repos.Files.AddFileRecord(ctx, dup)
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})
}

func TestFileRepositoryFindByContentHash(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	hash := core.IDFromContent("unique document")
	record := &core.FileRecord{Filename: "doc.txt", ContentHash: hash, FileType: ".txt"}
	_, err := repos.Files.AddFileRecord(ctx, record)
	require.NoError(t, err)

	found, err := repos.Files.FindByContentHash(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, record.Id, found.Id)

	_, err = repos.Files.FindByContentHash(ctx, core.IDFromContent("other"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFileRepositoryTransitionStatus(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	record := &core.FileRecord{Filename: "doc.txt", FileType: ".txt"}
	_, err := repos.Files.AddFileRecord(ctx, record)
	require.NoError(t, err)

	t.Run("uploaded to processing", func(t *testing.T) {
		updated, err := repos.Files.TransitionStatus(ctx, record.Id,
			core.FileStatusUploaded, core.FileStatusProcessing,
			func(r *core.FileRecord) { r.Attempts++ })
		require.NoError(t, err)
		assert.Equal(t, core.FileStatusProcessing, updated.Status)
		assert.Equal(t, 1, updated.Attempts)
	})

	t.Run("stale expectation conflicts", func(t *testing.T) {
		_, err := repos.Files.TransitionStatus(ctx, record.Id,
			core.FileStatusUploaded, core.FileStatusProcessing, nil)
		assert.ErrorIs(t, err, storage.ErrStatusConflict)
	})

	t.Run("illegal transition rejected", func(t *testing.T) {
		_, err := repos.Files.TransitionStatus(ctx, record.Id,
			core.FileStatusProcessing, core.FileStatusUploaded, nil)
		assert.ErrorIs(t, err, core.ErrInvalidFileStatus)
	})

	t.Run("processing to completed", func(t *testing.T) {
		updated, err := repos.Files.TransitionStatus(ctx, record.Id,
			core.FileStatusProcessing, core.FileStatusCompleted,
			func(r *core.FileRecord) { r.ChunkCount = 7 })
		require.NoError(t, err)
		assert.Equal(t, core.FileStatusCompleted, updated.Status)
		assert.Equal(t, 7, updated.ChunkCount)
	})

	t.Run("unknown record", func(t *testing.T) {
		_, err := repos.Files.TransitionStatus(ctx, 99999,
			core.FileStatusUploaded, core.FileStatusProcessing, nil)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestFileRepositoryDelete(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	hash := core.IDFromContent("deletable")
	record := &core.FileRecord{Filename: "doc.txt", ContentHash: hash, FileType: ".txt"}
	_, err := repos.Files.AddFileRecord(ctx, record)
	require.NoError(t, err)

	require.NoError(t, repos.Files.DeleteFileRecord(ctx, record.Id))

	_, err = repos.Files.GetFileRecord(ctx, record.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Hash index must be cleaned up so the content can be re-uploaded
	_, err = repos.Files.FindByContentHash(ctx, hash)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, repos.Files.DeleteFileRecord(ctx, record.Id), storage.ErrNotFound)
}

func TestFileRepositoryList(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repos.Files.AddFileRecord(ctx, &core.FileRecord{
			Filename:    "doc.txt",
			ContentHash: core.IDFromContent(string(rune('a' + i))),
			FileType:    ".txt",
		})
		require.NoError(t, err)
	}

	records, err := repos.Files.ListFileRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.Less(t, records[i-1].Id, records[i].Id)
	}
}
