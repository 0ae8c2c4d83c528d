package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	return &ChunkRepository{backend: backend}, nil
}

// Close is a no-op; the repository holds no sequences.
func (r *ChunkRepository) Close() error { return nil }

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutChunks stores the chunks of a file, replacing any previous set.
func (r *ChunkRepository) PutChunks(ctx context.Context, fileID core.ID, chunks []core.Chunk) error {
	// Delete first so a re-chunk with fewer chunks leaves no stragglers.
	if err := r.DeleteChunks(ctx, fileID); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for i := range chunks {
			chunk := chunks[i]
			key := makeChunkKey(fileID, chunk.Index)
			if err := tx.Set(key, storage.MarshalChunk(&chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunks retrieves a file's chunks ordered by index.
func (r *ChunkRepository) GetChunks(ctx context.Context, fileID core.ID) ([]core.Chunk, error) {
	var results []core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(fileID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, *chunk)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteChunks removes all chunks of a file.
func (r *ChunkRepository) DeleteChunks(ctx context.Context, fileID core.ID) error {
	// Collect keys under a read transaction, then delete. Badger
	// forbids deleting while iterating in the same write txn batch.
	var keys [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(fileID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
