package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

// FileRepository implements storage.FileRepository for BadgerDB.
type FileRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.FileRepository = (*FileRepository)(nil)

// NewFileRepository creates a new FileRepository.
func NewFileRepository(backend *Backend) (*FileRepository, error) {
	idSeq, err := backend.GetSequence(fileIDSeq)
	if err != nil {
		return nil, err
	}

	return &FileRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *FileRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *FileRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddFileRecord adds a file record to storage.
func (r *FileRepository) AddFileRecord(ctx context.Context, record *core.FileRecord) (*core.FileRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if record.Id == 0 {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			record.Id = core.ID(nextID)
		}

		now := time.Now().UTC()
		if record.UploadedAt.IsZero() {
			record.UploadedAt = now
		}
		record.UpdatedAt = now
		if record.Status == 0 {
			record.Status = core.FileStatusUploaded
		}

		// Reject a second live record with the same content hash
		if record.ContentHash != 0 {
			hashKey := makeFileHashKey(record.ContentHash)
			if _, err := tx.Get(hashKey); err == nil {
				return fmt.Errorf("%w: content hash %d", storage.ErrDuplicateKey, record.ContentHash)
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			if err := tx.Set(hashKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}

		key := makeFileRecordKey(record.Id)
		if err := tx.Set(key, storage.MarshalFileRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return record, err
}

// GetFileRecord retrieves a file record by ID.
func (r *FileRepository) GetFileRecord(ctx context.Context, id core.ID) (*core.FileRecord, error) {
	var result *core.FileRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readFileRecord(tx, makeFileRecordKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListFileRecords retrieves all file records, ordered by ID.
func (r *FileRepository) ListFileRecords(ctx context.Context) ([]*core.FileRecord, error) {
	var results []*core.FileRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fileRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.FileRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalFileRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)
	return results, err
}

// FindByContentHash finds a file record by document content hash.
func (r *FileRepository) FindByContentHash(ctx context.Context, hash core.ID) (*core.FileRecord, error) {
	var result *core.FileRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFileHashKey(hash))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var fileID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			fileID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readFileRecord(tx, makeFileRecordKey(fileID))
		if err != nil {
			return err
		}
		if result == nil {
			// Index entry pointing at a deleted record
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// TransitionStatus atomically moves a record from one status to another.
func (r *FileRepository) TransitionStatus(ctx context.Context, id core.ID, from, to core.FileStatus, mutate func(*core.FileRecord)) (*core.FileRecord, error) {
	var result *core.FileRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeFileRecordKey(id)
		record, err := readFileRecord(tx, key)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		if record.Status != from {
			return fmt.Errorf("%w: file %d is %s, expected %s",
				storage.ErrStatusConflict, id, record.Status, from)
		}
		if !from.CanTransitionTo(to) {
			return fmt.Errorf("%w: %s -> %s", core.ErrInvalidFileStatus, from, to)
		}

		record.Status = to
		record.UpdatedAt = time.Now().UTC()
		if mutate != nil {
			mutate(record)
		}

		if err := tx.Set(key, storage.MarshalFileRecord(record)); err != nil {
			return err
		}
		result = record
		return tx.Commit()
	}, true)
	return result, err
}

// DeleteFileRecord removes a file record and its content-hash index.
func (r *FileRepository) DeleteFileRecord(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeFileRecordKey(id)
		record, err := readFileRecord(tx, key)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}

		if record.ContentHash != 0 {
			if err := tx.Delete(makeFileHashKey(record.ContentHash)); err != nil {
				return err
			}
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readFileRecord reads a file record from the transaction.
// Returns nil without error when the key is absent.
func readFileRecord(tx *badger.Txn, key []byte) (*core.FileRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.FileRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalFileRecord(val)
		return unmarshalErr
	})
	return record, err
}
