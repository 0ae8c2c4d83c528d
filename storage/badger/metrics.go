package badger

import (
	"context"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

// MetricsRepository implements storage.MetricsRepository for BadgerDB.
// Performance records are append-only; aggregates are computed on read.
type MetricsRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.MetricsRepository = (*MetricsRepository)(nil)

// NewMetricsRepository creates a new MetricsRepository.
func NewMetricsRepository(backend *Backend) (*MetricsRepository, error) {
	idSeq, err := backend.GetSequence(perfIDSeq)
	if err != nil {
		return nil, err
	}

	return &MetricsRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *MetricsRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *MetricsRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddPerformanceRecord appends a performance record.
func (r *MetricsRepository) AddPerformanceRecord(ctx context.Context, record *core.PerformanceRecord) (*core.PerformanceRecord, error) {
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
		if record.RecordedAt.IsZero() {
			record.RecordedAt = time.Now().UTC()
		}

		key := makePerfRecordKey(record.Id)
		if err := tx.Set(key, storage.MarshalPerformanceRecord(record)); err != nil {
			return err
		}

		// Per-file index for timing lookups by file
		indexKey := makePerfFileKey(record.FileId, record.Id)
		if err := tx.Set(indexKey, storage.MarshalID(record.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return record, err
}

// GetPerformanceRecords retrieves performance records for a file.
func (r *MetricsRepository) GetPerformanceRecords(ctx context.Context, fileID core.ID) ([]*core.PerformanceRecord, error) {
	var results []*core.PerformanceRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePerfFilePrefix(fileID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var recordID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				recordID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			item, err := tx.Get(makePerfRecordKey(recordID))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			var record *core.PerformanceRecord
			if err := item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalPerformanceRecord(val)
				return err
			}); err != nil {
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

// AggregatePerformance groups all performance records by
// (chunking method, embedding model) and returns per-group means.
func (r *MetricsRepository) AggregatePerformance(ctx context.Context) ([]*core.PerformanceAggregate, error) {
	type groupKey struct {
		method string
		model  string
	}
	type groupSum struct {
		files     int
		chunks    int
		chunking  float64
		embedding float64
		indexing  float64
		total     float64
	}
	groups := make(map[groupKey]*groupSum)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(perfRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.PerformanceRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalPerformanceRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}

			key := groupKey{method: record.ChunkingMethod, model: record.EmbeddingModel}
			sum, ok := groups[key]
			if !ok {
				sum = &groupSum{}
				groups[key] = sum
			}
			sum.files++
			sum.chunks += record.ChunkCount
			sum.chunking += record.ChunkingSeconds
			sum.embedding += record.EmbeddingSeconds
			sum.indexing += record.IndexingSeconds
			sum.total += record.TotalSeconds
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	results := make([]*core.PerformanceAggregate, 0, len(groups))
	for key, sum := range groups {
		n := float64(sum.files)
		results = append(results, &core.PerformanceAggregate{
			ChunkingMethod:       key.method,
			EmbeddingModel:       key.model,
			Files:                sum.files,
			TotalChunks:          sum.chunks,
			MeanChunkingSeconds:  sum.chunking / n,
			MeanEmbeddingSeconds: sum.embedding / n,
			MeanIndexingSeconds:  sum.indexing / n,
			MeanTotalSeconds:     sum.total / n,
		})
	}

	// Deterministic output order
	sort.Slice(results, func(i, j int) bool {
		if results[i].ChunkingMethod != results[j].ChunkingMethod {
			return results[i].ChunkingMethod < results[j].ChunkingMethod
		}
		return results[i].EmbeddingModel < results[j].EmbeddingModel
	})
	return results, nil
}
