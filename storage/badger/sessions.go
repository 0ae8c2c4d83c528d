package badger

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
// Turns are keyed by a monotonic per-session sequence so iteration
// yields them in append order.
type SessionRepository struct {
	backend *Backend

	// mu serializes appends; the per-session sequence counter is
	// read-modify-write.
	mu sync.Mutex
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend) (*SessionRepository, error) {
	return &SessionRepository{backend: backend}, nil
}

// Close is a no-op; the repository holds no sequences.
func (r *SessionRepository) Close() error { return nil }

// WithTransaction delegates to the backend.
func (r *SessionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AppendTurns appends turns to a session's history in order, evicting
// the oldest turns when the history exceeds maxTurns.
func (r *SessionRepository) AppendTurns(ctx context.Context, sessionID string, maxTurns int, turns ...core.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		// Find the current sequence range for the session.
		firstSeq, nextSeq, count, err := sessionSeqRange(tx, sessionID)
		if err != nil {
			return err
		}

		for i := range turns {
			key := makeSessionTurnKey(sessionID, nextSeq)
			if err := tx.Set(key, storage.MarshalTurn(&turns[i])); err != nil {
				return err
			}
			nextSeq++
			count++
		}

		// Evict oldest turns beyond the cap.
		if maxTurns > 0 {
			for count > maxTurns {
				if err := tx.Delete(makeSessionTurnKey(sessionID, firstSeq)); err != nil {
					return err
				}
				firstSeq++
				count--
			}
		}
		return tx.Commit()
	}, true)
}

// GetTurns retrieves a session's turns in chronological order.
func (r *SessionRepository) GetTurns(ctx context.Context, sessionID string) ([]core.Turn, error) {
	var results []core.Turn
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSessionPrefix(sessionID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var turn *core.Turn
			err := iter.Item().Value(func(val []byte) error {
				var err error
				turn, err = storage.UnmarshalTurn(val)
				return err
			})
			if err != nil {
				return err
			}
			if turn != nil {
				results = append(results, *turn)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteSession removes a session's history.
func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var keys [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSessionPrefix(sessionID)
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

// sessionSeqRange scans a session's keys and returns the first live
// sequence number, the next free one, and the live turn count.
func sessionSeqRange(tx *badger.Txn, sessionID string) (firstSeq, nextSeq uint64, count int, err error) {
	prefix := makeSessionPrefix(sessionID)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	first := true
	for iter.Rewind(); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		seq := binary.BigEndian.Uint64(key[len(prefix):])
		if first {
			firstSeq = seq
			first = false
		}
		nextSeq = seq + 1
		count++
	}
	return firstSeq, nextSeq, count, nil
}
