package storage

import (
	"context"

	"github.com/poiesic/docmind/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// FileRepository provides operations for managing file records.
type FileRepository interface {
	Repository

	// AddFileRecord adds a file record to storage.
	// For records with ID=0, generates a new ID from sequence.
	// Sets UploadedAt and UpdatedAt timestamps if not already set.
	AddFileRecord(ctx context.Context, record *core.FileRecord) (*core.FileRecord, error)

	// GetFileRecord retrieves a file record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetFileRecord(ctx context.Context, id core.ID) (*core.FileRecord, error)

	// ListFileRecords retrieves all file records, ordered by ID.
	ListFileRecords(ctx context.Context) ([]*core.FileRecord, error)

	// FindByContentHash finds a file record by document content hash.
	// Returns ErrNotFound if no record has the given hash.
	FindByContentHash(ctx context.Context, hash core.ID) (*core.FileRecord, error)

	// TransitionStatus atomically moves a record from one status to
	// another. The record is re-read inside the transaction; the move
	// fails with ErrStatusConflict if its status is no longer `from`,
	// and with core.ErrInvalidFileStatus if the lifecycle forbids the
	// transition. mutate, if non-nil, is applied to the record inside
	// the same transaction after the status change.
	TransitionStatus(ctx context.Context, id core.ID, from, to core.FileStatus, mutate func(*core.FileRecord)) (*core.FileRecord, error)

	// DeleteFileRecord removes a file record and its content-hash index.
	// Returns ErrNotFound if the record doesn't exist.
	DeleteFileRecord(ctx context.Context, id core.ID) error
}

// ChunkRepository provides operations for managing a file's chunks.
type ChunkRepository interface {
	Repository

	// PutChunks stores the chunks of a file, replacing any previous set.
	PutChunks(ctx context.Context, fileID core.ID, chunks []core.Chunk) error

	// GetChunks retrieves a file's chunks ordered by index.
	GetChunks(ctx context.Context, fileID core.ID) ([]core.Chunk, error)

	// DeleteChunks removes all chunks of a file. Removing chunks of an
	// unknown file is a no-op.
	DeleteChunks(ctx context.Context, fileID core.ID) error
}

// SessionRepository provides operations for persisted conversation history.
type SessionRepository interface {
	Repository

	// AppendTurns appends turns to a session's history in order.
	// When the history exceeds maxTurns, the oldest turns are evicted.
	// maxTurns <= 0 means unbounded.
	AppendTurns(ctx context.Context, sessionID string, maxTurns int, turns ...core.Turn) error

	// GetTurns retrieves a session's turns in chronological order.
	// An unknown session yields an empty history, not an error.
	GetTurns(ctx context.Context, sessionID string) ([]core.Turn, error)

	// DeleteSession removes a session's history. Unknown sessions are a
	// no-op.
	DeleteSession(ctx context.Context, sessionID string) error
}

// MetricsRepository provides operations for ingestion performance records.
type MetricsRepository interface {
	Repository

	// AddPerformanceRecord appends a performance record.
	// For records with ID=0, generates a new ID from sequence.
	// Sets RecordedAt if not already set.
	AddPerformanceRecord(ctx context.Context, record *core.PerformanceRecord) (*core.PerformanceRecord, error)

	// GetPerformanceRecords retrieves performance records for a file,
	// ordered by insertion.
	GetPerformanceRecords(ctx context.Context, fileID core.ID) ([]*core.PerformanceRecord, error)

	// AggregatePerformance groups all performance records by
	// (chunking method, embedding model) and returns per-group means.
	AggregatePerformance(ctx context.Context) ([]*core.PerformanceAggregate, error)
}

// BookingRepository provides operations for interview bookings.
type BookingRepository interface {
	Repository

	// AddBooking adds a booking.
	// For bookings with ID=0, generates a new ID from sequence.
	// Sets CreatedAt and a "pending" status if not already set.
	AddBooking(ctx context.Context, booking *core.Booking) (*core.Booking, error)

	// GetBooking retrieves a booking by ID.
	// Returns ErrNotFound if the booking doesn't exist.
	GetBooking(ctx context.Context, id core.ID) (*core.Booking, error)

	// ListBookings retrieves all bookings, ordered by ID.
	ListBookings(ctx context.Context) ([]*core.Booking, error)
}
