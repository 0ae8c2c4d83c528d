package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

// StatusTracker enforces the file lifecycle on top of the file
// repository. It guarantees at most one active ingestion attempt per
// file within this process and records stage failures.
type StatusTracker struct {
	files  storage.FileRepository
	logger *slog.Logger

	mu     sync.Mutex
	active map[core.ID]struct{}
}

// NewStatusTracker creates a tracker over the file repository.
func NewStatusTracker(files storage.FileRepository, logger *slog.Logger) *StatusTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusTracker{
		files:  files,
		logger: logger,
		active: make(map[core.ID]struct{}),
	}
}

// Begin moves a file from Uploaded to Processing and marks it active.
// Returns ErrIngestInProgress if an attempt is already running here,
// or storage.ErrStatusConflict if another process claimed the file.
func (t *StatusTracker) Begin(ctx context.Context, id core.ID) (*core.FileRecord, error) {
	t.mu.Lock()
	if _, running := t.active[id]; running {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: file %d", ErrIngestInProgress, id)
	}
	t.active[id] = struct{}{}
	t.mu.Unlock()

	record, err := t.files.TransitionStatus(ctx, id,
		core.FileStatusUploaded, core.FileStatusProcessing,
		func(r *core.FileRecord) {
			r.Attempts++
			r.StartedAt = time.Now().UTC()
			r.FailedStage = ""
			r.ErrorDetail = ""
		})
	if err != nil {
		t.release(id)
		return nil, err
	}
	t.logger.Info("ingestion started", "file", id, "attempt", record.Attempts)
	return record, nil
}

// Complete moves an active file from Processing to Completed.
// mutate is applied inside the transaction, typically to record chunk
// counts and stage timings.
func (t *StatusTracker) Complete(ctx context.Context, id core.ID, mutate func(*core.FileRecord)) (*core.FileRecord, error) {
	defer t.release(id)

	record, err := t.files.TransitionStatus(ctx, id,
		core.FileStatusProcessing, core.FileStatusCompleted,
		func(r *core.FileRecord) {
			r.FinishedAt = time.Now().UTC()
			if mutate != nil {
				mutate(r)
			}
		})
	if err != nil {
		return nil, err
	}
	t.logger.Info("ingestion completed", "file", id, "chunks", record.ChunkCount)
	return record, nil
}

// Fail moves an active file from Processing to Failed, recording the
// stage and error that caused the failure.
func (t *StatusTracker) Fail(ctx context.Context, id core.ID, stage string, cause error) (*core.FileRecord, error) {
	defer t.release(id)

	record, err := t.files.TransitionStatus(ctx, id,
		core.FileStatusProcessing, core.FileStatusFailed,
		func(r *core.FileRecord) {
			r.FinishedAt = time.Now().UTC()
			r.FailedStage = stage
			if cause != nil {
				r.ErrorDetail = cause.Error()
			}
		})
	if err != nil {
		return nil, err
	}
	t.logger.Warn("ingestion failed", "file", id, "stage", stage, "err", cause)
	return record, nil
}

// Requeue moves a Failed file back to Uploaded so it can be retried.
func (t *StatusTracker) Requeue(ctx context.Context, id core.ID) (*core.FileRecord, error) {
	record, err := t.files.TransitionStatus(ctx, id,
		core.FileStatusFailed, core.FileStatusUploaded,
		func(r *core.FileRecord) {
			r.FailedStage = ""
			r.ErrorDetail = ""
		})
	if err != nil {
		return nil, err
	}
	t.logger.Info("file requeued", "file", id)
	return record, nil
}

// RecoverStale finds files stuck in Processing with no active attempt
// in this process and older than the cutoff, and marks them Failed so
// they can be requeued. Returns the recovered file IDs.
func (t *StatusTracker) RecoverStale(ctx context.Context, olderThan time.Duration) ([]core.ID, error) {
	records, err := t.files.ListFileRecords(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-olderThan)
	var recovered []core.ID
	for _, record := range records {
		if record.Status != core.FileStatusProcessing {
			continue
		}
		if t.isActive(record.Id) {
			continue
		}
		if record.UpdatedAt.After(cutoff) {
			continue
		}

		_, err := t.files.TransitionStatus(ctx, record.Id,
			core.FileStatusProcessing, core.FileStatusFailed,
			func(r *core.FileRecord) {
				r.FinishedAt = time.Now().UTC()
				r.FailedStage = "recovery"
				r.ErrorDetail = "processing interrupted"
			})
		if err != nil {
			// Lost a race with a live attempt; leave it alone.
			t.logger.Debug("skipping stale recovery", "file", record.Id, "err", err)
			continue
		}
		t.logger.Warn("recovered stale file", "file", record.Id)
		recovered = append(recovered, record.Id)
	}
	return recovered, nil
}

func (t *StatusTracker) isActive(id core.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[id]
	return ok
}

func (t *StatusTracker) release(id core.ID) {
	t.mu.Lock()
	delete(t.active, id)
	t.mu.Unlock()
}
