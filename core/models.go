package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// PointIDFor derives the vector-store point ID for a chunk of a file.
// The ID depends only on the file ID and chunk index, so a retried
// ingestion attempt overwrites the same points instead of duplicating them.
func PointIDFor(fileID ID, chunkIndex int) ID {
	return IDFromContent(fmt.Sprintf("point:%d:%d", fileID, chunkIndex))
}

// FileStatus is the lifecycle state of an ingested file.
type FileStatus int

const (
	// FileStatusUploaded means the file is accepted but not yet processed.
	FileStatusUploaded FileStatus = iota + 1
	// FileStatusProcessing means an ingestion attempt is in flight.
	FileStatusProcessing
	// FileStatusCompleted means all chunks are embedded and indexed.
	FileStatusCompleted
	// FileStatusFailed means the last ingestion attempt failed.
	FileStatusFailed
)

// String returns the lowercase name of the status.
func (s FileStatus) String() string {
	switch s {
	case FileStatusUploaded:
		return "uploaded"
	case FileStatusProcessing:
		return "processing"
	case FileStatusCompleted:
		return "completed"
	case FileStatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseFileStatus parses a status name as produced by FileStatus.String.
func ParseFileStatus(s string) (FileStatus, error) {
	switch s {
	case "uploaded":
		return FileStatusUploaded, nil
	case "processing":
		return FileStatusProcessing, nil
	case "completed":
		return FileStatusCompleted, nil
	case "failed":
		return FileStatusFailed, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFileStatus, s)
	}
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Uploaded -> Processing -> {Completed, Failed}; Failed may be requeued to
// Uploaded for a new attempt. No transition skips Processing.
func (s FileStatus) CanTransitionTo(next FileStatus) bool {
	switch s {
	case FileStatusUploaded:
		return next == FileStatusProcessing
	case FileStatusProcessing:
		return next == FileStatusCompleted || next == FileStatusFailed
	case FileStatusFailed:
		return next == FileStatusUploaded
	default:
		return false
	}
}

// FileRecord tracks an ingested file from upload through indexing.
// It is owned by the status tracker and mutated only through defined
// state transitions.
type FileRecord struct {
	Id             ID
	Filename       string // original client-supplied filename
	ContentHash    ID     // BLAKE2b hash of the cleaned document text
	SizeBytes      int64
	FileType       string // lowercase extension, e.g. ".txt"
	ChunkingMethod string
	EmbeddingModel string
	Collection     string // vector-store collection holding this file's points
	Status         FileStatus
	ChunkCount     int
	Attempts       int    // ingestion attempts started for this record
	FailedStage    string // pipeline stage of the last failure, empty otherwise
	ErrorDetail    string

	// Per-stage timings of the last successful attempt, in seconds.
	ChunkingSeconds  float64
	EmbeddingSeconds float64
	IndexingSeconds  float64

	UploadedAt time.Time
	StartedAt  time.Time // when the current/last attempt entered Processing
	FinishedAt time.Time // when the record reached Completed or Failed
	UpdatedAt  time.Time
}

// Chunk is a contiguous text segment of a file, the unit of embedding
// and retrieval. Chunks of a file have contiguous 0-based indices that
// are stable across retries.
type Chunk struct {
	FileId  ID
	Index   int
	Text    string
	Start   int // byte offset of the span in the cleaned document
	End     int
	PointId ID // vector-store point holding this chunk's embedding
}

// Span is a chunking output segment: a slice of the source document
// together with its byte offsets.
type Span struct {
	Text  string
	Start int
	End   int
}

// Speaker identifies the source of a conversation turn.
type Speaker int

const (
	// SpeakerUser represents the human user.
	SpeakerUser Speaker = iota + 1
	// SpeakerAgent represents the answering agent.
	SpeakerAgent
)

// String returns the lowercase name of the speaker.
func (s Speaker) String() string {
	switch s {
	case SpeakerUser:
		return "user"
	case SpeakerAgent:
		return "agent"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Turn is a single message in a session's conversation history.
type Turn struct {
	Speaker   Speaker
	Text      string
	Timestamp time.Time
}

// PerformanceRecord captures timing statistics for one ingestion attempt.
// Records are append-only and aggregated on read.
type PerformanceRecord struct {
	Id             ID
	FileId         ID
	ChunkingMethod string
	EmbeddingModel string
	ChunkCount     int

	ChunkingSeconds  float64
	EmbeddingSeconds float64
	IndexingSeconds  float64
	TotalSeconds     float64

	// RecallEstimate is an optional retrieval-quality estimate in [0,1].
	// Zero means unmeasured; the pipeline does not populate it.
	RecallEstimate float64

	RecordedAt time.Time
}

// PerformanceAggregate summarizes performance records sharing a
// (chunking method, embedding model) pair.
type PerformanceAggregate struct {
	ChunkingMethod string
	EmbeddingModel string
	Files          int
	TotalChunks    int

	MeanChunkingSeconds  float64
	MeanEmbeddingSeconds float64
	MeanIndexingSeconds  float64
	MeanTotalSeconds     float64
}

// Booking is an interview booking created by the agent's booking tool.
type Booking struct {
	Id        ID
	FullName  string
	Email     string
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	Message   string
	Status    string // "pending" or "confirmed"
	CreatedAt time.Time
}
