// Package ingestion provides pipeline orchestration for processing documents.
//
// The Pipeline type manages the ingestion workflow for uploaded files:
//   - Validating and cleaning document text
//   - Detecting duplicate content by hash
//   - Chunking with the configured strategy
//   - Generating embeddings in concurrent batches
//   - Indexing vectors and persisting chunk metadata
//
// Embedding batches are processed concurrently using a worker pool to
// maximize throughput. The StatusTracker drives each file's lifecycle
// (uploaded, processing, completed, failed) and guarantees at most one
// active attempt per file within a process.
package ingestion
