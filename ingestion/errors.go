// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import "errors"

var (
	// ErrFileRepositoryRequired indicates a nil file repository was provided.
	ErrFileRepositoryRequired = errors.New("file repository is required")

	// ErrChunkRepositoryRequired indicates a nil chunk repository was provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository is required")

	// ErrMetricsRepositoryRequired indicates a nil metrics repository was provided.
	ErrMetricsRepositoryRequired = errors.New("metrics repository is required")

	// ErrVectorStoreRequired indicates a nil vector store was provided.
	ErrVectorStoreRequired = errors.New("vector store is required")

	// ErrEmbedderRequired indicates a nil embedder was provided.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrEngineRequired indicates a nil chunking engine was provided.
	ErrEngineRequired = errors.New("chunking engine is required")

	// ErrDuplicateDocument indicates the document content is already
	// ingested. The existing record is returned alongside this error.
	ErrDuplicateDocument = errors.New("document already ingested")

	// ErrIngestInProgress indicates an ingestion attempt for the file is
	// already running in this process.
	ErrIngestInProgress = errors.New("ingestion already in progress")

	// ErrInvalidMaxAttempts indicates maxAttempts must be positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
