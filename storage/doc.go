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


// Package storage provides the metadata storage abstraction for docmind.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic. Vector data is NOT stored here;
// embeddings live in the vectorstore package. This layer holds file
// records, chunk text and offsets, conversation histories, performance
// metrics, and bookings.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: common transaction and lifecycle operations
//   - FileRepository: file records and status transitions
//   - ChunkRepository: chunk text and offsets per file
//   - SessionRepository: persisted conversation histories
//   - MetricsRepository: ingestion performance records
//   - BookingRepository: interview bookings
//
// # Usage
//
// Create repository instances over a shared backend:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	files, err := badger.NewFileRepository(backend)
//
// Use in tests with in-memory storage:
//
//	backend, err := badger.OpenBackend("", true)
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
