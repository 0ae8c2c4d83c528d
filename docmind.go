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


// Package docmind wires the docmind subsystems together: metadata
// storage, the vector store, AI services, the ingestion pipeline, and
// the query engine.
package docmind

import (
	"log/slog"

	"github.com/poiesic/docmind/agent"
	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/ai/openai"
	"github.com/poiesic/docmind/chunking"
	"github.com/poiesic/docmind/ingestion"
	"github.com/poiesic/docmind/notify"
	"github.com/poiesic/docmind/session"
	"github.com/poiesic/docmind/storage"
	"github.com/poiesic/docmind/storage/badger"
	"github.com/poiesic/docmind/vectorstore"
	"github.com/poiesic/docmind/vectorstore/memory"
	"github.com/poiesic/docmind/vectorstore/qdrant"
)

// Database aggregates the storage backend, repositories, AI provider,
// and vector store behind one lifecycle.
type Database struct {
	backend  *badger.Backend
	files    *badger.FileRepository
	chunks   *badger.ChunkRepository
	sessions *badger.SessionRepository
	metrics  *badger.MetricsRepository
	bookings *badger.BookingRepository
	provider ai.Provider
	vectors  vectorstore.Store
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	provider   ai.Provider
	vectors    vectorstore.Store
	qdrantURL  string
	qdrantKey  string
	inMemoryDB bool
}

// WithAIConfig sets the configuration for the default OpenAI-compatible
// provider.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider injects a pre-built AI provider (such as a mock),
// bypassing the default OpenAI-compatible provider.
func WithProvider(p ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = p
	}
}

// WithVectorStore injects a pre-built vector store. The default is an
// in-process memory store.
func WithVectorStore(s vectorstore.Store) DatabaseOption {
	return func(o *databaseOptions) {
		o.vectors = s
	}
}

// WithQdrant uses a Qdrant server as the vector store.
func WithQdrant(url, apiKey string) DatabaseOption {
	return func(o *databaseOptions) {
		o.qdrantURL = url
		o.qdrantKey = apiKey
	}
}

// WithInMemoryStorage keeps metadata in memory instead of on disk.
// Intended for tests and experiments.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemoryDB = true
	}
}

// NewDatabase opens metadata storage at filePath and wires the default
// subsystems.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemoryDB)
	if err != nil {
		return nil, err
	}

	files, err := badger.NewFileRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunks, err := badger.NewChunkRepository(backend)
	if err != nil {
		files.Close()
		backend.Close()
		return nil, err
	}

	sessions, err := badger.NewSessionRepository(backend)
	if err != nil {
		chunks.Close()
		files.Close()
		backend.Close()
		return nil, err
	}

	metrics, err := badger.NewMetricsRepository(backend)
	if err != nil {
		sessions.Close()
		chunks.Close()
		files.Close()
		backend.Close()
		return nil, err
	}

	bookings, err := badger.NewBookingRepository(backend)
	if err != nil {
		metrics.Close()
		sessions.Close()
		chunks.Close()
		files.Close()
		backend.Close()
		return nil, err
	}

	closeRepos := func() {
		bookings.Close()
		metrics.Close()
		sessions.Close()
		chunks.Close()
		files.Close()
		backend.Close()
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			closeRepos()
			return nil, err
		}
	}

	vectors := options.vectors
	if vectors == nil {
		if options.qdrantURL != "" {
			vectors = qdrant.NewStore(qdrant.Config{URL: options.qdrantURL, APIKey: options.qdrantKey})
		} else {
			vectors = memory.NewStore()
		}
	}

	return &Database{
		backend:  backend,
		files:    files,
		chunks:   chunks,
		sessions: sessions,
		metrics:  metrics,
		bookings: bookings,
		provider: provider,
		vectors:  vectors,
		logger:   slog.Default(),
	}, nil
}

// Close releases all resources.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}
	if err := db.vectors.Close(); err != nil {
		db.logger.Error("error closing vector store", "err", err)
	}

	db.bookings.Close()
	db.metrics.Close()
	db.sessions.Close()
	db.chunks.Close()
	if err := db.files.Close(); err != nil {
		db.logger.Error("error closing file repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// FileRepository returns the file metadata repository.
func (db *Database) FileRepository() storage.FileRepository { return db.files }

// ChunkRepository returns the chunk metadata repository.
func (db *Database) ChunkRepository() storage.ChunkRepository { return db.chunks }

// SessionRepository returns the persisted session repository.
func (db *Database) SessionRepository() storage.SessionRepository { return db.sessions }

// MetricsRepository returns the performance metrics repository.
func (db *Database) MetricsRepository() storage.MetricsRepository { return db.metrics }

// BookingRepository returns the bookings repository.
func (db *Database) BookingRepository() storage.BookingRepository { return db.bookings }

// VectorStore returns the configured vector store.
func (db *Database) VectorStore() vectorstore.Store { return db.vectors }

// Provider returns the configured AI provider.
func (db *Database) Provider() ai.Provider { return db.provider }

// NewIngestionPipeline builds an ingestion pipeline over this database.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	engine, err := chunking.NewEngine(db.provider.Embedder())
	if err != nil {
		return nil, err
	}
	return ingestion.NewPipeline(db.files, db.chunks, db.metrics, db.vectors,
		engine, db.provider.Embedder(), opts...)
}

// NewSessionMemory builds a session memory persisted in this database.
func (db *Database) NewSessionMemory(opts ...session.Option) *session.Memory {
	opts = append([]session.Option{session.WithRepository(db.sessions)}, opts...)
	return session.NewMemory(opts...)
}

// NewAgent builds a query engine over this database. The booking tool
// is registered by default with a log-backed notification sender.
func (db *Database) NewAgent(sessions *session.Memory, opts ...agent.Option) (*agent.Engine, error) {
	if sessions == nil {
		sessions = db.NewSessionMemory()
	}
	booking := agent.NewBookingTool(db.bookings, notify.NewLogSender(db.logger))
	opts = append([]agent.Option{agent.WithTool(booking)}, opts...)
	return agent.NewEngine(db.files, db.vectors, db.provider.Embedder(),
		db.provider.Responder(), sessions, opts...)
}
