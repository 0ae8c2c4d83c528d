package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/chunking"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
	"github.com/poiesic/docmind/vectorstore"
)

// Pipeline stage names recorded on failure.
const (
	StageChunking  = "chunking"
	StageEmbedding = "embedding"
	StageIndexing  = "indexing"
	StagePersist   = "persist"
)

const (
	defaultBatchSize   = 32
	defaultMaxFileSize = 50 << 20 // 50 MiB
	defaultRetries     = 3
	defaultRetryDelay  = 500 * time.Millisecond
)

// Pipeline orchestrates document ingestion: validation, chunking,
// embedding, vector indexing, and metadata persistence. Embedding
// batches run concurrently on a worker pool.
type Pipeline struct {
	files    storage.FileRepository
	chunks   storage.ChunkRepository
	metrics  storage.MetricsRepository
	vectors  vectorstore.Store
	engine   *chunking.Engine
	embedder ai.Embedder
	tracker  *StatusTracker

	pool             *ants.Pool
	batchSize        int
	maxFileSize      int64
	allowedTypes     map[string]bool
	sharedCollection string
	retryAttempts    int
	retryBaseDelay   time.Duration
	logger           *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of chunks embedded per provider request.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithMaxFileSize sets the maximum accepted document size in bytes.
func WithMaxFileSize(size int64) Option {
	return func(p *Pipeline) error {
		p.maxFileSize = size
		return nil
	}
}

// WithAllowedTypes sets the accepted file extensions (lowercase,
// including the dot). Default is .txt and .md.
func WithAllowedTypes(exts ...string) Option {
	return func(p *Pipeline) error {
		allowed := make(map[string]bool, len(exts))
		for _, ext := range exts {
			allowed[ext] = true
		}
		p.allowedTypes = allowed
		return nil
	}
}

// WithSharedCollection routes all files into one named collection
// instead of a collection per file.
func WithSharedCollection(name string) Option {
	return func(p *Pipeline) error {
		p.sharedCollection = name
		return nil
	}
}

// WithRetry sets the retry policy for embedding and indexing calls.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if attempts < 1 {
			return ErrInvalidMaxAttempts
		}
		p.retryAttempts = attempts
		p.retryBaseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	files storage.FileRepository,
	chunks storage.ChunkRepository,
	metrics storage.MetricsRepository,
	vectors vectorstore.Store,
	engine *chunking.Engine,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if files == nil {
		return nil, ErrFileRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if metrics == nil {
		return nil, ErrMetricsRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		files:          files,
		chunks:         chunks,
		metrics:        metrics,
		vectors:        vectors,
		engine:         engine,
		embedder:       embedder,
		pool:           pool,
		batchSize:      defaultBatchSize,
		maxFileSize:    defaultMaxFileSize,
		allowedTypes:   map[string]bool{".txt": true, ".md": true},
		retryAttempts:  defaultRetries,
		retryBaseDelay: defaultRetryDelay,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.tracker = NewStatusTracker(files, p.logger)
	return p, nil
}

// Tracker exposes the status tracker for requeue and recovery operations.
func (p *Pipeline) Tracker() *StatusTracker {
	return p.tracker
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	// Method selects the chunking strategy. Default: recursive.
	Method string

	// Params overrides the default chunking parameters.
	Params *chunking.Params
}

func (o *IngestOptions) withDefaults() (string, chunking.Params) {
	method := chunking.MethodRecursive
	params := chunking.DefaultParams()
	if o != nil {
		if o.Method != "" {
			method = o.Method
		}
		if o.Params != nil {
			params = *o.Params
		}
	}
	return method, params
}

// Ingest validates and processes a document end to end. The document
// text is cleaned before hashing and chunking, so trivially reformatted
// uploads of the same content are detected as duplicates.
//
// If the content is already ingested, the existing record is returned
// together with ErrDuplicateDocument.
func (p *Pipeline) Ingest(ctx context.Context, filename, content string, opts *IngestOptions) (*core.FileRecord, error) {
	method, params := opts.withDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	clean := chunking.CleanText(content)
	if err := core.ValidateUpload(filename, clean, int64(len(content)), p.maxFileSize, p.allowedTypes); err != nil {
		return nil, err
	}

	hash := core.IDFromContent(clean)
	if existing, err := p.files.FindByContentHash(ctx, hash); err == nil {
		p.logger.Info("duplicate upload", "filename", filename, "existing", existing.Id)
		return existing, ErrDuplicateDocument
	} else if err != storage.ErrNotFound {
		return nil, err
	}

	record := &core.FileRecord{
		Filename:       filename,
		ContentHash:    hash,
		SizeBytes:      int64(len(content)),
		FileType:       core.FileExtension(filename),
		ChunkingMethod: method,
		EmbeddingModel: p.embedder.Model(),
	}
	record, err := p.files.AddFileRecord(ctx, record)
	if err != nil {
		return nil, err
	}

	return p.process(ctx, record, clean, method, params)
}

// Resume processes a previously uploaded or requeued file with the
// supplied content. The content must match the record's stored hash.
func (p *Pipeline) Resume(ctx context.Context, id core.ID, content string, opts *IngestOptions) (*core.FileRecord, error) {
	method, params := opts.withDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	record, err := p.files.GetFileRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	clean := chunking.CleanText(content)
	if hash := core.IDFromContent(clean); hash != record.ContentHash {
		return nil, fmt.Errorf("%w: content does not match file %d", core.ErrValidation, id)
	}

	return p.process(ctx, record, clean, method, params)
}

// process runs chunking, embedding, and indexing for a record in
// Uploaded status, driving its lifecycle through the tracker.
func (p *Pipeline) process(ctx context.Context, record *core.FileRecord, clean, method string, params chunking.Params) (*core.FileRecord, error) {
	id := record.Id
	if _, err := p.tracker.Begin(ctx, id); err != nil {
		return nil, err
	}

	collection := p.sharedCollection
	if collection == "" {
		collection = vectorstore.CollectionForFile(uint64(id))
	}

	// Chunking
	chunkStart := time.Now()
	spans, err := p.engine.Chunk(ctx, clean, method, params)
	if err != nil {
		return p.tracker.Fail(ctx, id, StageChunking, err)
	}
	if len(spans) == 0 {
		return p.tracker.Fail(ctx, id, StageChunking, core.ErrEmptyDocument)
	}
	chunkingSeconds := time.Since(chunkStart).Seconds()

	docChunks := make([]core.Chunk, len(spans))
	texts := make([]string, len(spans))
	for i, span := range spans {
		docChunks[i] = core.Chunk{
			FileId:  id,
			Index:   i,
			Text:    span.Text,
			Start:   span.Start,
			End:     span.End,
			PointId: core.PointIDFor(id, i),
		}
		texts[i] = span.Text
	}

	// Embedding
	embedStart := time.Now()
	embeddings, err := p.embedAll(ctx, texts)
	if err != nil {
		return p.tracker.Fail(ctx, id, StageEmbedding, err)
	}
	embeddingSeconds := time.Since(embedStart).Seconds()

	// Indexing
	indexStart := time.Now()
	points := make([]vectorstore.Point, len(docChunks))
	for i, chunk := range docChunks {
		points[i] = vectorstore.Point{
			ID:     uint64(chunk.PointId),
			Vector: vectorstore.Normalize(embeddings[i]),
			Payload: vectorstore.Payload{
				FileID:         uint64(id),
				Filename:       record.Filename,
				ChunkIndex:     chunk.Index,
				Text:           chunk.Text,
				ChunkingMethod: method,
				EmbeddingModel: p.embedder.Model(),
			},
		}
	}
	err = RetryWithBackoff(ctx, func() error {
		if err := p.vectors.EnsureCollection(ctx, collection, p.embedder.Dimension(), vectorstore.MetricCosine); err != nil {
			return err
		}
		return p.vectors.Upsert(ctx, collection, points)
	}, p.retryAttempts, p.retryBaseDelay)
	if err != nil {
		return p.tracker.Fail(ctx, id, StageIndexing, err)
	}
	indexingSeconds := time.Since(indexStart).Seconds()

	// Persist chunk metadata
	if err := p.chunks.PutChunks(ctx, id, docChunks); err != nil {
		return p.tracker.Fail(ctx, id, StagePersist, err)
	}

	// Performance record; failures here are logged, not fatal
	perf := &core.PerformanceRecord{
		FileId:           id,
		ChunkingMethod:   method,
		EmbeddingModel:   p.embedder.Model(),
		ChunkCount:       len(docChunks),
		ChunkingSeconds:  chunkingSeconds,
		EmbeddingSeconds: embeddingSeconds,
		IndexingSeconds:  indexingSeconds,
		TotalSeconds:     chunkingSeconds + embeddingSeconds + indexingSeconds,
	}
	if _, err := p.metrics.AddPerformanceRecord(ctx, perf); err != nil {
		p.logger.Error("failed to record metrics", "file", id, "err", err)
	}

	return p.tracker.Complete(ctx, id, func(r *core.FileRecord) {
		r.Collection = collection
		r.ChunkCount = len(docChunks)
		r.ChunkingMethod = method
		r.ChunkingSeconds = chunkingSeconds
		r.EmbeddingSeconds = embeddingSeconds
		r.IndexingSeconds = indexingSeconds
	})
}

// Delete removes a file and everything derived from it: vectors,
// chunk metadata, and the file record.
func (p *Pipeline) Delete(ctx context.Context, id core.ID) error {
	record, err := p.files.GetFileRecord(ctx, id)
	if err != nil {
		return err
	}

	if record.Collection != "" {
		if p.sharedCollection != "" && record.Collection == p.sharedCollection {
			// Shared collection: remove only this file's points.
			docChunks, err := p.chunks.GetChunks(ctx, id)
			if err != nil {
				return err
			}
			ids := make([]uint64, len(docChunks))
			for i, chunk := range docChunks {
				ids[i] = uint64(chunk.PointId)
			}
			if err := p.vectors.Delete(ctx, record.Collection, ids); err != nil {
				return err
			}
		} else {
			if err := p.vectors.DeleteCollection(ctx, record.Collection); err != nil {
				return err
			}
		}
	}

	if err := p.chunks.DeleteChunks(ctx, id); err != nil {
		return err
	}
	if err := p.files.DeleteFileRecord(ctx, id); err != nil {
		return err
	}
	p.logger.Info("file deleted", "file", id)
	return nil
}

// embedAll embeds texts in batches submitted to the worker pool.
// Results keep their input order. Any batch failure fails the whole
// operation after all in-flight batches finish.
func (p *Pipeline) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for start := 0; start < len(texts); start += p.batchSize {
		end := start + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end
		batch := texts[start:end]

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			var result [][]float32
			err := RetryWithBackoff(ctx, func() error {
				var embedErr error
				result, embedErr = p.embedder.EmbedTexts(ctx, batch)
				return embedErr
			}, p.retryAttempts, p.retryBaseDelay)
			if err != nil {
				setErr(err)
				return
			}
			if len(result) != len(batch) {
				setErr(fmt.Errorf("embedder returned %d vectors for %d texts", len(result), len(batch)))
				return
			}
			copy(vectors[start:end], result)
		})
		if submitErr != nil {
			wg.Done()
			setErr(submitErr)
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
