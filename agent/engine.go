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


package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/session"
	"github.com/poiesic/docmind/storage"
	"github.com/poiesic/docmind/vectorstore"
)

const (
	defaultTopK          = 5
	defaultMaxTokens     = 512
	defaultContextBudget = 2000
	defaultRetrievalWait = 15 * time.Second

	systemPrompt = "You are a helpful assistant that answers questions using the " +
		"provided document excerpts. Answer from the excerpts when they are " +
		"relevant; say so when they do not contain the answer. Be concise."
)

// QueryRequest is a question scoped to a session and optionally to a
// single file.
type QueryRequest struct {
	SessionID string
	Query     string

	// FileID restricts retrieval to one file's collection. Zero means
	// search every completed file.
	FileID core.ID

	// TopK overrides the number of retrieved chunks. Zero uses the
	// engine default.
	TopK int

	// SkipRetrieval answers from conversation history alone, without
	// touching the vector store.
	SkipRetrieval bool
}

// Source attributes part of an answer to a document chunk.
type Source struct {
	FileID     core.ID
	Filename   string
	ChunkIndex int
	Text       string
	Score      float32
}

// QueryResponse is the agent's reply.
type QueryResponse struct {
	Answer    string
	SessionID string
	Sources   []Source
	ToolsUsed []string

	// Degraded is set when retrieval failed or timed out and the answer
	// was produced without document context.
	Degraded bool

	ResponseSeconds float64
}

// Engine answers questions over the ingested corpus, maintaining
// conversation history per session and routing tool requests.
type Engine struct {
	files     storage.FileRepository
	vectors   vectorstore.Store
	embedder  ai.Embedder
	responder ai.Responder
	sessions  *session.Memory
	tools     []Tool

	topK          int
	maxTokens     int
	contextBudget int
	retrievalWait time.Duration
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTool registers a tool. Tools are checked in registration order.
func WithTool(t Tool) Option {
	return func(e *Engine) {
		if t != nil {
			e.tools = append(e.tools, t)
		}
	}
}

// WithTopK sets the default number of retrieved chunks.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithMaxTokens bounds the generated answer length.
func WithMaxTokens(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithContextBudget bounds the tokens spent on retrieved context.
func WithContextBudget(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.contextBudget = n
		}
	}
}

// WithRetrievalWait bounds how long embedding and search may take
// before the engine degrades to answering without context.
func WithRetrievalWait(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.retrievalWait = d
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a query engine.
func NewEngine(
	files storage.FileRepository,
	vectors vectorstore.Store,
	embedder ai.Embedder,
	responder ai.Responder,
	sessions *session.Memory,
	opts ...Option,
) (*Engine, error) {
	if files == nil {
		return nil, ErrFileRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if responder == nil {
		return nil, ErrResponderRequired
	}
	if sessions == nil {
		return nil, ErrSessionsRequired
	}

	e := &Engine{
		files:         files,
		vectors:       vectors,
		embedder:      embedder,
		responder:     responder,
		sessions:      sessions,
		topK:          defaultTopK,
		maxTokens:     defaultMaxTokens,
		contextBudget: defaultContextBudget,
		retrievalWait: defaultRetrievalWait,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Query answers a question. Both the question and the answer are
// appended to the session history, including tool replies and degraded
// answers.
func (e *Engine) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	started := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = session.NewSessionID()
	}

	resp := &QueryResponse{SessionID: sessionID}

	// Tool routing takes precedence over retrieval.
	if tool := e.matchTool(query); tool != nil {
		reply, err := tool.Run(ctx, sessionID, query)
		if err != nil && reply == "" {
			return nil, err
		}
		if err != nil {
			e.logger.Debug("tool needs more input", "tool", tool.Name(), "err", err)
		}
		resp.Answer = reply
		resp.ToolsUsed = []string{tool.Name()}
		e.remember(ctx, sessionID, query, reply)
		resp.ResponseSeconds = time.Since(started).Seconds()
		return resp, nil
	}

	var hits []vectorstore.Hit
	var degraded bool
	if !req.SkipRetrieval {
		hits, degraded = e.retrieve(ctx, query, req)
	}
	resp.Degraded = degraded
	for _, hit := range hits {
		resp.Sources = append(resp.Sources, Source{
			FileID:     core.ID(hit.Payload.FileID),
			Filename:   hit.Payload.Filename,
			ChunkIndex: hit.Payload.ChunkIndex,
			Text:       hit.Payload.Text,
			Score:      hit.Score,
		})
	}

	answer, err := e.respond(ctx, sessionID, query, hits, degraded)
	if err != nil {
		return nil, err
	}
	resp.Answer = answer

	e.remember(ctx, sessionID, query, answer)
	resp.ResponseSeconds = time.Since(started).Seconds()
	return resp, nil
}

func (e *Engine) matchTool(query string) Tool {
	for _, tool := range e.tools {
		if tool.Triggered(query) {
			return tool
		}
	}
	return nil
}

// retrieve embeds the query and searches the relevant collections.
// Failures degrade the query instead of failing it.
func (e *Engine) retrieve(ctx context.Context, query string, req QueryRequest) ([]vectorstore.Hit, bool) {
	topK := req.TopK
	if topK <= 0 {
		topK = e.topK
	}

	rctx, cancel := context.WithTimeout(ctx, e.retrievalWait)
	defer cancel()

	vector, err := e.embedder.EmbedText(rctx, query)
	if err != nil {
		e.logger.Warn("query embedding failed, degrading", "err", err)
		return nil, true
	}
	vector = vectorstore.Normalize(vector)

	collections, err := e.collectionsFor(rctx, req.FileID)
	if err != nil {
		e.logger.Warn("collection lookup failed, degrading", "err", err)
		return nil, true
	}
	if len(collections) == 0 {
		return nil, false
	}

	var hits []vectorstore.Hit
	for _, collection := range collections {
		found, err := e.vectors.Search(rctx, collection, vector, topK)
		if err != nil {
			e.logger.Warn("vector search failed, degrading", "collection", collection, "err", err)
			return nil, true
		}
		hits = append(hits, found...)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, false
}

// collectionsFor resolves the vector collections to search: the given
// file's collection, or every completed file's collection.
func (e *Engine) collectionsFor(ctx context.Context, fileID core.ID) ([]string, error) {
	if fileID != 0 {
		record, err := e.files.GetFileRecord(ctx, fileID)
		if err != nil {
			return nil, err
		}
		if record.Status != core.FileStatusCompleted || record.Collection == "" {
			return nil, fmt.Errorf("file %d is not ready for querying (status %s)", fileID, record.Status)
		}
		return []string{record.Collection}, nil
	}

	records, err := e.files.ListFileRecords(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var collections []string
	for _, record := range records {
		if record.Status != core.FileStatusCompleted || record.Collection == "" {
			continue
		}
		if !seen[record.Collection] {
			seen[record.Collection] = true
			collections = append(collections, record.Collection)
		}
	}
	return collections, nil
}

// respond builds the prompt from context, history, and the query, and
// generates the answer.
func (e *Engine) respond(ctx context.Context, sessionID, query string, hits []vectorstore.Hit, degraded bool) (string, error) {
	var messages []ai.Message

	system := systemPrompt
	if docContext := composeContext(hits, e.contextBudget); docContext != "" {
		system += "\n\nDocument excerpts:\n" + docContext
	} else if degraded {
		system += "\n\nDocument retrieval is currently unavailable; say so if the question needs document knowledge."
	}
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Text: system})

	history, err := e.sessions.History(ctx, sessionID)
	if err != nil {
		e.logger.Warn("failed to load session history", "session", sessionID, "err", err)
	}
	for _, turn := range trimHistory(history, e.contextBudget) {
		role := ai.RoleUser
		if turn.Speaker == core.SpeakerAgent {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Text: turn.Text})
	}

	messages = append(messages, ai.Message{Role: ai.RoleUser, Text: query})

	return e.responder.Respond(ctx, messages, e.maxTokens)
}

// remember appends the exchanged turns; history failures are logged,
// never surfaced to the caller.
func (e *Engine) remember(ctx context.Context, sessionID, query, answer string) {
	if err := e.sessions.AddTurn(ctx, sessionID, core.SpeakerUser, query); err != nil {
		e.logger.Error("failed to record user turn", "session", sessionID, "err", err)
	}
	if answer == "" {
		return
	}
	if err := e.sessions.AddTurn(ctx, sessionID, core.SpeakerAgent, answer); err != nil {
		e.logger.Error("failed to record agent turn", "session", sessionID, "err", err)
	}
}
