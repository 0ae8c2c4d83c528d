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


// Package session manages per-session conversation history. History is
// held in memory with a bounded number of turns per session; an
// optional repository persists it across restarts.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

// DefaultMaxTurns bounds each session's retained history.
const DefaultMaxTurns = 20

// NewSessionID returns a fresh opaque session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Memory holds conversation history per session. Safe for concurrent
// use. Each session keeps at most maxTurns turns; older turns are
// evicted first.
type Memory struct {
	maxTurns int
	repo     storage.SessionRepository
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string][]core.Turn
}

// Option configures a Memory.
type Option func(*Memory)

// WithRepository enables write-through persistence. History for
// sessions not yet in memory is loaded from the repository on access.
func WithRepository(repo storage.SessionRepository) Option {
	return func(m *Memory) {
		m.repo = repo
	}
}

// WithMaxTurns overrides the per-session history bound.
// Values below 1 fall back to DefaultMaxTurns.
func WithMaxTurns(n int) Option {
	return func(m *Memory) {
		if n >= 1 {
			m.maxTurns = n
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Memory) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMemory creates a session memory.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		maxTurns: DefaultMaxTurns,
		logger:   slog.Default(),
		sessions: make(map[string][]core.Turn),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddTurn validates and appends a turn to a session's history,
// evicting the oldest turn when the session is at capacity.
func (m *Memory) AddTurn(ctx context.Context, sessionID string, speaker core.Speaker, text string) error {
	turn := core.Turn{
		Speaker:   speaker,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	if err := core.ValidateTurn(&turn); err != nil {
		return err
	}

	m.mu.Lock()
	history, err := m.loadLocked(ctx, sessionID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	history = append(history, turn)
	if len(history) > m.maxTurns {
		history = history[len(history)-m.maxTurns:]
	}
	m.sessions[sessionID] = history
	m.mu.Unlock()

	if m.repo != nil {
		if err := m.repo.AppendTurns(ctx, sessionID, m.maxTurns, turn); err != nil {
			m.logger.Error("failed to persist turn", "session", sessionID, "err", err)
		}
	}
	return nil
}

// History returns a session's turns in chronological order. The
// returned slice is a copy. Unknown sessions yield an empty history.
func (m *Memory) History(ctx context.Context, sessionID string) ([]core.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history, err := m.loadLocked(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]core.Turn, len(history))
	copy(out, history)
	return out, nil
}

// Clear removes a session's history from memory and the repository.
func (m *Memory) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if m.repo != nil {
		return m.repo.DeleteSession(ctx, sessionID)
	}
	return nil
}

// Sessions returns the IDs of sessions currently held in memory.
func (m *Memory) Sessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// loadLocked returns the cached history, populating the cache from the
// repository on first access. Caller holds m.mu.
func (m *Memory) loadLocked(ctx context.Context, sessionID string) ([]core.Turn, error) {
	if history, ok := m.sessions[sessionID]; ok {
		return history, nil
	}
	if m.repo == nil {
		return nil, nil
	}
	history, err := m.repo.GetTurns(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	m.sessions[sessionID] = history
	return history, nil
}
