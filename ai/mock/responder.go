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


package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/docmind/ai"
)

// MockResponder provides a deterministic test implementation of
// ai.Responder.
//
// By default it answers extractively: from the last user message it
// extracts the question (the final line), then returns the line from
// the preceding prompt text that shares the most words with it. This
// lets end-to-end query tests assert on answer content without a live
// model.
type MockResponder struct {
	// RespondFunc allows customizing response behavior.
	RespondFunc func(ctx context.Context, messages []ai.Message, maxTokens int) (string, error)

	mu        sync.Mutex
	callCount int
	lastInput []ai.Message
}

// NewMockResponder creates a mock responder with default behavior.
func NewMockResponder() *MockResponder {
	return &MockResponder{}
}

// Respond generates a deterministic answer from the prompt messages.
func (m *MockResponder) Respond(ctx context.Context, messages []ai.Message, maxTokens int) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastInput = messages
	m.mu.Unlock()

	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, messages, maxTokens)
	}
	return extractiveAnswer(messages), nil
}

// CallCount returns the number of Respond calls made.
func (m *MockResponder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastInput returns the messages from the most recent Respond call.
func (m *MockResponder) LastInput() []ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastInput
}

// extractiveAnswer picks the prompt line with the greatest word overlap
// with the final user message.
func extractiveAnswer(messages []ai.Message) string {
	if len(messages) == 0 {
		return "I don't have enough information to answer that."
	}

	var question string
	var contextLines []string
	for _, msg := range messages {
		if msg.Role == ai.RoleUser {
			question = msg.Text
		}
		for _, line := range strings.Split(msg.Text, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				contextLines = append(contextLines, line)
			}
		}
	}
	if question == "" {
		return "I don't have enough information to answer that."
	}

	qWords := wordSet(question)
	best := ""
	bestScore := 0
	for _, line := range contextLines {
		if line == strings.TrimSpace(question) {
			continue
		}
		score := 0
		for w := range wordSet(line) {
			if qWords[w] {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = line
		}
	}
	if best == "" {
		return "I don't have enough information to answer that."
	}
	return best
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if len(w) > 2 {
			set[w] = true
		}
	}
	return set
}
