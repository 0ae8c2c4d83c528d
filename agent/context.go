package agent

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/vectorstore"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// countTokens estimates the token count of text. It uses the
// cl100k_base encoding when available and falls back to a word count
// when the encoding cannot be loaded (e.g. no cached vocabulary).
func countTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			slog.Warn("token encoding unavailable, falling back to word count", "err", err)
			return
		}
		encoding = enc
	})
	if encoding == nil {
		return len(strings.Fields(text))
	}
	return len(encoding.Encode(text, nil, nil))
}

// composeContext concatenates hit texts into a prompt context, keeping
// hits in score order and stopping before the token budget is
// exceeded. At least one hit is always included so the agent never
// answers from an empty context when retrieval produced results.
func composeContext(hits []vectorstore.Hit, tokenBudget int) string {
	if len(hits) == 0 {
		return ""
	}

	var b strings.Builder
	used := 0
	for i, hit := range hits {
		cost := countTokens(hit.Payload.Text)
		if i > 0 && used+cost > tokenBudget {
			break
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(hit.Payload.Text)
		used += cost
	}
	return b.String()
}

// trimHistory drops the oldest turns until the remainder fits the token
// budget. The newest turns carry the conversational state, so eviction
// runs front to back.
func trimHistory(turns []core.Turn, tokenBudget int) []core.Turn {
	used := 0
	keepFrom := len(turns)
	for i := len(turns) - 1; i >= 0; i-- {
		cost := countTokens(turns[i].Text)
		if used+cost > tokenBudget {
			break
		}
		used += cost
		keepFrom = i
	}
	return turns[keepFrom:]
}
