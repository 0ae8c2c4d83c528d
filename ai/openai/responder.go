package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docmind/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Responder implements ai.Responder using OpenAI-compatible chat APIs.
type Responder struct {
	llm         llms.Model
	temperature float64
	logger      *slog.Logger
}

// newResponder is an internal constructor that returns the concrete type.
func newResponder(config *ai.Config) (*Responder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Responder{
		llm:         client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-responder"),
	}, nil
}

// NewResponder creates a new responder using the provided configuration.
//
// Returns ai.Responder interface to enforce abstraction.
func NewResponder(config *ai.Config) (ai.Responder, error) {
	return newResponder(config)
}

// Respond generates an answer for the composed prompt messages.
func (r *Responder) Respond(ctx context.Context, messages []ai.Message, maxTokens int) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(chatMessageType(m.Role), m.Text))
	}

	opts := []llms.CallOption{llms.WithTemperature(r.temperature)}
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}

	resp, err := r.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		r.logger.Error("answer generation failed", "err", err)
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Content, nil
}

func chatMessageType(role ai.Role) llms.ChatMessageType {
	switch role {
	case ai.RoleSystem:
		return llms.ChatMessageTypeSystem
	case ai.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
