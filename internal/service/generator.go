package service

import (
	"context"

	"github.com/888Greys/rag-ai/internal/domain"
)

// GenerateRequest is everything a generator needs to answer a turn.
// SelectedPaths carries the caller's explicit document selection so that
// augmenting decorators can scope retrieval; plain generators ignore it.
type GenerateRequest struct {
	Author        string
	Conversation  string
	Messages      []domain.Message
	SelectedPaths []string
}

// Generator streams an answer to a conversation. Implementations close
// the returned channel when generation ends; a failure after the stream
// opens arrives as a final event with Err set.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (<-chan domain.StreamEvent, error)
}

// EmbeddingClient embeds a batch of texts in one call, preserving order.
type EmbeddingClient interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// StreamingClient opens a token stream for a conversation.
type StreamingClient interface {
	Stream(ctx context.Context, system string, messages []domain.Message) (<-chan domain.StreamEvent, error)
}

const defaultSystemPrompt = "You are a helpful assistant. Answer concisely and accurately."

// ChatGenerator is the base Generator: it forwards the conversation to a
// streaming model with a fixed system prompt and no augmentation.
type ChatGenerator struct {
	client StreamingClient
	system string
}

func NewChatGenerator(client StreamingClient, system string) *ChatGenerator {
	if system == "" {
		system = defaultSystemPrompt
	}
	return &ChatGenerator{client: client, system: system}
}

func (g *ChatGenerator) Generate(ctx context.Context, req GenerateRequest) (<-chan domain.StreamEvent, error) {
	return g.client.Stream(ctx, g.system, req.Messages)
}
