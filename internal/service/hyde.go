package service

import (
	"context"
	"fmt"
	"strings"
)

// CompletionClient produces a single non-streaming completion. Declared
// here because the expander is its only consumer.
type CompletionClient interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

const hydeSystemPrompt = `You write short hypothetical passages. Given a question, write a brief passage that plausibly answers it, as it might appear in a reference document. Write the passage only, no preamble.`

// HydeExpander rewrites a user question into a hypothetical answer
// passage before embedding. Embedding the imagined answer instead of the
// question tends to land closer to the real answer in vector space.
type HydeExpander struct {
	client CompletionClient
}

func NewHydeExpander(client CompletionClient) *HydeExpander {
	return &HydeExpander{client: client}
}

// Expand returns the hypothetical passage for message. Any failure is
// returned as-is; callers are expected to fall back to embedding the
// original message.
func (e *HydeExpander) Expand(ctx context.Context, message string) (string, error) {
	passage, err := e.client.Complete(ctx, hydeSystemPrompt, message)
	if err != nil {
		return "", fmt.Errorf("expand query: %w", err)
	}
	passage = strings.TrimSpace(passage)
	if passage == "" {
		return "", fmt.Errorf("expand query: empty completion")
	}
	return passage, nil
}
