package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/888Greys/rag-ai/internal/domain"
)

// QueryExpander rewrites a question before embedding. Failures are
// recoverable; callers embed the original question instead.
type QueryExpander interface {
	Expand(ctx context.Context, message string) (string, error)
}

// ChunkRetriever ranks stored chunks against a query embedding.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, embedding []float32, patterns []string) ([]ScoredChunk, error)
}

const (
	defaultExpandTimeout = 15 * time.Second
	defaultEmbedTimeout  = 10 * time.Second

	contextPreamble = "Answer using the document excerpts below when they are relevant. " +
		"If they do not cover the question, say so rather than inventing an answer."
)

// RAGGenerator decorates a Generator with retrieval augmentation. Every
// augmentation step is best-effort: if classification skips retrieval,
// or expansion, embedding, or the store fails, the request is forwarded
// to the inner generator unchanged. A broken retrieval pipeline degrades
// chat quality, never chat availability.
type RAGGenerator struct {
	inner      Generator
	classifier Classifier
	expander   QueryExpander
	embedder   EmbeddingClient
	retriever  ChunkRetriever
	logs       *RetrievalLogBuffer

	expandTimeout time.Duration
	embedTimeout  time.Duration
}

// RAGOption customizes a RAGGenerator.
type RAGOption func(*RAGGenerator)

// WithQueryExpander enables hypothetical-answer expansion before
// embedding.
func WithQueryExpander(expander QueryExpander) RAGOption {
	return func(g *RAGGenerator) { g.expander = expander }
}

// WithRetrievalLog records every retrieval round into the buffer.
func WithRetrievalLog(logs *RetrievalLogBuffer) RAGOption {
	return func(g *RAGGenerator) { g.logs = logs }
}

// WithTimeouts overrides the per-step deadlines for expansion and
// embedding.
func WithTimeouts(expand, embed time.Duration) RAGOption {
	return func(g *RAGGenerator) {
		if expand > 0 {
			g.expandTimeout = expand
		}
		if embed > 0 {
			g.embedTimeout = embed
		}
	}
}

// NewRAGGenerator creates a new RAGGenerator around inner.
func NewRAGGenerator(
	inner Generator,
	classifier Classifier,
	embedder EmbeddingClient,
	retriever ChunkRetriever,
	opts ...RAGOption,
) *RAGGenerator {
	g := &RAGGenerator{
		inner:         inner,
		classifier:    classifier,
		embedder:      embedder,
		retriever:     retriever,
		expandTimeout: defaultExpandTimeout,
		embedTimeout:  defaultEmbedTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate augments the request with retrieved context and delegates to
// the inner generator.
func (g *RAGGenerator) Generate(ctx context.Context, req GenerateRequest) (<-chan domain.StreamEvent, error) {
	message := domain.LastUserMessage(req.Messages)
	if message == "" || !g.classifier.NeedsRetrieval(message) {
		return g.inner.Generate(ctx, req)
	}

	query := message
	if g.expander != nil {
		expandCtx, cancel := context.WithTimeout(ctx, g.expandTimeout)
		expanded, err := g.expander.Expand(expandCtx, message)
		cancel()
		if err != nil {
			log.Printf("query expansion failed, embedding original question: %v", err)
		} else {
			query = expanded
		}
	}

	embedCtx, cancel := context.WithTimeout(ctx, g.embedTimeout)
	embeddings, err := g.embedder.EmbedBatch(embedCtx, []string{query})
	cancel()
	if err != nil || len(embeddings) != 1 {
		log.Printf("query embedding failed, generating without context: %v", err)
		return g.inner.Generate(ctx, req)
	}

	patterns := searchPatterns(req.SelectedPaths)
	chunks, err := g.retriever.Retrieve(ctx, embeddings[0], patterns)
	if err != nil {
		log.Printf("retrieval failed, generating without context: %v", err)
		return g.inner.Generate(ctx, req)
	}

	g.recordRetrieval(req, message, query, patterns, chunks)

	if len(chunks) == 0 {
		return g.inner.Generate(ctx, req)
	}

	augmented := req
	augmented.Messages = append([]domain.Message{
		{Role: domain.RoleSystem, Content: buildContextBlock(chunks)},
	}, req.Messages...)
	return g.inner.Generate(ctx, augmented)
}

// searchPatterns unions the caller's selected documents with the shared
// namespaces, deduplicated in stable order.
func searchPatterns(selected []string) []string {
	patterns := make([]string, 0, len(selected)+2)
	seen := make(map[string]struct{}, len(selected)+2)
	for _, p := range append(append([]string{}, selected...), domain.SharedPathPatterns()...) {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		patterns = append(patterns, p)
	}
	return patterns
}

func buildContextBlock(chunks []ScoredChunk) string {
	var b strings.Builder
	b.WriteString(contextPreamble)
	for _, sc := range chunks {
		b.WriteString("\n\n[source: ")
		b.WriteString(sc.Chunk.Path)
		b.WriteString("]\n")
		b.WriteString(sc.Chunk.Content)
	}
	return b.String()
}

func (g *RAGGenerator) recordRetrieval(req GenerateRequest, message, query string, patterns []string, chunks []ScoredChunk) {
	if g.logs == nil {
		return
	}
	entry := domain.RetrievalLogEntry{
		ConversationID: req.Conversation,
		Author:         req.Author,
		Query:          message,
		Patterns:       patterns,
	}
	if query != message {
		entry.ExpandedQuery = query
	}
	for _, sc := range chunks {
		entry.ChunkIDs = append(entry.ChunkIDs, sc.Chunk.ID)
	}
	if len(chunks) > 0 {
		entry.TopScore = chunks[0].Score
	}
	g.logs.Record(entry)
}
