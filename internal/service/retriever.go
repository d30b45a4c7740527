package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/888Greys/rag-ai/internal/domain"
)

// ChunkQuerier loads chunks whose path matches any of the given
// patterns. Patterns use the same single-`%` wildcard as the store.
type ChunkQuerier interface {
	QueryByPaths(ctx context.Context, patterns []string) ([]domain.Chunk, error)
}

// ScoredChunk pairs a chunk with its similarity to the query embedding.
type ScoredChunk struct {
	Chunk domain.Chunk
	Score float64
}

// Retriever ranks stored chunks against a query embedding by cosine
// similarity.
type Retriever struct {
	querier ChunkQuerier
	topK    int
}

const (
	DefaultTopK       = 5
	storeQueryTimeout = 5 * time.Second
)

func NewRetriever(querier ChunkQuerier, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{querier: querier, topK: topK}
}

// Retrieve returns up to topK chunks from the given path patterns,
// ordered by descending similarity. Ties break on ascending chunk id so
// results are stable across runs. No patterns means no results.
func (r *Retriever) Retrieve(ctx context.Context, embedding []float32, patterns []string) ([]ScoredChunk, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	queryCtx, cancel := context.WithTimeout(ctx, storeQueryTimeout)
	defer cancel()
	chunks, err := r.querier.QueryByPaths(queryCtx, patterns)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	scored := make([]ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, ScoredChunk{Chunk: c, Score: cosineSimilarity(embedding, c.Embedding)})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})
	if len(scored) > r.topK {
		scored = scored[:r.topK]
	}
	return scored, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
