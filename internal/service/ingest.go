package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/888Greys/rag-ai/internal/domain"
	"github.com/888Greys/rag-ai/internal/telemetry"
)

// ChunkStoreInterface defines the persistence operations ingestion needs.
// ReplaceDocument swaps all chunks under a document path atomically so a
// re-ingest never leaves a mix of old and new chunks behind.
type ChunkStoreInterface interface {
	ReplaceDocument(ctx context.Context, path string, chunks []domain.Chunk) error
	DeleteByPath(ctx context.Context, path string) (int64, error)
}

// IngestService turns raw documents into embedded chunks in the store.
type IngestService struct {
	embedder  EmbeddingClient
	store     ChunkStoreInterface
	chunkSize int
	overlap   int
}

// NewIngestService creates a new IngestService instance with the default
// chunking parameters.
func NewIngestService(embedder EmbeddingClient, store ChunkStoreInterface) *IngestService {
	return &IngestService{
		embedder:  embedder,
		store:     store,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
}

// Ingest splits content, embeds every chunk in one batch, and replaces
// whatever the store holds under the document's path. Chunk ids are
// `<namespace>/<documentName>/<index>` so re-ingesting the same document
// is idempotent.
func (s *IngestService) Ingest(ctx context.Context, namespace, documentName, content string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.Ingest", telemetry.SpanAttributes{
		DocumentPath: domain.DocumentPath(namespace, documentName),
		Operation:    "ingest",
	})
	defer span.End()

	if strings.TrimSpace(content) == "" {
		return 0, domain.ErrEmptyDocument
	}
	if namespace == "" || documentName == "" {
		return 0, domain.NewDomainError(domain.ErrCodeValidation, "namespace and document name are required")
	}

	pieces := SplitText(content, s.chunkSize, s.overlap)

	embeddings, err := s.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(embeddings) != len(pieces) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingUnavailable, len(embeddings), len(pieces))
	}

	path := domain.DocumentPath(namespace, documentName)
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:        domain.ChunkID(namespace, documentName, i),
			Path:      path,
			Content:   piece,
			Embedding: embeddings[i],
		}
	}

	if err := s.store.ReplaceDocument(ctx, path, chunks); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return len(chunks), nil
}

// Delete removes every chunk under the document path. Deleting a path
// with no chunks is not an error.
func (s *IngestService) Delete(ctx context.Context, path string) (int64, error) {
	if path == "" {
		return 0, domain.NewDomainError(domain.ErrCodeValidation, "path is required")
	}

	ctx, span := telemetry.StartSpan(ctx, "IngestService.Delete", telemetry.SpanAttributes{
		DocumentPath: path,
		Operation:    "delete",
	})
	defer span.End()

	deleted, err := s.store.DeleteByPath(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return deleted, nil
}
