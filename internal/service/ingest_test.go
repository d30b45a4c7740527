package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/888Greys/rag-ai/internal/domain"
)

type mockEmbeddingClient struct {
	mock.Mock
}

func (m *mockEmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

type mockChunkStore struct {
	mock.Mock
}

func (m *mockChunkStore) ReplaceDocument(ctx context.Context, path string, chunks []domain.Chunk) error {
	args := m.Called(ctx, path, chunks)
	return args.Error(0)
}

func (m *mockChunkStore) DeleteByPath(ctx context.Context, path string) (int64, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(int64), args.Error(1)
}

func embeddingsFor(texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out
}

func TestIngestService_Ingest(t *testing.T) {
	embedder := &mockEmbeddingClient{}
	store := &mockChunkStore{}
	svc := NewIngestService(embedder, store)

	content := "A short document."
	embedder.On("EmbedBatch", mock.Anything, []string{content}).
		Return(embeddingsFor([]string{content}), nil)
	store.On("ReplaceDocument", mock.Anything, "shared/notes.txt", mock.MatchedBy(func(chunks []domain.Chunk) bool {
		return len(chunks) == 1 &&
			chunks[0].ID == "shared/notes.txt/0" &&
			chunks[0].Path == "shared/notes.txt" &&
			chunks[0].Content == content
	})).Return(nil)

	count, err := svc.Ingest(context.Background(), "shared", "notes.txt", content)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	embedder.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestIngestService_Ingest_MultipleChunks(t *testing.T) {
	embedder := &mockEmbeddingClient{}
	store := &mockChunkStore{}
	svc := NewIngestService(embedder, store)

	content := strings.Repeat("All work and no play makes for dull documents. ", 60)
	pieces := SplitText(content, DefaultChunkSize, DefaultOverlap)
	require.Greater(t, len(pieces), 1)

	embedder.On("EmbedBatch", mock.Anything, pieces).Return(embeddingsFor(pieces), nil)
	store.On("ReplaceDocument", mock.Anything, "alice@example.com/big.txt", mock.MatchedBy(func(chunks []domain.Chunk) bool {
		if len(chunks) != len(pieces) {
			return false
		}
		for i, c := range chunks {
			if c.ID != domain.ChunkID("alice@example.com", "big.txt", i) {
				return false
			}
		}
		return true
	})).Return(nil)

	count, err := svc.Ingest(context.Background(), "alice@example.com", "big.txt", content)

	require.NoError(t, err)
	assert.Equal(t, len(pieces), count)
}

func TestIngestService_Ingest_EmptyDocument(t *testing.T) {
	svc := NewIngestService(&mockEmbeddingClient{}, &mockChunkStore{})

	_, err := svc.Ingest(context.Background(), "shared", "empty.txt", "   \n\t ")

	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestIngestService_Ingest_EmbeddingFails(t *testing.T) {
	embedder := &mockEmbeddingClient{}
	store := &mockChunkStore{}
	svc := NewIngestService(embedder, store)

	embedder.On("EmbedBatch", mock.Anything, mock.Anything).
		Return(nil, errors.New("rate limited"))

	_, err := svc.Ingest(context.Background(), "shared", "doc.txt", "content")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	store.AssertNotCalled(t, "ReplaceDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestService_Ingest_StoreFails(t *testing.T) {
	embedder := &mockEmbeddingClient{}
	store := &mockChunkStore{}
	svc := NewIngestService(embedder, store)

	embedder.On("EmbedBatch", mock.Anything, mock.Anything).
		Return([][]float32{{1, 2}}, nil)
	store.On("ReplaceDocument", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection refused"))

	_, err := svc.Ingest(context.Background(), "shared", "doc.txt", "content")

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestIngestService_Delete(t *testing.T) {
	store := &mockChunkStore{}
	svc := NewIngestService(&mockEmbeddingClient{}, store)

	store.On("DeleteByPath", mock.Anything, "shared/old.txt").Return(int64(4), nil)

	deleted, err := svc.Delete(context.Background(), "shared/old.txt")

	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}

func TestIngestService_Delete_NothingToDelete(t *testing.T) {
	store := &mockChunkStore{}
	svc := NewIngestService(&mockEmbeddingClient{}, store)

	store.On("DeleteByPath", mock.Anything, "shared/missing.txt").Return(int64(0), nil)

	deleted, err := svc.Delete(context.Background(), "shared/missing.txt")

	require.NoError(t, err)
	assert.Zero(t, deleted)
}
