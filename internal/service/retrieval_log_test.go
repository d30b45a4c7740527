package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/888Greys/rag-ai/internal/domain"
)

type mockRetrievalLogRepo struct {
	mock.Mock
}

func (m *mockRetrievalLogRepo) InsertBatch(ctx context.Context, entries []domain.RetrievalLogEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func TestRetrievalLogBuffer_RecordAndDrain(t *testing.T) {
	buf := NewRetrievalLogBuffer(10)

	buf.Record(domain.RetrievalLogEntry{Query: "first"})
	buf.Record(domain.RetrievalLogEntry{Query: "second"})

	entries := buf.Drain()
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Query)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].CreatedAt.IsZero())

	assert.Empty(t, buf.Drain())
}

func TestRetrievalLogBuffer_DropsOldestWhenFull(t *testing.T) {
	buf := NewRetrievalLogBuffer(2)

	buf.Record(domain.RetrievalLogEntry{Query: "a"})
	buf.Record(domain.RetrievalLogEntry{Query: "b"})
	buf.Record(domain.RetrievalLogEntry{Query: "c"})

	entries := buf.Drain()
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Query)
	assert.Equal(t, "c", entries[1].Query)
}

func TestRetrievalLogFlusher_Flushes(t *testing.T) {
	buf := NewRetrievalLogBuffer(10)
	repo := &mockRetrievalLogRepo{}
	flusher := NewRetrievalLogFlusher(buf, repo)

	buf.Record(domain.RetrievalLogEntry{Query: "q"})
	repo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(entries []domain.RetrievalLogEntry) bool {
		return len(entries) == 1 && entries[0].Query == "q"
	})).Return(nil)

	err := flusher.ProcessJobs(context.Background())

	require.NoError(t, err)
	assert.Empty(t, buf.Drain())
	repo.AssertExpectations(t)
}

func TestRetrievalLogFlusher_EmptyBufferIsNoop(t *testing.T) {
	repo := &mockRetrievalLogRepo{}
	flusher := NewRetrievalLogFlusher(NewRetrievalLogBuffer(10), repo)

	err := flusher.ProcessJobs(context.Background())

	require.NoError(t, err)
	repo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestRetrievalLogFlusher_RequeuesOnFailure(t *testing.T) {
	buf := NewRetrievalLogBuffer(10)
	repo := &mockRetrievalLogRepo{}
	flusher := NewRetrievalLogFlusher(buf, repo)

	buf.Record(domain.RetrievalLogEntry{Query: "q"})
	repo.On("InsertBatch", mock.Anything, mock.Anything).Return(errors.New("db down"))

	err := flusher.ProcessJobs(context.Background())

	assert.Error(t, err)
	entries := buf.Drain()
	require.Len(t, entries, 1)
	assert.Equal(t, "q", entries[0].Query)
}
