package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/888Greys/rag-ai/internal/domain"
)

// RetrievalLogRepositoryInterface defines the repository interface for
// retrieval log persistence.
type RetrievalLogRepositoryInterface interface {
	InsertBatch(ctx context.Context, entries []domain.RetrievalLogEntry) error
}

// RetrievalLogBuffer collects retrieval log entries in memory so logging
// never sits on the chat request path. A background worker drains it.
type RetrievalLogBuffer struct {
	mu      sync.Mutex
	entries []domain.RetrievalLogEntry
	limit   int
}

const defaultBufferLimit = 1000

func NewRetrievalLogBuffer(limit int) *RetrievalLogBuffer {
	if limit <= 0 {
		limit = defaultBufferLimit
	}
	return &RetrievalLogBuffer{limit: limit}
}

// Record queues an entry, filling in id and timestamp. When the buffer
// is full the oldest entry is dropped; losing a log line is preferable
// to unbounded growth.
func (b *RetrievalLogBuffer) Record(entry domain.RetrievalLogEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) >= b.limit {
		b.entries = b.entries[1:]
	}
	b.entries = append(b.entries, entry)
}

// Drain removes and returns everything currently buffered.
func (b *RetrievalLogBuffer) Drain() []domain.RetrievalLogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.entries
	b.entries = nil
	return entries
}

// Requeue puts entries back at the front after a failed flush.
func (b *RetrievalLogBuffer) Requeue(entries []domain.RetrievalLogEntry) {
	if len(entries) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(entries, b.entries...)
	if len(b.entries) > b.limit {
		b.entries = b.entries[len(b.entries)-b.limit:]
	}
}

// RetrievalLogFlusher drains the buffer into the repository. It
// satisfies the background worker's job processor contract.
type RetrievalLogFlusher struct {
	buffer *RetrievalLogBuffer
	repo   RetrievalLogRepositoryInterface
}

func NewRetrievalLogFlusher(buffer *RetrievalLogBuffer, repo RetrievalLogRepositoryInterface) *RetrievalLogFlusher {
	return &RetrievalLogFlusher{buffer: buffer, repo: repo}
}

// ProcessJobs flushes buffered entries. On failure the batch is
// requeued for the next poll.
func (f *RetrievalLogFlusher) ProcessJobs(ctx context.Context) error {
	entries := f.buffer.Drain()
	if len(entries) == 0 {
		return nil
	}
	if err := f.repo.InsertBatch(ctx, entries); err != nil {
		f.buffer.Requeue(entries)
		return fmt.Errorf("flush retrieval logs: %w", err)
	}
	return nil
}
