//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/888Greys/rag-ai/internal/domain"
	"github.com/888Greys/rag-ai/internal/testutil"
)

func TestRetrievalLogRepository_InsertBatch(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewRetrievalLogRepository(pool)

	entries := []domain.RetrievalLogEntry{
		{
			ID:             uuid.NewString(),
			ConversationID: "conv-1",
			Author:         "alice@example.com",
			Query:          "what is the policy?",
			ExpandedQuery:  "The policy states that...",
			Patterns:       []string{"shared/%", "kca/%"},
			ChunkIDs:       []string{"shared/policy.txt/0"},
			TopScore:       0.91,
			CreatedAt:      time.Now().UTC(),
		},
	}
	require.NoError(t, repo.InsertBatch(ctx, entries))

	// Replaying the same batch after a partial flush is harmless.
	require.NoError(t, repo.InsertBatch(ctx, entries))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM retrieval_logs`).Scan(&count))
	assert.Equal(t, 1, count)
}
