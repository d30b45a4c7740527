package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/888Greys/rag-ai/internal/domain"
)

// RetrievalLogRepository persists retrieval log entries.
type RetrievalLogRepository struct {
	db dbtx
}

func NewRetrievalLogRepository(pool *pgxpool.Pool) *RetrievalLogRepository {
	return &RetrievalLogRepository{db: pool}
}

func (r *RetrievalLogRepository) InsertBatch(ctx context.Context, entries []domain.RetrievalLogEntry) error {
	for _, e := range entries {
		_, err := r.db.Exec(ctx,
			`INSERT INTO retrieval_logs
				(id, conversation_id, author, query, expanded_query, patterns, chunk_ids, top_score, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (id) DO NOTHING`,
			e.ID, e.ConversationID, e.Author, e.Query, e.ExpandedQuery,
			e.Patterns, e.ChunkIDs, e.TopScore, e.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
