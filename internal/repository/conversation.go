package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/888Greys/rag-ai/internal/domain"
	"github.com/888Greys/rag-ai/internal/pagination"
	"github.com/888Greys/rag-ai/internal/service"
)

// ConversationRepository handles persistence of chat conversations.
// Messages are stored as a JSONB document; an upsert replaces the whole
// list, matching how clients resend the full history each turn.
type ConversationRepository struct {
	db dbtx
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: pool}
}

func NewConversationRepositoryWithTx(tx pgx.Tx) *ConversationRepository {
	return &ConversationRepository{db: tx}
}

func (r *ConversationRepository) Upsert(ctx context.Context, c *domain.Conversation) error {
	messages, err := json.Marshal(c.Messages)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO conversations (id, author, messages, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET messages = EXCLUDED.messages, updated_at = EXCLUDED.updated_at`,
		c.ID, c.Author, messages, createdAt, now,
	)
	return err
}

// GetByID returns the conversation or nil when it does not exist.
func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, author, messages, created_at, updated_at
		 FROM conversations WHERE id = $1`, id)

	c, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ConversationRepository) ListByAuthorWithCursor(ctx context.Context, author string, cursor *pagination.Cursor, limit int) (*service.ConversationPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, author, messages, created_at, updated_at
			 FROM conversations
			 WHERE author = $1 AND (updated_at, id) < ($2, $3)
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $4`,
			author, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, author, messages, created_at, updated_at
			 FROM conversations
			 WHERE author = $1
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $2`,
			author, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.UpdatedAt)
	}

	return &service.ConversationPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	var c domain.Conversation
	var messages []byte
	if err := row.Scan(&c.ID, &c.Author, &messages, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(messages, &c.Messages); err != nil {
		return nil, err
	}
	return &c, nil
}
