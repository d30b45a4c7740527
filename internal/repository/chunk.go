package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/888Greys/rag-ai/internal/domain"
)

// ChunkRepository handles persistence of embedded document chunks.
type ChunkRepository struct {
	pool *pgxpool.Pool
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

// ReplaceDocument swaps every chunk under a document path in one
// transaction, so readers never observe a half-ingested document.
func (r *ChunkRepository) ReplaceDocument(ctx context.Context, path string, chunks []domain.Chunk) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE path = $1`, path); err != nil {
			return err
		}
		return insertChunks(ctx, tx, chunks)
	})
}

// InsertChunks inserts chunks in one transaction without touching
// existing rows.
func (r *ChunkRepository) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return insertChunks(ctx, tx, chunks)
	})
}

func insertChunks(ctx context.Context, tx pgx.Tx, chunks []domain.Chunk) error {
	for _, c := range chunks {
		_, err := tx.Exec(ctx,
			`INSERT INTO chunks (id, path, content, embedding)
			 VALUES ($1, $2, $3, $4)`,
			c.ID, c.Path, c.Content, pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// QueryByPaths loads every chunk whose path matches any of the given
// patterns. A pattern containing `%` matches as SQL LIKE; anything else
// must match exactly. One query serves the whole set so a chunk caught
// by several patterns comes back once.
func (r *ChunkRepository) QueryByPaths(ctx context.Context, patterns []string) ([]domain.Chunk, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	var exact []string
	var conditions []string
	args := []any{}
	for _, p := range patterns {
		if strings.Contains(p, domain.Wildcard) {
			args = append(args, p)
			conditions = append(conditions, fmt.Sprintf("path LIKE $%d", len(args)))
		} else {
			exact = append(exact, p)
		}
	}
	if len(exact) > 0 {
		args = append(args, exact)
		conditions = append(conditions, fmt.Sprintf("path = ANY($%d)", len(args)))
	}

	query := `SELECT id, path, content, embedding FROM chunks WHERE ` +
		strings.Join(conditions, " OR ") + ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var embedding pgvector.Vector
		if err := rows.Scan(&c.ID, &c.Path, &c.Content, &embedding); err != nil {
			return nil, err
		}
		c.Embedding = embedding.Slice()
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// DeleteByPath removes every chunk under path and reports how many rows
// went away. Zero is not an error.
func (r *ChunkRepository) DeleteByPath(ctx context.Context, path string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chunks WHERE path = $1`, path)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListPaths returns the distinct document paths matching pattern,
// useful for admin tooling.
func (r *ChunkRepository) ListPaths(ctx context.Context, pattern string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT path FROM chunks WHERE path LIKE $1 ORDER BY path`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
