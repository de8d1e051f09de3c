package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// KnowledgeStore answers nearest-neighbour queries over one tenant's chunks.
// Implementations must scope results to the given tenant; a chunk from
// another tenant in the result set is a correctness bug, not a ranking issue.
type KnowledgeStore interface {
	SimilarChunks(ctx context.Context, tenantID uuid.UUID, embedding []float32, limit int) ([]ChunkMatch, error)
}

type PostgresKnowledgeStore struct {
	pool *pgxpool.Pool
}

func NewPostgresKnowledgeStore(pool *pgxpool.Pool) *PostgresKnowledgeStore {
	return &PostgresKnowledgeStore{pool: pool}
}

func (s *PostgresKnowledgeStore) SimilarChunks(ctx context.Context, tenantID uuid.UUID, embedding []float32, limit int) ([]ChunkMatch, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding is empty")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	rows, err := s.pool.Query(ctx, `
        SELECT
            id,
            content,
            source_url,
            (embedding <-> $2::vector) AS distance
        FROM knowledge_chunks
        WHERE tenant_id = $1
        ORDER BY embedding <-> $2::vector
        LIMIT $3
    `, tenantID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	results := make([]ChunkMatch, 0, limit)
	for rows.Next() {
		var item ChunkMatch
		if scanErr := rows.Scan(&item.ChunkID, &item.Content, &item.Source, &item.Distance); scanErr != nil {
			return nil, fmt.Errorf("scan similar chunk: %w", scanErr)
		}
		results = append(results, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return results, nil
}

var _ KnowledgeStore = (*PostgresKnowledgeStore)(nil)
