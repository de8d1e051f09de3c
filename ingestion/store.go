package ingestion

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Chunk is one embedded span of source text ready for storage.
type Chunk struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	SourceURL string
	Content   string
	Embedding []float32
}

// Store persists chunks. Inserts only: re-ingesting a URL adds rows next to
// the existing ones, there is no dedup or versioning.
type Store interface {
	InsertChunks(ctx context.Context, chunks []Chunk) error
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) InsertChunks(ctx context.Context, chunks []Chunk) (err error) {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, chunk := range chunks {
		if _, err = tx.Exec(ctx, `
            INSERT INTO knowledge_chunks (id, tenant_id, source_url, content, embedding)
            VALUES ($1, $2, $3, $4, $5)
        `, chunk.ID, chunk.TenantID, chunk.SourceURL, chunk.Content, pgvector.NewVector(chunk.Embedding)); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
