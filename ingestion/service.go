package ingestion

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/praxkit/praxis-chat/embeddings"
	"github.com/praxkit/praxis-chat/tenant"
)

// Pages shorter than this after extraction are skipped; they are usually
// redirect stubs or cookie walls.
const minContentLength = 10

type Service struct {
	tenants      tenant.Store
	store        Store
	embedder     embeddings.Embedder
	logger       *log.Logger
	client       *http.Client
	chunkSize    int
	chunkOverlap int
}

func NewService(tenants tenant.Store, store Store, embedder embeddings.Embedder, logger *log.Logger, chunkSize, chunkOverlap int) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 150
	}

	return &Service{
		tenants:      tenants,
		store:        store,
		embedder:     embedder,
		logger:       logger,
		client:       &http.Client{Timeout: 30 * time.Second},
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// IngestURL fetches sourceURL, chunks its visible text, embeds every chunk,
// and stores the rows tagged with the tenant and the URL. It returns the
// number of chunks stored. Running it twice for the same URL doubles the
// rows; serving reads whatever is there.
func (s *Service) IngestURL(ctx context.Context, slug, sourceURL string) (int, error) {
	if s.embedder == nil {
		return 0, fmt.Errorf("embedder not configured")
	}

	t, err := s.tenants.TenantBySlug(ctx, slug)
	if err != nil {
		return 0, fmt.Errorf("resolve tenant: %w", err)
	}

	text, err := FetchText(ctx, s.client, sourceURL)
	if err != nil {
		return 0, fmt.Errorf("extract text: %w", err)
	}

	if len(text) < minContentLength {
		s.logger.Printf("skip %s: extracted page is empty or tiny", sourceURL)
		return 0, nil
	}

	pieces := ChunkText(text, s.chunkSize, s.chunkOverlap)
	if len(pieces) == 0 {
		s.logger.Printf("skip %s: no chunks after normalization", sourceURL)
		return 0, nil
	}

	vectors, err := s.embedder.Embed(ctx, pieces)
	if err != nil {
		return 0, fmt.Errorf("generate embeddings: %w", err)
	}
	if len(vectors) != len(pieces) {
		return 0, fmt.Errorf("embedding count mismatch: have %d chunks, %d embeddings", len(pieces), len(vectors))
	}

	chunks := make([]Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = Chunk{
			ID:        uuid.New(),
			TenantID:  t.ID,
			SourceURL: sourceURL,
			Content:   piece,
			Embedding: vectors[i],
		}
	}

	if err := s.store.InsertChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	s.logger.Printf("stored %d chunks for tenant %s from %s", len(chunks), t.Slug, sourceURL)
	return len(chunks), nil
}
