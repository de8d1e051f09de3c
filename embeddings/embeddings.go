package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/praxkit/praxis-chat/config"
)

// ErrDimensionMismatch is returned when a provider delivers vectors of a
// different width than the schema was created with. Storing such a vector
// would fail at insert time, so the mismatch surfaces here instead.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Options struct {
	Provider  string
	Model     string
	Dimension int

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

func NewEmbedder(cfg config.Config) (Embedder, error) {
	opts := Options{
		Provider:      cfg.Embeddings.Provider,
		Model:         cfg.Embeddings.Model,
		Dimension:     cfg.Embeddings.Dimension,
		OllamaHost:    cfg.OllamaHost,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
	}

	switch opts.Provider {
	case config.ProviderOllama:
		return NewOllamaEmbedder(opts), nil
	case config.ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		return NewOpenAIEmbedder(opts), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", opts.Provider)
	}
}

// EmbedOne embeds a single text and returns its vector. Query embedding at
// serving time is always a single input.
func EmbedOne(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	vectors, err := embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}
	return vectors[0], nil
}

// checkDimension validates a vector width against the configured dimension.
// A zero configured dimension disables the check.
func checkDimension(want, got int) error {
	if want > 0 && got != want {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, want, got)
	}
	return nil
}
