package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbeddingDatum struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type openAIEmbeddingStub struct {
	Object string               `json:"object"`
	Data   []stubEmbeddingDatum `json:"data"`
	Model  string               `json:"model"`
}

func newOpenAITestEmbedder(t *testing.T, dimension int, vectors [][]float32) Embedder {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := openAIEmbeddingStub{Object: "list", Model: "text-embedding-3-large"}
		for i, vec := range vectors {
			payload.Data = append(payload.Data, stubEmbeddingDatum{Object: "embedding", Index: i, Embedding: vec})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)

	return NewOpenAIEmbedder(Options{
		Provider:      "openai",
		Model:         "text-embedding-3-large",
		Dimension:     dimension,
		OpenAIAPIKey:  "test-key",
		OpenAIBaseURL: srv.URL + "/v1",
	})
}

func TestOpenAIEmbedderReturnsAlignedVectors(t *testing.T) {
	embedder := newOpenAITestEmbedder(t, 2, [][]float32{{0.1, 0.2}, {0.3, 0.4}})

	vectors, err := embedder.Embed(context.Background(), []string{"eins", "zwei"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float32{0.3, 0.4}, vectors[1])
}

func TestOpenAIEmbedderCountMismatch(t *testing.T) {
	embedder := newOpenAITestEmbedder(t, 0, [][]float32{{0.1, 0.2}})

	_, err := embedder.Embed(context.Background(), []string{"eins", "zwei"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 inputs")
}

func TestOpenAIEmbedderDimensionMismatch(t *testing.T) {
	embedder := newOpenAITestEmbedder(t, 4, [][]float32{{0.1, 0.2}})

	_, err := embedder.Embed(context.Background(), []string{"eins"})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestOpenAIEmbedderEmptyInput(t *testing.T) {
	embedder := newOpenAITestEmbedder(t, 0, nil)

	vectors, err := embedder.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}
