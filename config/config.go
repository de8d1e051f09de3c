package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type Config struct {
	PostgresDSN string
	ListenAddr  string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaHost    string

	Embeddings EmbeddingsConfig
	LLM        LLMConfig
	Retrieval  RetrievalConfig
	Ingestion  IngestionConfig
}

type EmbeddingsConfig struct {
	Provider  string
	Model     string
	Dimension int
}

type LLMConfig struct {
	Provider    string
	Model       string
	Temperature float32
}

type RetrievalConfig struct {
	TopK int
}

type IngestionConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// Load reads configuration from the environment, after loading a local .env
// file when one exists. Every value has a working default except the OpenAI
// API key, which the providers validate themselves.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		PostgresDSN: getEnv("POSTGRES_DSN", "postgres://localhost:5432/praxis-chat?sslmode=disable"),
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),

		Embeddings: EmbeddingsConfig{
			Provider:  getEnv("EMBEDDINGS_PROVIDER", ProviderOpenAI),
			Model:     getEnv("EMBEDDINGS_MODEL", "text-embedding-3-large"),
			Dimension: getEnvInt("EMBEDDINGS_DIMENSION", 3072),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", ProviderOpenAI),
			Model:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			Temperature: 0.3,
		},
		Retrieval: RetrievalConfig{
			TopK: getEnvInt("RETRIEVAL_TOP_K", 4),
		},
		Ingestion: IngestionConfig{
			ChunkSize:    getEnvInt("INGEST_CHUNK_SIZE", 800),
			ChunkOverlap: getEnvInt("INGEST_CHUNK_OVERLAP", 150),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
