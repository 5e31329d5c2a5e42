package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"20"`

	// Local model backend (Ollama-compatible)
	OllamaBaseURL    string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	OllamaChatModel  string `envconfig:"OLLAMA_CHAT_MODEL" default:"llama3.2"`
	OllamaEmbedModel string `envconfig:"OLLAMA_EMBED_MODEL" default:"nomic-embed-text"`

	// Hosted backend, preferred over the local one when configured
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	OpenAIChatModel string `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-4o-mini"`

	// EmbeddingDimensions is the store-wide vector dimensionality. Every
	// embedding is resized to this length no matter which backend produced it.
	EmbeddingDimensions int `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	// SimilarityFloor is the minimum cosine similarity for fallback vector
	// search. Deliberately permissive: cross-backend embeddings are weak
	// signals.
	SimilarityFloor float64 `envconfig:"SIMILARITY_FLOOR" default:"0.1"`

	DefaultTopK int `envconfig:"DEFAULT_TOP_K" default:"5"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	// Object storage for extracted document text; optional
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"askdoc-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ASKDOC", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
