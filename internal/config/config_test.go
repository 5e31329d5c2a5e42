package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ASKDOC_DATABASE_URL", "postgres://localhost/askdoc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaBaseURL)
	assert.Equal(t, "nomic-embed-text", cfg.OllamaEmbedModel)
	assert.Equal(t, 1536, cfg.EmbeddingDimensions)
	assert.Equal(t, 0.1, cfg.SimilarityFloor)
	assert.Equal(t, 5, cfg.DefaultTopK)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("ASKDOC_DATABASE_URL", "")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ASKDOC_DATABASE_URL", "postgres://localhost/askdoc")
	t.Setenv("ASKDOC_PORT", "9090")
	t.Setenv("ASKDOC_EMBEDDING_DIMENSIONS", "768")
	t.Setenv("ASKDOC_OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 768, cfg.EmbeddingDimensions)
	assert.True(t, cfg.HasOpenAI())
}

func TestConfig_FeatureFlags(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.HasS3())
	assert.False(t, cfg.HasOpenAI())
	assert.False(t, cfg.HasSentry())

	cfg.S3Endpoint = "http://localhost:9000"
	cfg.S3AccessKey = "key"
	cfg.S3SecretKey = "secret"
	assert.True(t, cfg.HasS3())

	cfg.SentryDSN = "https://abc@sentry.example/1"
	assert.True(t, cfg.HasSentry())
}
