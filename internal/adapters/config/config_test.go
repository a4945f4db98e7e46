package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyalpha/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, "*", cfg.HTTP.AllowedOrigin())
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.AI.ClaudeModel)
	assert.Equal(t, "gpt-4-turbo-preview", cfg.AI.OpenAIModel)
	assert.Equal(t, 60*time.Second, cfg.AI.CallTimeout)
	assert.Equal(t, 4096, cfg.AI.MaxTokens)
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.Polymarket.BaseURL)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "analysis.provider_attempts", cfg.Kafka.TraceTopic)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FRONTEND_URL", "http://localhost:5173")
	t.Setenv("PORT", "8080")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr())
	assert.Equal(t, "http://localhost:5173", cfg.HTTP.AllowedOrigin())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("AI_CALL_TIMEOUT", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
