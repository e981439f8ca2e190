package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, EnvironmentDevelopment, cfg.Environment)
	assert.True(t, cfg.IsDevelopment())

	assert.Equal(t, "localhost:6379", cfg.Redis.Address())

	assert.Equal(t, "gpt-4o", cfg.OpenAI.ChatModel)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, 1536, cfg.OpenAI.EmbeddingDimensions)

	assert.Equal(t, 0.9, cfg.Agent.DedupThreshold)
	assert.Equal(t, 0.3, cfg.Agent.RelevanceThreshold)
	assert.Equal(t, 5, cfg.Agent.RetrievalLimit)
	assert.Equal(t, time.Hour, cfg.Agent.ConversationTTL)
	assert.Equal(t, 10, cfg.Agent.SummarizeAfter)
	assert.Equal(t, 4, cfg.Agent.KeepRecent)
	assert.Equal(t, "redis", cfg.Agent.VectorStoreMode)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("AGENT_DEDUP_THRESHOLD", "0.8")
	t.Setenv("AGENT_CONVERSATION_TTL", "30m")
	t.Setenv("VECTOR_STORE_MODE", "local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvironmentProduction, cfg.Environment)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Address())
	assert.Equal(t, 0.8, cfg.Agent.DedupThreshold)
	assert.Equal(t, 30*time.Minute, cfg.Agent.ConversationTTL)
	assert.Equal(t, "local", cfg.Agent.VectorStoreMode)
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"dedup threshold of zero", "AGENT_DEDUP_THRESHOLD", "0"},
		{"dedup threshold above one", "AGENT_DEDUP_THRESHOLD", "1.5"},
		{"relevance threshold of one", "AGENT_RELEVANCE_THRESHOLD", "1"},
		{"negative relevance threshold", "AGENT_RELEVANCE_THRESHOLD", "-0.1"},
		{"summarize threshold too small", "AGENT_SUMMARIZE_AFTER", "1"},
		{"keep recent at threshold", "AGENT_KEEP_RECENT", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestMalformedEnvFallsBackToDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("AGENT_DEDUP_THRESHOLD", "very high")
	t.Setenv("AGENT_CONVERSATION_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.9, cfg.Agent.DedupThreshold)
	assert.Equal(t, time.Hour, cfg.Agent.ConversationTTL)
}
