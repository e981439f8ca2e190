package config

import "time"

// AgentConfig carries the tunables of the memory-augmented agent. The two
// similarity thresholds encode assumptions about the embedding model's score
// distribution, so they are configuration rather than constants.
type AgentConfig struct {
	// DedupThreshold is the minimum similarity at which a candidate memory is
	// considered a duplicate of an existing one and skipped.
	DedupThreshold float64

	// RelevanceThreshold is the minimum similarity at which a stored memory is
	// injected into the conversation prompt. Deliberately much lower than
	// DedupThreshold: recall matters more than precision here.
	RelevanceThreshold float64

	// RetrievalLimit is the number of memories fetched per turn.
	RetrievalLimit int

	// ConversationTTL is how long an inactive conversation survives in Redis.
	ConversationTTL time.Duration

	// SummarizeAfter is the history length past which the conversation is
	// compacted into a summary.
	SummarizeAfter int

	// KeepRecent is the number of trailing messages preserved verbatim when
	// the conversation is summarized.
	KeepRecent int

	// VectorStoreMode selects the vector backend: "redis" or "local".
	VectorStoreMode string

	// SystemPrompt overrides the default travel-assistant system prompt.
	SystemPrompt string
}

func loadAgentConfig() AgentConfig {
	return AgentConfig{
		DedupThreshold:     getEnvFloat("AGENT_DEDUP_THRESHOLD", 0.9),
		RelevanceThreshold: getEnvFloat("AGENT_RELEVANCE_THRESHOLD", 0.3),
		RetrievalLimit:     getEnvInt("AGENT_RETRIEVAL_LIMIT", 5),
		ConversationTTL:    getEnvDuration("AGENT_CONVERSATION_TTL", time.Hour),
		SummarizeAfter:     getEnvInt("AGENT_SUMMARIZE_AFTER", 10),
		KeepRecent:         getEnvInt("AGENT_KEEP_RECENT", 4),
		VectorStoreMode:    getEnv("VECTOR_STORE_MODE", "redis"),
		SystemPrompt:       getEnv("AGENT_SYSTEM_PROMPT", ""),
	}
}
