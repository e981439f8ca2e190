package config

type OpenAIConfig struct {
	APIKey              string
	ChatModel           string
	EmbeddingModel      string
	EmbeddingDimensions int
}

func loadOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		APIKey:              getEnv("OPENAI_API_KEY", ""),
		ChatModel:           getEnv("OPENAI_CHAT_MODEL", "gpt-4o"),
		EmbeddingModel:      getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimensions: getEnvInt("OPENAI_EMBEDDING_DIMENSIONS", 1536),
	}
}
