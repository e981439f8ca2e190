// container.go
package main

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/wayfarer-ai/wayfarer/pkg/ai/embedding"
	"github.com/wayfarer-ai/wayfarer/pkg/ai/llm"
	aiopenai "github.com/wayfarer-ai/wayfarer/pkg/ai/providers/openai"
	"github.com/wayfarer-ai/wayfarer/pkg/chat"
	"github.com/wayfarer-ai/wayfarer/pkg/chat/chatapi"
	"github.com/wayfarer-ai/wayfarer/pkg/chat/chatinfra"
	"github.com/wayfarer-ai/wayfarer/pkg/chat/chatsrv"
	"github.com/wayfarer-ai/wayfarer/pkg/config"
	"github.com/wayfarer-ai/wayfarer/pkg/logx"
	"github.com/wayfarer-ai/wayfarer/pkg/memory"
	"github.com/wayfarer-ai/wayfarer/pkg/memory/memoryapi"
	"github.com/wayfarer-ai/wayfarer/pkg/memory/memoryinfra"
	"github.com/wayfarer-ai/wayfarer/pkg/memory/memorysrv"
)

// Container holds all application dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	Redis             *redis.Client
	LLM               *llm.Client
	Embedder          *embedding.Client
	VectorStore       memory.VectorStore
	ConversationStore chat.ConversationStore
	HistoryCache      *chatsrv.HistoryCache

	// Domain Services
	MemoryService *memorysrv.MemoryService
	ChatService   *chatsrv.ChatService

	// API Handlers
	ChatHandlers   *chatapi.ChatHandlers
	MemoryHandlers *memoryapi.MemoryHandlers
}

// NewContainer initializes the dependency injection container
func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing dependency container...")

	c := &Container{
		Config: cfg,
	}

	c.initInfrastructure()
	c.initServices()

	logx.Info("✅ Container initialized successfully")
	return c
}

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Redis Connection
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required for conversation storage)", err)
	} else {
		logx.Info("✅ Redis connected")
	}

	// 2. OpenAI Provider (chat completions + embeddings)
	provider := aiopenai.NewOpenAIProvider(c.Config.OpenAI.APIKey)
	c.LLM = llm.NewClient(provider)
	c.Embedder = embedding.NewClient(provider)
	logx.Infof("✅ OpenAI provider configured (chat: %s, embeddings: %s)",
		c.Config.OpenAI.ChatModel, c.Config.OpenAI.EmbeddingModel)

	// 3. Vector Store Configuration (Redis or Local)
	c.initVectorStore(provider)

	logx.Info("✅ Infrastructure initialized")
}

func (c *Container) initVectorStore(embedder embedding.Embedder) {
	switch c.Config.Agent.VectorStoreMode {
	case "redis":
		store, err := memoryinfra.NewRedisVectorStore(
			context.Background(),
			c.Redis,
			embedder,
			c.Config.OpenAI.EmbeddingModel,
			c.Config.OpenAI.EmbeddingDimensions,
		)
		if err != nil {
			logx.Fatalf("Failed to initialize Redis vector store: %v", err)
		}
		c.VectorStore = store
		logx.Info("✅ Redis vector store configured (RediSearch HNSW index)")

	case "local":
		store, err := memoryinfra.NewChromemVectorStore(
			embedder,
			c.Config.OpenAI.EmbeddingModel,
			c.Config.OpenAI.EmbeddingDimensions,
		)
		if err != nil {
			logx.Fatalf("Failed to initialize local vector store: %v", err)
		}
		c.VectorStore = store
		logx.Warn("⚠️  Using in-process vector store (memories do not survive restarts)")

	default:
		logx.Fatalf("Unknown VECTOR_STORE_MODE: %s (use 'redis' or 'local')", c.Config.Agent.VectorStoreMode)
	}
}

func (c *Container) initServices() {
	logx.Info("🗄️  Initializing services and handlers...")

	// --- Conversation Infrastructure ---
	c.ConversationStore = chatinfra.NewRedisConversationStore(c.Redis, c.Config.Agent.ConversationTTL)
	c.HistoryCache = chatsrv.NewHistoryCache()

	// --- Domain Services ---
	c.MemoryService = memorysrv.NewMemoryService(
		c.VectorStore,
		c.Config.Agent.DedupThreshold,
	)

	c.ChatService = chatsrv.NewChatService(
		c.LLM,
		c.MemoryService,
		c.ConversationStore,
		c.HistoryCache,
		&c.Config.Agent,
		c.Config.OpenAI.ChatModel,
	)

	// --- API Handlers ---
	c.ChatHandlers = chatapi.NewChatHandlers(c.ChatService)
	c.MemoryHandlers = memoryapi.NewMemoryHandlers(c.MemoryService)

	logx.Info("✅ All services and handlers initialized")
}

// Cleanup closes all connections
func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup completed")
}
