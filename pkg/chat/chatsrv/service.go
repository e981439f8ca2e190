package chatsrv

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wayfarer-ai/wayfarer/pkg/ai/llm"
	"github.com/wayfarer-ai/wayfarer/pkg/chat"
	"github.com/wayfarer-ai/wayfarer/pkg/config"
	"github.com/wayfarer-ai/wayfarer/pkg/logx"
	"github.com/wayfarer-ai/wayfarer/pkg/memory"
	"github.com/wayfarer-ai/wayfarer/pkg/memory/memorysrv"
)

const summaryPrompt = `Summarize the key points of this conversation, including:
1. User preferences and important details
2. Topics discussed
3. Any decisions or conclusions reached

Keep the summary concise but informative.`

// ChatService drives the per-user conversation state machine: it loads or
// seeds the history, augments the prompt with relevant memories, invokes the
// completion model, extracts and stores new memories from the exchange and
// compacts the history once it grows past the configured threshold.
type ChatService struct {
	llmClient    *llm.Client
	memories     *memorysrv.MemoryService
	store        chat.ConversationStore
	cache        *HistoryCache
	cfg          *config.AgentConfig
	model        string
	systemPrompt llm.Message
}

// NewChatService wires the orchestrator. The cache is injected so its
// lifecycle is explicit rather than ambient process state.
func NewChatService(
	llmClient *llm.Client,
	memories *memorysrv.MemoryService,
	store chat.ConversationStore,
	cache *HistoryCache,
	cfg *config.AgentConfig,
	model string,
) *ChatService {
	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = chat.DefaultSystemPrompt
	}

	return &ChatService{
		llmClient:    llmClient,
		memories:     memories,
		store:        store,
		cache:        cache,
		cfg:          cfg,
		model:        model,
		systemPrompt: llm.NewSystemMessage(prompt),
	}
}

// SendMessage runs one chat turn for the user and returns the assistant's
// reply with per-step timings. The per-user cache lock is held for the whole
// turn, so concurrent requests for the same user are serialized while other
// users are unaffected.
func (s *ChatService) SendMessage(ctx context.Context, message, userID string) (chat.ChatTurn, error) {
	logx.Infof("Processing message from user %s: %s", userID, message)

	turnStart := time.Now()
	var metrics chat.TurnMetrics

	handle := s.cache.Lock(userID)
	defer handle.Unlock()

	history := handle.Messages()
	if len(history) == 0 {
		loaded, err := s.store.Load(ctx, userID)
		if err != nil {
			logx.Errorf("Error loading conversation history from store: %v", err)
		}
		if len(loaded) > 0 {
			history = loaded
		} else {
			history = []llm.Message{s.systemPrompt}
		}
	}

	// Retrieve relevant memories for the incoming message.
	stepStart := time.Now()
	relevant, err := s.memories.RetrieveMemories(ctx, message, "", userID, s.cfg.RetrievalLimit, s.cfg.RelevanceThreshold)
	metrics.RetrievalMillis = millisSince(stepStart)
	if err != nil {
		return chat.ChatTurn{}, chat.ErrRetrievalFailed().WithCause(err)
	}

	if len(relevant) > 0 {
		memoryContext := formatMemoriesAsContext(relevant)
		history = append(history, llm.NewSystemMessage(memoryContext))
		logx.Infof("Added memory context to conversation: %s", memoryContext)
	}

	history = append(history, llm.NewUserMessage(message))
	handle.Replace(history)

	// Generate the assistant response.
	stepStart = time.Now()
	response, err := s.llmClient.Chat(ctx, history, llm.WithModel(s.model))
	metrics.CompletionMillis = millisSince(stepStart)
	if err != nil {
		return chat.ChatTurn{}, chat.ErrModelFailed().WithCause(err)
	}

	responseText := response.Message.Content
	history = append(history, llm.NewAssistantMessage(responseText))
	handle.Replace(history)

	stepStart = time.Now()
	if err := s.store.Save(ctx, userID, history); err != nil {
		logx.Errorf("Error saving conversation history: %v", err)
	}
	metrics.PersistenceMillis = millisSince(stepStart)

	// Extract and store memories from the exchange, best effort.
	s.extractAndStoreMemories(ctx, message, responseText, userID, &metrics)

	// Compact the history once it outgrows the threshold.
	if len(history) > s.cfg.SummarizeAfter {
		stepStart = time.Now()
		if summarized, ok := s.summarizeConversation(ctx, history, userID); ok {
			history = summarized
			handle.Replace(history)
			if err := s.store.Save(ctx, userID, history); err != nil {
				logx.Errorf("Error saving summarized conversation history: %v", err)
			}
		}
		metrics.SummarizationMillis = millisSince(stepStart)
	}

	metrics.TotalMillis = millisSince(turnStart)

	return chat.ChatTurn{
		Response: responseText,
		Metrics:  metrics,
	}, nil
}

// GetConversationHistory returns the user's history: cache hit first, store
// fallback second (populating the cache). No system prompt is seeded here.
func (s *ChatService) GetConversationHistory(ctx context.Context, userID string) ([]llm.Message, error) {
	if cached, ok := s.cache.Peek(userID); ok {
		return cached, nil
	}

	loaded, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(loaded) > 0 {
		s.cache.Put(userID, loaded)
	}

	return loaded, nil
}

// ClearConversationHistory removes the user's history from both the cache and
// the durable store. Safe to call repeatedly.
func (s *ChatService) ClearConversationHistory(ctx context.Context, userID string) error {
	s.cache.Delete(userID)

	if err := s.store.Clear(ctx, userID); err != nil {
		return err
	}

	logx.Infof("Cleared conversation history for user %s", userID)
	return nil
}

// formatMemoriesAsContext renders retrieved memories as a system message that
// instructs the model to use but not cite them.
func formatMemoriesAsContext(memories []memory.StoredMemory) string {
	lines := make([]string, 0, len(memories))
	for _, m := range memories {
		lines = append(lines, fmt.Sprintf("- [%s] %s", m.Memory.MemoryType, m.Memory.Content))
	}

	return fmt.Sprintf(`I have access to the following relevant memories about this user or topic:

%s

Use this information to personalize your response, but don't explicitly mention
that you're using stored memories unless directly asked about your memory capabilities.`, strings.Join(lines, "\n"))
}

// extractAndStoreMemories asks the model for memory candidates from the turn
// and stores them. Every failure here is logged and swallowed; a chat turn
// never fails because memory enrichment did.
func (s *ChatService) extractAndStoreMemories(ctx context.Context, userMessage, assistantResponse, userID string, metrics *chat.TurnMetrics) {
	logx.Info("Extracting memories from conversation")

	prompt := fmt.Sprintf(extractionPromptTemplate, userMessage, assistantResponse)

	stepStart := time.Now()
	response, err := s.llmClient.Chat(ctx, []llm.Message{llm.NewSystemMessage(prompt)}, llm.WithModel(s.model))
	metrics.ExtractionMillis = millisSince(stepStart)
	if err != nil {
		logx.Errorf("Error extracting memories: %v", err)
		return
	}

	logx.Debugf("Memory extraction response: %s", response.Message.Content)
	candidates := parseMemoryCandidates(response.Message.Content)
	if len(candidates) == 0 {
		return
	}

	stepStart = time.Now()
	for _, candidate := range candidates {
		memoryType := memory.ParseMemoryType(candidate.Type)
		memoryUserID := userID
		if memoryType == memory.TypeSemantic {
			memoryUserID = memory.SystemUserID
		}

		if _, err := s.memories.StoreMemory(ctx, candidate.Content, memoryType, memoryUserID, "{}"); err != nil {
			logx.Errorf("Failed to store memory: %v", err)
			continue
		}
		logx.Infof("Stored %s memory: %s", strings.ToLower(string(memoryType)), candidate.Content)
	}
	metrics.StorageMillis = millisSince(stepStart)
}

// summarizeConversation condenses everything between the system prompt and
// the most recent messages into a single summary message. On model failure
// the history is left untouched.
func (s *ChatService) summarizeConversation(ctx context.Context, history []llm.Message, userID string) ([]llm.Message, bool) {
	logx.Infof("Summarizing conversation for user %s", userID)

	systemPrompt := history[0]
	recent := history[len(history)-s.cfg.KeepRecent:]

	var transcript strings.Builder
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleUser:
			fmt.Fprintf(&transcript, "User: %s\n", msg.Content)
		case llm.RoleAssistant:
			fmt.Fprintf(&transcript, "Assistant: %s\n", msg.Content)
		}
	}

	response, err := s.llmClient.Chat(ctx, []llm.Message{
		llm.NewSystemMessage(summaryPrompt),
		llm.NewSystemMessage(transcript.String()),
	}, llm.WithModel(s.model))
	if err != nil {
		logx.Errorf("Failed to summarize conversation: %v", err)
		return nil, false
	}

	summarized := make([]llm.Message, 0, s.cfg.KeepRecent+2)
	summarized = append(summarized, systemPrompt)
	summarized = append(summarized, llm.NewSystemMessage("Conversation summary: "+response.Message.Content))
	summarized = append(summarized, recent...)

	logx.Info("Conversation summarized successfully")
	return summarized, true
}

func millisSince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
