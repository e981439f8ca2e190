package chatinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wayfarer-ai/wayfarer/pkg/ai/llm"
	"github.com/wayfarer-ai/wayfarer/pkg/chat"
	"github.com/wayfarer-ai/wayfarer/pkg/logx"
)

const conversationKeyPrefix = "conversation:"

// RedisConversationStore keeps each user's conversation as a Redis list of
// encoded message records with a sliding TTL.
type RedisConversationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisConversationStore creates a conversation store. ttl is the
// inactivity window after which a persisted conversation expires.
func NewRedisConversationStore(client *redis.Client, ttl time.Duration) chat.ConversationStore {
	return &RedisConversationStore{
		client: client,
		ttl:    ttl,
	}
}

// Save replaces the whole list in one pipeline: DEL, RPUSH each message,
// EXPIRE. The delete-then-rewrite keeps a shorter history from inheriting
// stale tail entries.
func (s *RedisConversationStore) Save(ctx context.Context, userID string, messages []llm.Message) error {
	key := conversationKeyPrefix + userID

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	for _, msg := range messages {
		pipe.RPush(ctx, key, encodeMessage(msg))
	}
	if len(messages) > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save conversation for user %s: %w", userID, err)
	}

	logx.Debugf("Saved conversation history for user %s (%d messages, ttl %s)", userID, len(messages), s.ttl)
	return nil
}

// Load returns the stored history, skipping any record that fails to decode.
func (s *RedisConversationStore) Load(ctx context.Context, userID string) ([]llm.Message, error) {
	key := conversationKeyPrefix + userID

	records, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation for user %s: %w", userID, err)
	}

	messages := make([]llm.Message, 0, len(records))
	for _, record := range records {
		msg, ok := decodeMessage(record)
		if !ok {
			logx.Warnf("Dropping undecodable conversation record for user %s", userID)
			continue
		}
		messages = append(messages, msg)
	}

	logx.Debugf("Loaded conversation history for user %s: %d messages", userID, len(messages))
	return messages, nil
}

// Clear deletes the stored history immediately.
func (s *RedisConversationStore) Clear(ctx context.Context, userID string) error {
	key := conversationKeyPrefix + userID

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to clear conversation for user %s: %w", userID, err)
	}

	logx.Infof("Cleared conversation history for user %s", userID)
	return nil
}
