package chat

import (
	"context"

	"github.com/wayfarer-ai/wayfarer/pkg/ai/llm"
)

// ConversationStore persists per-user conversation histories. Save replaces
// the full sequence (delete-then-rewrite, never patch) and resets the expiry,
// so a shorter conversation can never leave stale tail entries behind.
type ConversationStore interface {
	// Save atomically replaces the stored sequence for the user and resets
	// its TTL.
	Save(ctx context.Context, userID string, messages []llm.Message) error

	// Load returns the stored sequence, or an empty slice when absent or
	// expired.
	Load(ctx context.Context, userID string) ([]llm.Message, error)

	// Clear deletes the stored sequence immediately, bypassing the TTL.
	Clear(ctx context.Context, userID string) error
}
