package chatsrv

import (
	"sync"

	"github.com/wayfarer-ai/wayfarer/pkg/ai/llm"
)

// HistoryCache is the in-process, authoritative copy of active conversation
// histories, keyed by user. Each key carries its own lock so the
// load-or-create, mutate, persist sequence of a turn runs atomically per user
// while turns for different users proceed in parallel.
type HistoryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	mu       sync.Mutex
	messages []llm.Message
}

// NewHistoryCache creates an empty cache. Construct one per service instance;
// tests get a fresh cache per case instead of ambient global state.
func NewHistoryCache() *HistoryCache {
	return &HistoryCache{
		entries: make(map[string]*cacheEntry),
	}
}

// Lock acquires the per-user entry, creating it if absent. The caller must
// call Unlock on the returned handle when its read-modify-write is done.
func (c *HistoryCache) Lock(userID string) *CacheHandle {
	c.mu.Lock()
	entry, ok := c.entries[userID]
	if !ok {
		entry = &cacheEntry{}
		c.entries[userID] = entry
	}
	c.mu.Unlock()

	entry.mu.Lock()
	return &CacheHandle{entry: entry}
}

// Peek returns a copy of the cached history without loading anything.
func (c *HistoryCache) Peek(userID string) ([]llm.Message, bool) {
	c.mu.Lock()
	entry, ok := c.entries[userID]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if len(entry.messages) == 0 {
		return nil, false
	}
	return append([]llm.Message(nil), entry.messages...), true
}

// Put replaces the cached history for a user.
func (c *HistoryCache) Put(userID string, messages []llm.Message) {
	handle := c.Lock(userID)
	handle.Replace(messages)
	handle.Unlock()
}

// Delete drops the cached history for a user.
func (c *HistoryCache) Delete(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

// CacheHandle is a locked view of one user's history.
type CacheHandle struct {
	entry *cacheEntry
}

// Messages returns a copy of the entry's history; empty when never populated.
func (h *CacheHandle) Messages() []llm.Message {
	return append([]llm.Message(nil), h.entry.messages...)
}

// Replace swaps the entry's history.
func (h *CacheHandle) Replace(messages []llm.Message) {
	h.entry.messages = append([]llm.Message(nil), messages...)
}

// Unlock releases the entry.
func (h *CacheHandle) Unlock() {
	h.entry.mu.Unlock()
}
