package memorysrv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-ai/wayfarer/pkg/errx"
	"github.com/wayfarer-ai/wayfarer/pkg/memory"
)

// fakeVectorStore is an in-process stand-in for a vector backend. Similarity
// is scripted per stored content so tests control scores exactly.
type fakeVectorStore struct {
	docs      []fakeDoc
	scores    map[string]float64
	searchErr error
	storeErr  error
	nextID    int
}

type fakeDoc struct {
	id      string
	content string
	fields  map[string]string
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{scores: make(map[string]float64)}
}

func (f *fakeVectorStore) Store(ctx context.Context, content string, fields map[string]string) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	f.nextID++
	id := string(rune('a' + f.nextID - 1))
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	f.docs = append(f.docs, fakeDoc{id: id, content: content, fields: copied})
	return id, nil
}

func (f *fakeVectorStore) Search(ctx context.Context, query string, filter memory.Filter, topK int) ([]memory.Match, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var matches []memory.Match
	for _, doc := range f.docs {
		if filter != nil && !filter.Matches(doc.fields) {
			continue
		}
		score, ok := f.scores[doc.content]
		if !ok {
			score = 1.0
		}
		matches = append(matches, memory.Match{
			ID:      doc.id,
			Content: doc.content,
			Fields:  doc.fields,
			Score:   score,
		})
		if len(matches) == topK {
			break
		}
	}
	return matches, nil
}

func TestStoreMemoryPersistsNewFact(t *testing.T) {
	store := newFakeVectorStore()
	svc := NewMemoryService(store, 0.9)

	stored, err := svc.StoreMemory(context.Background(), "User prefers window seats", memory.TypeEpisodic, "alice", "{}")
	require.NoError(t, err)

	assert.Equal(t, "User prefers window seats", stored.Memory.Content)
	assert.Equal(t, memory.TypeEpisodic, stored.Memory.MemoryType)
	assert.Equal(t, "alice", stored.Memory.UserID)
	assert.NotEmpty(t, stored.Memory.ID)
	require.Len(t, store.docs, 1)
	assert.Equal(t, "alice", store.docs[0].fields[memory.FieldUserID])
	assert.Equal(t, "EPISODIC", store.docs[0].fields[memory.FieldMemoryType])

	_, err = time.Parse(time.RFC3339, store.docs[0].fields[memory.FieldCreatedAt])
	assert.NoError(t, err)
}

func TestStoreMemorySkipsNearDuplicate(t *testing.T) {
	store := newFakeVectorStore()
	svc := NewMemoryService(store, 0.9)

	_, err := svc.StoreMemory(context.Background(), "User prefers window seats", memory.TypeEpisodic, "alice", "{}")
	require.NoError(t, err)

	store.scores["User prefers window seats"] = 0.95

	stored, err := svc.StoreMemory(context.Background(), "User prefers window seats on flights", memory.TypeEpisodic, "alice", "{}")
	require.NoError(t, err)

	// The echo carries the input, but nothing new was persisted.
	assert.Equal(t, "User prefers window seats on flights", stored.Memory.Content)
	assert.Len(t, store.docs, 1)
}

func TestStoreMemoryDedupThresholdIsStrict(t *testing.T) {
	store := newFakeVectorStore()
	svc := NewMemoryService(store, 0.9)

	_, err := svc.StoreMemory(context.Background(), "User prefers window seats", memory.TypeEpisodic, "alice", "{}")
	require.NoError(t, err)

	// Exactly at the threshold is not a duplicate.
	store.scores["User prefers window seats"] = 0.9

	_, err = svc.StoreMemory(context.Background(), "User likes window seats", memory.TypeEpisodic, "alice", "{}")
	require.NoError(t, err)
	assert.Len(t, store.docs, 2)
}

func TestStoreMemoryDedupScopedByOwnerAndType(t *testing.T) {
	store := newFakeVectorStore()
	svc := NewMemoryService(store, 0.9)

	_, err := svc.StoreMemory(context.Background(), "Prefers aisle seats", memory.TypeEpisodic, "alice", "{}")
	require.NoError(t, err)

	store.scores["Prefers aisle seats"] = 0.99

	// Same content for a different owner is not a duplicate of alice's.
	_, err = svc.StoreMemory(context.Background(), "Prefers aisle seats", memory.TypeEpisodic, "bob", "{}")
	require.NoError(t, err)

	// Same content with a different type is not a duplicate either.
	_, err = svc.StoreMemory(context.Background(), "Prefers aisle seats", memory.TypeSemantic, "alice", "{}")
	require.NoError(t, err)

	assert.Len(t, store.docs, 3)
}

func TestStoreMemoryDefaultsOwnerToSystem(t *testing.T) {
	store := newFakeVectorStore()
	svc := NewMemoryService(store, 0.9)

	stored, err := svc.StoreMemory(context.Background(), "Singapore requires a passport", memory.TypeSemantic, "", "{}")
	require.NoError(t, err)

	assert.Equal(t, memory.SystemUserID, stored.Memory.UserID)
	require.Len(t, store.docs, 1)
	assert.Equal(t, memory.SystemUserID, store.docs[0].fields[memory.FieldUserID])
}

func TestStoreMemoryReplacesMalformedMetadata(t *testing.T) {
	store := newFakeVectorStore()
	svc := NewMemoryService(store, 0.9)

	stored, err := svc.StoreMemory(context.Background(), "Tokyo has excellent transit", memory.TypeSemantic, "alice", "not json at all")
	require.NoError(t, err)

	assert.Equal(t, "{}", stored.Memory.Metadata)
	require.Len(t, store.docs, 1)
	assert.Equal(t, "{}", store.docs[0].fields[memory.FieldMetadata])
}

func TestStoreMemoryWrapsBackendError(t *testing.T) {
	store := newFakeVectorStore()
	store.storeErr = errors.New("connection refused")
	svc := NewMemoryService(store, 0.9)

	_, err := svc.StoreMemory(context.Background(), "anything", memory.TypeEpisodic, "alice", "{}")
	require.Error(t, err)

	var appErr *errx.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "MEMORY_STORAGE_FAILED", appErr.Code)
}

func TestRetrieveMemoriesScopesToUserAndSystem(t *testing.T) {
	store := newFakeVectorStore()
	svc := NewMemoryService(store, 0.9)

	ctx := context.Background()
	_, err := svc.StoreMemory(ctx, "Alice prefers Delta", memory.TypeEpisodic, "alice", "{}")
	require.NoError(t, err)
	_, err = svc.StoreMemory(ctx, "Bob prefers United", memory.TypeEpisodic, "bob", "{}")
	require.NoError(t, err)
	_, err = svc.StoreMemory(ctx, "Paris is known for the Eiffel Tower", memory.TypeSemantic, memory.SystemUserID, "{}")
	require.NoError(t, err)

	memories, err := svc.RetrieveMemories(ctx, "travel", "", "alice", 10, 0.3)
	require.NoError(t, err)

	contents := make([]string, 0, len(memories))
	for _, m := range memories {
		contents = append(contents, m.Memory.Content)
	}
	assert.ElementsMatch(t, []string{"Alice prefers Delta", "Paris is known for the Eiffel Tower"}, contents)
}

func TestRetrieveMemoriesFiltersByType(t *testing.T) {
	store := newFakeVectorStore()
	svc := NewMemoryService(store, 0.9)

	ctx := context.Background()
	_, err := svc.StoreMemory(ctx, "Alice prefers Delta", memory.TypeEpisodic, "alice", "{}")
	require.NoError(t, err)
	_, err = svc.StoreMemory(ctx, "Paris is known for the Eiffel Tower", memory.TypeSemantic, memory.SystemUserID, "{}")
	require.NoError(t, err)

	memories, err := svc.RetrieveMemories(ctx, "travel", memory.TypeSemantic, "alice", 10, 0.3)
	require.NoError(t, err)

	require.Len(t, memories, 1)
	assert.Equal(t, "Paris is known for the Eiffel Tower", memories[0].Memory.Content)
}

func TestRetrieveMemoriesRelevanceFloorIsStrict(t *testing.T) {
	store := newFakeVectorStore()
	svc := NewMemoryService(store, 0.9)

	store.scores["Alice prefers Delta"] = 0.5
	store.scores["Alice visited Lisbon"] = 0.3
	store.scores["Alice dislikes layovers"] = 0.2

	ctx := context.Background()
	_, err := svc.StoreMemory(ctx, "Alice prefers Delta", memory.TypeEpisodic, "alice", "{}")
	require.NoError(t, err)
	_, err = svc.StoreMemory(ctx, "Alice visited Lisbon", memory.TypeEpisodic, "alice", "{}")
	require.NoError(t, err)
	_, err = svc.StoreMemory(ctx, "Alice dislikes layovers", memory.TypeEpisodic, "alice", "{}")
	require.NoError(t, err)

	memories, err := svc.RetrieveMemories(ctx, "flights", "", "alice", 10, 0.3)
	require.NoError(t, err)

	// A score exactly at the floor is excluded.
	require.Len(t, memories, 1)
	assert.Equal(t, "Alice prefers Delta", memories[0].Memory.Content)
}

func TestRetrieveMemoriesWrapsBackendError(t *testing.T) {
	store := newFakeVectorStore()
	store.searchErr = errors.New("index offline")
	svc := NewMemoryService(store, 0.9)

	_, err := svc.RetrieveMemories(context.Background(), "anything", "", "alice", 10, 0.3)
	require.Error(t, err)

	var appErr *errx.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "MEMORY_SEARCH_FAILED", appErr.Code)
}

func TestRetrieveMemoriesRecoversMissingFields(t *testing.T) {
	store := newFakeVectorStore()
	svc := NewMemoryService(store, 0.9)

	store.docs = append(store.docs, fakeDoc{
		id:      "legacy",
		content: "old record",
		fields: map[string]string{
			memory.FieldUserID: "alice",
		},
	})

	memories, err := svc.RetrieveMemories(context.Background(), "anything", "", "alice", 10, 0.3)
	require.NoError(t, err)

	require.Len(t, memories, 1)
	got := memories[0].Memory
	assert.Equal(t, memory.TypeSemantic, got.MemoryType)
	assert.Equal(t, "{}", got.Metadata)
	assert.False(t, got.CreatedAt.IsZero())
}
