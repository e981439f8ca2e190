package memorysrv

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wayfarer-ai/wayfarer/pkg/logx"
	"github.com/wayfarer-ai/wayfarer/pkg/memory"
)

// MemoryService is the policy layer over the vector store: it owns the memory
// record shape, the deduplication policy and the retrieval policy.
type MemoryService struct {
	store          memory.VectorStore
	dedupThreshold float64
}

// NewMemoryService creates a memory service. dedupThreshold is the minimum
// similarity at which a candidate is treated as a near-duplicate and skipped.
func NewMemoryService(store memory.VectorStore, dedupThreshold float64) *MemoryService {
	return &MemoryService{
		store:          store,
		dedupThreshold: dedupThreshold,
	}
}

// StoreMemory stores a single memory unless a near-duplicate already exists
// for the same type and owner. When a duplicate is detected the returned
// StoredMemory echoes the input without having been persisted: storage is
// at-most-once per semantic fact, not an error.
func (s *MemoryService) StoreMemory(
	ctx context.Context,
	content string,
	memoryType memory.MemoryType,
	userID string,
	metadata string,
) (memory.StoredMemory, error) {
	logx.Infof("Preparing to store memory: %s", content)

	validatedMetadata := memory.ValidateMetadata(metadata)
	if validatedMetadata != metadata {
		logx.Warnf("Invalid metadata format, using empty JSON object instead: %s", metadata)
	}

	effectiveUserID := userID
	if effectiveUserID == "" {
		effectiveUserID = memory.SystemUserID
	}

	mem := memory.Memory{
		ID:         uuid.NewString(),
		Content:    content,
		MemoryType: memoryType,
		Metadata:   validatedMetadata,
		UserID:     effectiveUserID,
		CreatedAt:  time.Now(),
	}

	exists, err := s.SimilarMemoryExists(ctx, content, memoryType, effectiveUserID)
	if err != nil {
		return memory.StoredMemory{}, err
	}
	if exists {
		logx.Info("Similar memory found, skipping storage")
		return memory.StoredMemory{Memory: mem}, nil
	}

	fields := map[string]string{
		memory.FieldMemoryType: string(memoryType),
		memory.FieldMetadata:   validatedMetadata,
		memory.FieldUserID:     effectiveUserID,
		memory.FieldCreatedAt:  mem.CreatedAt.Format(time.RFC3339),
	}

	id, err := s.store.Store(ctx, content, fields)
	if err != nil {
		logx.Errorf("Error storing memory: %v", err)
		return memory.StoredMemory{}, memory.ErrStorageFailed().WithCause(err)
	}
	mem.ID = id

	logx.Infof("Stored %s memory: %s", memoryType, content)
	return memory.StoredMemory{Memory: mem}, nil
}

// RetrieveMemories returns stored memories relevant to the query, scoped to
// the effective user plus system-shared facts, optionally restricted by type.
// Only results with similarity strictly greater than distanceThreshold are
// kept. The parameter keeps its historical name even though it acts as a
// similarity floor.
func (s *MemoryService) RetrieveMemories(
	ctx context.Context,
	query string,
	memoryType memory.MemoryType,
	userID string,
	limit int,
	distanceThreshold float64,
) ([]memory.StoredMemory, error) {
	logx.Debugf("Retrieving memories for query: %s", query)

	effectiveUserID := userID
	if effectiveUserID == "" {
		effectiveUserID = memory.SystemUserID
	}

	filters := []memory.Filter{
		memory.In(memory.FieldUserID, effectiveUserID, memory.SystemUserID),
	}
	if memoryType != "" {
		filters = append(filters, memory.Eq(memory.FieldMemoryType, string(memoryType)))
	}

	start := time.Now()
	matches, err := s.store.Search(ctx, query, memory.And(filters...), limit)
	if err != nil {
		return nil, memory.ErrSearchFailed().WithCause(err)
	}

	memories := make([]memory.StoredMemory, 0, len(matches))
	for _, match := range matches {
		if match.Score <= distanceThreshold {
			continue
		}
		memories = append(memories, memory.StoredMemory{Memory: matchToMemory(match)})
	}

	logx.Infof("Retrieved %d memories in %d ms", len(memories), time.Since(start).Milliseconds())
	return memories, nil
}

// SimilarMemoryExists reports whether a memory close enough to content already
// exists for the same type and owner.
func (s *MemoryService) SimilarMemoryExists(
	ctx context.Context,
	content string,
	memoryType memory.MemoryType,
	userID string,
) (bool, error) {
	effectiveUserID := userID
	if effectiveUserID == "" {
		effectiveUserID = memory.SystemUserID
	}

	filter := memory.And(
		memory.Eq(memory.FieldUserID, effectiveUserID),
		memory.Eq(memory.FieldMemoryType, string(memoryType)),
	)

	matches, err := s.store.Search(ctx, content, filter, 1)
	if err != nil {
		return false, memory.ErrSearchFailed().WithCause(err)
	}

	return len(matches) > 0 && matches[0].Score > s.dedupThreshold, nil
}

// matchToMemory maps a search hit back into a Memory record. Field-parsing
// failures fall back to safe defaults instead of discarding the record.
func matchToMemory(match memory.Match) memory.Memory {
	createdAt, err := time.Parse(time.RFC3339, match.Fields[memory.FieldCreatedAt])
	if err != nil {
		createdAt = time.Now()
	}

	metadata := match.Fields[memory.FieldMetadata]
	if metadata == "" {
		metadata = "{}"
	}

	userID := match.Fields[memory.FieldUserID]
	if userID == "" {
		userID = memory.SystemUserID
	}

	return memory.Memory{
		ID:         match.ID,
		Content:    match.Content,
		MemoryType: memory.ParseMemoryType(match.Fields[memory.FieldMemoryType]),
		Metadata:   metadata,
		UserID:     userID,
		CreatedAt:  createdAt,
	}
}
