package memory

import (
	"net/http"
	"strings"
	"time"

	"github.com/wayfarer-ai/wayfarer/pkg/errx"
)

// SystemUserID is the reserved owner for shared (semantic) memories. A user's
// retrieval always sees system-owned memories in addition to their own.
const SystemUserID = "system"

// MemoryType categorizes long-term memories for storage and retrieval.
//
// EPISODIC: personal experiences and user-specific preferences
// (e.g. "User prefers Delta airlines", "User visited Paris last year")
//
// SEMANTIC: general domain knowledge and facts
// (e.g. "Singapore requires passport", "Tokyo has excellent public transit")
type MemoryType string

const (
	TypeEpisodic MemoryType = "EPISODIC"
	TypeSemantic MemoryType = "SEMANTIC"
)

// ParseMemoryType maps a stored tag back to a MemoryType. Unknown tags fall
// back to SEMANTIC rather than discarding the record.
func ParseMemoryType(s string) MemoryType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(TypeEpisodic):
		return TypeEpisodic
	default:
		return TypeSemantic
	}
}

// Memory is a single fact in the agent's long-term memory. Memories are
// append-only: there is no update or delete, and a memory's identity for
// deduplication is its semantic similarity to existing memories of the same
// type and owner, not its ID.
type Memory struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	MemoryType MemoryType `json:"memoryType"`
	Metadata   string     `json:"metadata"`
	UserID     string     `json:"userId"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// StoredMemory is a Memory plus (optionally) its embedding vector. The backend
// owns the embedding, so it is nil on read paths.
type StoredMemory struct {
	Memory    Memory    `json:"memory"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Metadata field names used by the vector store documents.
const (
	FieldMemoryType = "memoryType"
	FieldMetadata   = "metadata"
	FieldUserID     = "userId"
	FieldCreatedAt  = "createdAt"
)

// ValidateMetadata accepts only JSON-object-shaped strings; anything else is
// replaced by an empty object rather than failing the caller.
func ValidateMetadata(metadata string) string {
	trimmed := strings.TrimSpace(metadata)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return "{}"
	}
	return metadata
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("MEMORY")

var (
	CodeStorageFailed = ErrRegistry.Register("STORAGE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Memory storage backend failed")
	CodeSearchFailed  = ErrRegistry.Register("SEARCH_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Memory search failed")
)

func ErrStorageFailed() *errx.Error {
	return ErrRegistry.New(CodeStorageFailed)
}

func ErrSearchFailed() *errx.Error {
	return ErrRegistry.New(CodeSearchFailed)
}
