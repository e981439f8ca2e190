package chat

import (
	"net/http"

	"github.com/wayfarer-ai/wayfarer/pkg/errx"
)

// SendMessageRequest is the payload for a chat turn.
type SendMessageRequest struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// TurnMetrics reports wall-clock timing for each step of a chat turn, in
// milliseconds.
type TurnMetrics struct {
	RetrievalMillis     int64 `json:"retrieval_ms"`
	CompletionMillis    int64 `json:"completion_ms"`
	PersistenceMillis   int64 `json:"persistence_ms"`
	ExtractionMillis    int64 `json:"extraction_ms"`
	StorageMillis       int64 `json:"storage_ms"`
	SummarizationMillis int64 `json:"summarization_ms"`
	TotalMillis         int64 `json:"total_ms"`
}

// ChatTurn is the outcome of a single chat turn.
type ChatTurn struct {
	Response string      `json:"response"`
	Metrics  TurnMetrics `json:"metrics"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("CHAT")

var (
	CodeModelFailed       = ErrRegistry.Register("MODEL_FAILED", errx.TypeExternal, http.StatusBadGateway, "Chat completion failed")
	CodeRetrievalFailed   = ErrRegistry.Register("RETRIEVAL_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Memory retrieval failed")
	CodeMissingParameters = ErrRegistry.Register("MISSING_PARAMETERS", errx.TypeValidation, http.StatusBadRequest, "Both message and userId are required")
)

func ErrModelFailed() *errx.Error {
	return ErrRegistry.New(CodeModelFailed)
}

func ErrRetrievalFailed() *errx.Error {
	return ErrRegistry.New(CodeRetrievalFailed)
}

func ErrMissingParameters() *errx.Error {
	return ErrRegistry.New(CodeMissingParameters)
}
