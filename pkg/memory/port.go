package memory

import "context"

// Match is a single similarity-search hit. Score is a similarity in [0, 1]
// where higher means more similar; callers apply their own minimum-score
// thresholds, the store never filters by score itself.
type Match struct {
	ID      string
	Content string
	Fields  map[string]string
	Score   float64
}

// VectorStore wraps a vector-similarity backend. Implementations embed the
// content themselves and own the stored vectors.
type VectorStore interface {
	// Store inserts a single document and returns its record id. Single-document
	// writes are atomic at this boundary: a failed write applies nothing.
	Store(ctx context.Context, content string, fields map[string]string) (string, error)

	// Search returns up to topK matches ordered by descending similarity.
	// A missing index or zero hits yields an empty slice, not an error.
	Search(ctx context.Context, query string, filter Filter, topK int) ([]Match, error)
}
