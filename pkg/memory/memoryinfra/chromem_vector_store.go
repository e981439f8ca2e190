package memoryinfra

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/wayfarer-ai/wayfarer/pkg/ai/embedding"
	"github.com/wayfarer-ai/wayfarer/pkg/memory"
)

// ChromemVectorStore is an embedded, in-process vector store used in local
// development where no Redis Stack is available. chromem-go only supports
// AND-equality metadata filters, so the Filter is evaluated here after the
// similarity query.
type ChromemVectorStore struct {
	collection *chromem.Collection
	embedder   embedding.Embedder
	model      string
	dims       int

	mu sync.Mutex
}

// NewChromemVectorStore creates an empty in-memory store.
func NewChromemVectorStore(embedder embedding.Embedder, model string, dims int) (*ChromemVectorStore, error) {
	db := chromem.NewDB()
	collection, err := db.CreateCollection("memories", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &ChromemVectorStore{
		collection: collection,
		embedder:   embedder,
		model:      model,
		dims:       dims,
	}, nil
}

// Store embeds content and adds a single document.
func (s *ChromemVectorStore) Store(ctx context.Context, content string, fields map[string]string) (string, error) {
	emb, err := s.embedder.EmbedQuery(ctx, content, embedding.WithModel(s.model), embedding.WithDimensions(s.dims))
	if err != nil {
		return "", fmt.Errorf("failed to embed content: %w", err)
	}

	id := uuid.NewString()

	metadata := make(map[string]string, len(fields))
	for k, v := range fields {
		metadata[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.collection.AddDocument(ctx, chromem.Document{
		ID:        id,
		Content:   content,
		Embedding: emb.Vector,
		Metadata:  metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to add document: %w", err)
	}

	return id, nil
}

// Search queries by similarity and applies the filter in process. The result
// window is widened before filtering so that filtered-out neighbors do not
// starve the requested topK.
func (s *ChromemVectorStore) Search(ctx context.Context, query string, filter memory.Filter, topK int) ([]memory.Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	emb, err := s.embedder.EmbedQuery(ctx, query, embedding.WithModel(s.model), embedding.WithDimensions(s.dims))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}

	n := topK * 4
	if n > count {
		n = count
	}

	results, err := s.collection.QueryEmbedding(ctx, emb.Vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	matches := make([]memory.Match, 0, topK)
	for _, result := range results {
		if filter != nil && !filter.Matches(result.Metadata) {
			continue
		}
		matches = append(matches, memory.Match{
			ID:      result.ID,
			Content: result.Content,
			Fields:  result.Metadata,
			Score:   float64(result.Similarity),
		})
		if len(matches) == topK {
			break
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches, nil
}
