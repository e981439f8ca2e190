package memoryinfra

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wayfarer-ai/wayfarer/pkg/ai/embedding"
	"github.com/wayfarer-ai/wayfarer/pkg/logx"
	"github.com/wayfarer-ai/wayfarer/pkg/memory"
)

const (
	indexName      = "memoryIdx"
	keyPrefix      = "memory:"
	contentField   = "content"
	embeddingField = "embedding"
	scoreAlias     = "vector_score"
)

// RedisVectorStore persists memories as Redis hashes indexed by RediSearch
// with an HNSW vector field. Similarity scores are derived from the cosine
// distance reported by Redis: score = 1 - distance/2, so higher is closer.
type RedisVectorStore struct {
	client   *redis.Client
	embedder embedding.Embedder
	dims     int
	model    string
}

// NewRedisVectorStore creates the store and ensures the search index exists.
func NewRedisVectorStore(ctx context.Context, client *redis.Client, embedder embedding.Embedder, model string, dims int) (*RedisVectorStore, error) {
	s := &RedisVectorStore{
		client:   client,
		embedder: embedder,
		dims:     dims,
		model:    model,
	}

	if err := s.ensureIndex(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *RedisVectorStore) ensureIndex(ctx context.Context) error {
	err := s.client.FTCreate(ctx, indexName,
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []any{keyPrefix},
		},
		&redis.FieldSchema{FieldName: contentField, FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: memory.FieldMemoryType, FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: memory.FieldMetadata, FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: memory.FieldUserID, FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: memory.FieldCreatedAt, FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{
			FieldName: embeddingField,
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				HNSWOptions: &redis.FTHNSWOptions{
					Type:           "FLOAT32",
					Dim:            s.dims,
					DistanceMetric: "COSINE",
				},
			},
		},
	).Err()

	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "index already exists") {
		return fmt.Errorf("failed to create search index: %w", err)
	}

	return nil
}

// Store embeds content and writes a single hash document.
func (s *RedisVectorStore) Store(ctx context.Context, content string, fields map[string]string) (string, error) {
	emb, err := s.embedder.EmbedQuery(ctx, content, embedding.WithModel(s.model), embedding.WithDimensions(s.dims))
	if err != nil {
		return "", fmt.Errorf("failed to embed content: %w", err)
	}

	id := uuid.NewString()
	key := keyPrefix + id

	doc := map[string]any{
		contentField:   content,
		embeddingField: vectorToBytes(emb.Vector),
	}
	for k, v := range fields {
		doc[k] = v
	}

	if err := s.client.HSet(ctx, key, doc).Err(); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}

	return id, nil
}

// Search runs a KNN query with the compiled filter expression.
func (s *RedisVectorStore) Search(ctx context.Context, query string, filter memory.Filter, topK int) ([]memory.Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	emb, err := s.embedder.EmbedQuery(ctx, query, embedding.WithModel(s.model), embedding.WithDimensions(s.dims))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	expr := compileFilter(filter)
	knnQuery := fmt.Sprintf("(%s)=>[KNN %d @%s $vec AS %s]", expr, topK, embeddingField, scoreAlias)

	res, err := s.client.FTSearchWithArgs(ctx, indexName, knnQuery, &redis.FTSearchOptions{
		Return: []redis.FTSearchReturn{
			{FieldName: contentField},
			{FieldName: memory.FieldMemoryType},
			{FieldName: memory.FieldMetadata},
			{FieldName: memory.FieldUserID},
			{FieldName: memory.FieldCreatedAt},
			{FieldName: scoreAlias},
		},
		SortBy:         []redis.FTSearchSortBy{{FieldName: scoreAlias, Asc: true}},
		LimitOffset:    0,
		Limit:          topK,
		Params:         map[string]any{"vec": vectorToBytes(emb.Vector)},
		DialectVersion: 2,
	}).Result()
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "no such index") {
			logx.Debugf("Search index %s does not exist yet", indexName)
			return nil, nil
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}

	matches := make([]memory.Match, 0, len(res.Docs))
	for _, doc := range res.Docs {
		distance, err := strconv.ParseFloat(doc.Fields[scoreAlias], 64)
		if err != nil {
			continue
		}

		fields := make(map[string]string, len(doc.Fields))
		for k, v := range doc.Fields {
			if k != contentField && k != scoreAlias {
				fields[k] = v
			}
		}

		matches = append(matches, memory.Match{
			ID:      strings.TrimPrefix(doc.ID, keyPrefix),
			Content: doc.Fields[contentField],
			Fields:  fields,
			Score:   1 - distance/2,
		})
	}

	return matches, nil
}

// compileFilter renders a Filter as a RediSearch query fragment. Eq and In
// target TAG fields; And is a space-joined conjunction, Or an explicit
// disjunction.
func compileFilter(f memory.Filter) string {
	if f == nil {
		return "*"
	}
	c := &filterCompiler{}
	memory.Visit(f, c)
	if c.expr == "" {
		return "*"
	}
	return c.expr
}

type filterCompiler struct {
	expr string
}

func (c *filterCompiler) Eq(field, value string) {
	c.expr = fmt.Sprintf("@%s:{%s}", field, escapeTagValue(value))
}

func (c *filterCompiler) In(field string, values []string) {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = escapeTagValue(v)
	}
	c.expr = fmt.Sprintf("@%s:{%s}", field, strings.Join(escaped, "|"))
}

func (c *filterCompiler) And(operands []memory.Filter) {
	parts := make([]string, 0, len(operands))
	for _, op := range operands {
		parts = append(parts, compileFilter(op))
	}
	c.expr = "(" + strings.Join(parts, " ") + ")"
}

func (c *filterCompiler) Or(operands []memory.Filter) {
	parts := make([]string, 0, len(operands))
	for _, op := range operands {
		parts = append(parts, compileFilter(op))
	}
	c.expr = "(" + strings.Join(parts, " | ") + ")"
}

// escapeTagValue escapes characters RediSearch treats as syntax inside TAG
// queries.
func escapeTagValue(value string) string {
	var b strings.Builder
	for _, r := range value {
		if strings.ContainsRune(",.<>{}[]\"':;!@#$%^&*()-+=~ /\\|", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func vectorToBytes(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
