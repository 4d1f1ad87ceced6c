package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/barwojcik/local-chatbots/internal/model"
	"github.com/barwojcik/local-chatbots/pkg/component/milvus"
	"github.com/barwojcik/local-chatbots/pkg/llm"
)

// MilvusStore is the Milvus-backed VectorStore. Chunk metadata is stored as
// a JSON varchar column so the open-ended metadata bag survives round trips.
type MilvusStore struct {
	client     *milvus.Client
	embedder   llm.EmbeddingProvider
	collection string
	dimension  int
}

var _ VectorStore = (*MilvusStore)(nil)

// NewMilvusStore creates the store and ensures its collection exists.
func NewMilvusStore(ctx context.Context, client *milvus.Client, embedder llm.EmbeddingProvider, collection string, dimension int) (*MilvusStore, error) {
	s := &MilvusStore{
		client:     client,
		embedder:   embedder,
		collection: collection,
		dimension:  dimension,
	}
	if err := client.EnsureCollection(ctx, collection, dimension); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}
	return s, nil
}

// Add embeds chunk texts in one batch and inserts them with their metadata.
func (s *MilvusStore) Add(ctx context.Context, docID string, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	records := make([]milvus.Record, len(chunks))
	for i, chunk := range chunks {
		metaJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal chunk metadata: %w", err)
		}
		records[i] = milvus.Record{
			Embedding:    embeddings[i],
			Content:      chunk.Text,
			MetadataJSON: string(metaJSON),
			DocID:        docID,
		}
	}

	if err := s.client.Insert(ctx, s.collection, records); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	logger.Infof("Stored %d chunks for document %s", len(chunks), docID)
	return nil
}

// Search embeds the query and returns the top-k similar chunks.
func (s *MilvusStore) Search(ctx context.Context, query string, k int) ([]model.RetrievalResult, error) {
	embedding, err := s.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := s.client.Search(ctx, s.collection, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search collection: %w", err)
	}

	results := make([]model.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		meta := model.Metadata{}
		if hit.MetadataJSON != "" {
			if err := json.Unmarshal([]byte(hit.MetadataJSON), &meta); err != nil {
				logger.Warnw("failed to decode chunk metadata", "id", hit.ID, "error", err.Error())
				meta = model.Metadata{}
			}
		}
		results = append(results, model.RetrievalResult{
			Content:  hit.Content,
			Metadata: meta,
			Score:    hit.Score,
		})
	}
	return results, nil
}

// HasDocuments reports whether any chunks are stored.
func (s *MilvusStore) HasDocuments(ctx context.Context) (bool, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of stored chunks.
func (s *MilvusStore) Count(ctx context.Context) (int64, error) {
	return s.client.Count(ctx, s.collection)
}

// Reset drops and recreates the collection.
func (s *MilvusStore) Reset(ctx context.Context) error {
	if err := s.client.DropCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	if err := s.client.EnsureCollection(ctx, s.collection, s.dimension); err != nil {
		return fmt.Errorf("failed to recreate collection: %w", err)
	}
	logger.Infow("vector store reset", "collection", s.collection)
	return nil
}

// Close closes the underlying Milvus connection.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
