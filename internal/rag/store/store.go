// Package store defines the vector index abstraction used by the retrieval
// core and its Milvus-backed implementation.
package store

import (
	"context"

	"github.com/barwojcik/local-chatbots/internal/model"
)

// VectorStore is the narrow interface the retrieval core uses to reach the
// similarity index. Implementations own embedding of both chunks and queries.
type VectorStore interface {
	// Add embeds and stores chunks under the given document ID.
	Add(ctx context.Context, docID string, chunks []model.Chunk) error

	// Search returns the top-k chunks most similar to the query.
	Search(ctx context.Context, query string, k int) ([]model.RetrievalResult, error)

	// HasDocuments reports whether the index holds any chunks.
	HasDocuments(ctx context.Context) (bool, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int64, error)

	// Reset deletes every stored chunk.
	Reset(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
