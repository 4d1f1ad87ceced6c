package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"

	"github.com/barwojcik/local-chatbots/internal/model"
	"github.com/barwojcik/local-chatbots/internal/rag/store"
)

// asyncIndexTimeout bounds one background ingestion job.
const asyncIndexTimeout = 10 * time.Minute

// IngestResult reports what one ingestion run produced.
type IngestResult struct {
	DocumentIDs []string `json:"document_ids"`
	ChunkCount  int      `json:"chunk_count"`
}

// Indexer runs the document pipeline and stores the resulting chunks in the
// vector index. Background ingestion goes through a worker pool so uploads
// return immediately.
type Indexer struct {
	pipeline *Pipeline
	store    store.VectorStore
	pool     *ants.Pool
}

// NewIndexer creates an indexer with a background pool of the given size.
func NewIndexer(pipeline *Pipeline, vectorStore store.VectorStore, workers int) (*Indexer, error) {
	if workers <= 0 {
		workers = 2
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexing pool: %w", err)
	}
	return &Indexer{
		pipeline: pipeline,
		store:    vectorStore,
		pool:     pool,
	}, nil
}

// Index processes documents through the pipeline and stores their chunks.
// Each document gets a generated ID; documents producing no chunks are
// skipped but still occupy their doc_index position.
func (ix *Indexer) Index(ctx context.Context, docs []model.Document) (*IngestResult, error) {
	result := &IngestResult{DocumentIDs: make([]string, 0, len(docs))}

	for i, doc := range docs {
		docID := uuid.NewString()
		chunks := ix.pipeline.ProcessDocument(doc, i)
		if len(chunks) == 0 {
			logger.Warnw("document produced no chunks", "doc_index", i, "doc_id", docID)
			result.DocumentIDs = append(result.DocumentIDs, docID)
			continue
		}
		if err := ix.store.Add(ctx, docID, chunks); err != nil {
			return nil, fmt.Errorf("failed to store chunks for document %d: %w", i, err)
		}
		result.DocumentIDs = append(result.DocumentIDs, docID)
		result.ChunkCount += len(chunks)
	}

	logger.Infof("Indexed %d documents, %d chunks", len(docs), result.ChunkCount)
	return result, nil
}

// IndexAsync schedules ingestion on the worker pool and returns immediately.
// Failures are logged, not reported to the caller.
func (ix *Indexer) IndexAsync(docs []model.Document) error {
	return ix.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncIndexTimeout)
		defer cancel()

		if _, err := ix.Index(ctx, docs); err != nil {
			logger.Errorw("background indexing failed", "error", err.Error())
		}
	})
}

// Close releases the worker pool.
func (ix *Indexer) Close() {
	ix.pool.Release()
}
