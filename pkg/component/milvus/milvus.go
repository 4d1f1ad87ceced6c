// Package milvus wraps the Milvus SDK client for chunk storage: a single
// collection schema of embedding vector, chunk content, metadata JSON and
// owning document ID.
package milvus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	milvusopts "github.com/barwojcik/local-chatbots/pkg/options/milvus"
)

// Field names of the chunk collection schema.
const (
	fieldID        = "id"
	fieldEmbedding = "embedding"
	fieldContent   = "content"
	fieldMetadata  = "metadata"
	fieldDocID     = "doc_id"

	contentMaxLen  = 65535
	metadataMaxLen = 65535
	docIDMaxLen    = 64
)

// Client wraps the Milvus SDK client.
type Client struct {
	client *milvusclient.Client
	opts   *milvusopts.Options
}

// New connects to Milvus using the given options.
func New(opts *milvusopts.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("milvus options is nil")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  opts.Address,
		Username: opts.Username,
		Password: opts.Password,
		DBName:   opts.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}

	return &Client{client: c, opts: opts}, nil
}

// Close closes the Milvus connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// EnsureCollection creates the chunk collection with its vector index if it
// does not exist yet, and loads it into memory.
func (c *Client) EnsureCollection(ctx context.Context, name string, dimension int) error {
	exists, err := c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(name))
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		schema := entity.NewSchema().
			WithName(name).
			WithDescription("document chunks with embeddings and metadata").
			WithAutoID(true).
			WithField(entity.NewField().
				WithName(fieldID).
				WithDataType(entity.FieldTypeInt64).
				WithIsPrimaryKey(true).
				WithIsAutoID(true)).
			WithField(entity.NewField().
				WithName(fieldEmbedding).
				WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(dimension))).
			WithField(entity.NewField().
				WithName(fieldContent).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(contentMaxLen)).
			WithField(entity.NewField().
				WithName(fieldMetadata).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(metadataMaxLen)).
			WithField(entity.NewField().
				WithName(fieldDocID).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(docIDMaxLen))

		if err := c.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(name, schema)); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		idx := index.NewIvfFlatIndex(entity.L2, 128)
		createIdxTask, err := c.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(name, fieldEmbedding, idx))
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
		if err := createIdxTask.Await(ctx); err != nil {
			return fmt.Errorf("failed to wait for index creation: %w", err)
		}
	}

	loadTask, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(name))
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for collection loading: %w", err)
	}
	return nil
}

// Record is one chunk row to insert.
type Record struct {
	Embedding    []float32
	Content      string
	MetadataJSON string
	DocID        string
}

// Insert writes chunk records into the collection and flushes so they are
// immediately searchable.
func (c *Client) Insert(ctx context.Context, collection string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	embeddings := make([][]float32, len(records))
	contents := make([]string, len(records))
	metadatas := make([]string, len(records))
	docIDs := make([]string, len(records))
	for i, r := range records {
		embeddings[i] = r.Embedding
		contents[i] = r.Content
		metadatas[i] = r.MetadataJSON
		docIDs[i] = r.DocID
	}

	_, err := c.client.Insert(ctx, milvusclient.NewColumnBasedInsertOption(collection,
		column.NewColumnFloatVector(fieldEmbedding, len(embeddings[0]), embeddings),
		column.NewColumnVarChar(fieldContent, contents),
		column.NewColumnVarChar(fieldMetadata, metadatas),
		column.NewColumnVarChar(fieldDocID, docIDs),
	))
	if err != nil {
		return fmt.Errorf("failed to insert data: %w", err)
	}

	flushTask, err := c.client.Flush(ctx, milvusclient.NewFlushOption(collection))
	if err != nil {
		return fmt.Errorf("failed to flush collection: %w", err)
	}
	if err := flushTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for flush: %w", err)
	}
	return nil
}

// SearchHit is one similarity search result.
type SearchHit struct {
	ID           int64
	Score        float32
	Content      string
	MetadataJSON string
	DocID        string
}

// Search runs a vector similarity search and returns the top-k hits with
// their stored content and metadata.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, topK int) ([]SearchHit, error) {
	results, err := c.client.Search(ctx, milvusclient.NewSearchOption(
		collection,
		topK,
		[]entity.Vector{entity.FloatVector(vector)},
	).WithANNSField(fieldEmbedding).
		WithSearchParam("nprobe", "16").
		WithOutputFields(fieldContent, fieldMetadata, fieldDocID))
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	if len(results) == 0 {
		return []SearchHit{}, nil
	}

	rs := results[0]
	hits := make([]SearchHit, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		hit := SearchHit{Score: rs.Scores[i]}
		if idCol, ok := rs.IDs.(*column.ColumnInt64); ok {
			hit.ID = idCol.Data()[i]
		}
		for _, field := range rs.Fields {
			col, ok := field.(*column.ColumnVarChar)
			if !ok {
				continue
			}
			switch col.Name() {
			case fieldContent:
				hit.Content = col.Data()[i]
			case fieldMetadata:
				hit.MetadataJSON = col.Data()[i]
			case fieldDocID:
				hit.DocID = col.Data()[i]
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// DropCollection drops the collection and everything in it.
func (c *Client) DropCollection(ctx context.Context, collection string) error {
	if err := c.client.DropCollection(ctx, milvusclient.NewDropCollectionOption(collection)); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}

// Count returns the number of entities in the collection.
func (c *Client) Count(ctx context.Context, collection string) (int64, error) {
	stats, err := c.client.GetCollectionStats(ctx, milvusclient.NewGetCollectionStatsOption(collection))
	if err != nil {
		return 0, fmt.Errorf("failed to get collection stats: %w", err)
	}
	if val, ok := stats["row_count"]; ok {
		return strconv.ParseInt(val, 10, 64)
	}
	return 0, nil
}
