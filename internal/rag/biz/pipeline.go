package biz

import (
	"github.com/kart-io/logger"

	"github.com/barwojcik/local-chatbots/internal/model"
	"github.com/barwojcik/local-chatbots/internal/pkg/rag/textutil"
)

// PipelineConfig configures document processing.
type PipelineConfig struct {
	ChunkerConfig

	// ExtractMetadata gates enrichment, including the index fields.
	ExtractMetadata bool
}

// Pipeline turns documents into cleaned, enriched chunk lists. It owns the
// doc_index/chunk_index numbering: documents are numbered in input order and
// chunks by position within their document after cleaning.
type Pipeline struct {
	chunker  *Chunker
	enricher *Enricher
}

// NewPipeline creates a document processing pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	logger.Infow("document pipeline initialized",
		"strategy", cfg.Strategy,
		"chunk_size", cfg.ChunkSize,
		"chunk_overlap", cfg.ChunkOverlap,
		"extract_metadata", cfg.ExtractMetadata,
	)
	return &Pipeline{
		chunker:  NewChunker(cfg.ChunkerConfig),
		enricher: NewEnricher(cfg.ExtractMetadata),
	}
}

// ProcessDocument chunks, cleans and enriches a single document. Chunks that
// clean down to empty text are dropped before indices are assigned.
func (p *Pipeline) ProcessDocument(doc model.Document, docIndex int) []model.Chunk {
	raw := p.chunker.Split(doc)

	chunks := make([]model.Chunk, 0, len(raw))
	for _, chunk := range raw {
		chunk.Text = textutil.CleanText(chunk.Text)
		if chunk.Text == "" {
			continue
		}
		chunks = append(chunks, chunk)
	}

	for i := range chunks {
		p.enricher.Enrich(&chunks[i], docIndex, i)
	}

	logger.Infof("Document %d processed: %d chunks created", docIndex, len(chunks))
	return chunks
}

// ProcessDocuments processes documents independently in input order and
// concatenates the results. There is no cross-document merging.
func (p *Pipeline) ProcessDocuments(docs []model.Document) []model.Chunk {
	var all []model.Chunk
	for i, doc := range docs {
		all = append(all, p.ProcessDocument(doc, i)...)
	}
	logger.Infof("Total chunks created from %d documents: %d", len(docs), len(all))
	return all
}
