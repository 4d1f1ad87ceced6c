// Package ragopts provides configuration options for the RAG pipeline:
// chunking, retrieval, re-ranking and synthesis.
package ragopts

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options contains RAG pipeline configuration.
type Options struct {
	// ChunkingStrategy selects the chunking algorithm: fixed, semantic or
	// hierarchical.
	ChunkingStrategy string `json:"chunking-strategy" mapstructure:"chunking-strategy"`

	// ChunkSize is the target chunk size in characters.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the overlap between chunks (fixed strategy only).
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// ExtractMetadata enables metadata enrichment of chunks.
	ExtractMetadata bool `json:"extract-metadata" mapstructure:"extract-metadata"`

	// PreserveStructure is accepted for configuration compatibility with the
	// original service and is not consumed; the hierarchical strategy always
	// keeps section structure.
	PreserveStructure bool `json:"preserve-structure" mapstructure:"preserve-structure"`

	// Strategies is the ordered list of retrieval strategies.
	Strategies []string `json:"strategies" mapstructure:"strategies"`

	// EnableReranking turns on LLM-based re-ranking.
	EnableReranking bool `json:"enable-reranking" mapstructure:"enable-reranking"`

	// MaxResults caps the number of retrieval results.
	MaxResults int `json:"max-results" mapstructure:"max-results"`

	// RerankTimeout bounds each re-ranking call.
	RerankTimeout time.Duration `json:"rerank-timeout" mapstructure:"rerank-timeout"`

	// ConfidenceThreshold is the informational router confidence threshold.
	ConfidenceThreshold float64 `json:"confidence-threshold" mapstructure:"confidence-threshold"`

	// GenerateVariations asks the analyzer for query variations.
	GenerateVariations bool `json:"generate-variations" mapstructure:"generate-variations"`

	// MaxVariations caps requested query variations.
	MaxVariations int `json:"max-variations" mapstructure:"max-variations"`

	// IncludeCitations adds numbered source citations to answers.
	IncludeCitations bool `json:"include-citations" mapstructure:"include-citations"`

	// MaxContextChunks caps chunks passed to the synthesizer.
	MaxContextChunks int `json:"max-context-chunks" mapstructure:"max-context-chunks"`

	// Collection is the vector store collection name.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the embedding vector dimension.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// HistorySize bounds the conversation history in messages.
	HistorySize int `json:"history-size" mapstructure:"history-size"`

	// IndexWorkers is the background ingestion pool size.
	IndexWorkers int `json:"index-workers" mapstructure:"index-workers"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkingStrategy:    "semantic",
		ChunkSize:           1024,
		ChunkOverlap:        128,
		ExtractMetadata:     true,
		PreserveStructure:   true,
		Strategies:          []string{"semantic"},
		EnableReranking:     true,
		MaxResults:          5,
		RerankTimeout:       30 * time.Second,
		ConfidenceThreshold: 0.7,
		GenerateVariations:  true,
		MaxVariations:       3,
		IncludeCitations:    true,
		MaxContextChunks:    5,
		Collection:          "rag_chunks",
		EmbeddingDim:        768, // nomic-embed-text dimension
		HistorySize:         20,
		IndexWorkers:        2,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefix string) {
	fs.StringVar(&o.ChunkingStrategy, prefix+"chunking-strategy", o.ChunkingStrategy, "Chunking strategy (fixed|semantic|hierarchical)")
	fs.IntVar(&o.ChunkSize, prefix+"chunk-size", o.ChunkSize, "Target chunk size in characters")
	fs.IntVar(&o.ChunkOverlap, prefix+"chunk-overlap", o.ChunkOverlap, "Overlap between chunks (fixed strategy)")
	fs.BoolVar(&o.ExtractMetadata, prefix+"extract-metadata", o.ExtractMetadata, "Enable chunk metadata enrichment")
	fs.BoolVar(&o.PreserveStructure, prefix+"preserve-structure", o.PreserveStructure, "Preserve document structure in hierarchical chunking")
	fs.StringSliceVar(&o.Strategies, prefix+"strategies", o.Strategies, "Retrieval strategies in order (semantic|hybrid)")
	fs.BoolVar(&o.EnableReranking, prefix+"enable-reranking", o.EnableReranking, "Enable LLM-based re-ranking")
	fs.IntVar(&o.MaxResults, prefix+"max-results", o.MaxResults, "Maximum retrieval results")
	fs.DurationVar(&o.RerankTimeout, prefix+"rerank-timeout", o.RerankTimeout, "Timeout per re-ranking call")
	fs.Float64Var(&o.ConfidenceThreshold, prefix+"confidence-threshold", o.ConfidenceThreshold, "Router confidence threshold (informational)")
	fs.BoolVar(&o.GenerateVariations, prefix+"generate-variations", o.GenerateVariations, "Generate query variations")
	fs.IntVar(&o.MaxVariations, prefix+"max-variations", o.MaxVariations, "Maximum query variations")
	fs.BoolVar(&o.IncludeCitations, prefix+"include-citations", o.IncludeCitations, "Include source citations in answers")
	fs.IntVar(&o.MaxContextChunks, prefix+"max-context-chunks", o.MaxContextChunks, "Maximum context chunks for synthesis")
	fs.StringVar(&o.Collection, prefix+"collection", o.Collection, "Vector store collection name")
	fs.IntVar(&o.EmbeddingDim, prefix+"embedding-dim", o.EmbeddingDim, "Embedding vector dimension")
	fs.IntVar(&o.HistorySize, prefix+"history-size", o.HistorySize, "Conversation history size in messages")
	fs.IntVar(&o.IndexWorkers, prefix+"index-workers", o.IndexWorkers, "Background ingestion worker count")
}

// Validate validates the options.
func (o *Options) Validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("chunk-size must be positive")
	}
	if o.ChunkOverlap < 0 {
		return fmt.Errorf("chunk-overlap must not be negative")
	}
	if o.ChunkOverlap >= o.ChunkSize {
		return fmt.Errorf("chunk-overlap must be smaller than chunk-size")
	}
	if o.MaxResults <= 0 {
		return fmt.Errorf("max-results must be positive")
	}
	if o.EmbeddingDim <= 0 {
		return fmt.Errorf("embedding-dim must be positive")
	}
	if o.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if o.ConfidenceThreshold < 0 || o.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence-threshold must be in [0, 1]")
	}
	if o.MaxContextChunks <= 0 {
		return fmt.Errorf("max-context-chunks must be positive")
	}
	return nil
}
