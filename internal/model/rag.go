// Package model defines the shared data types for the RAG service.
package model

// Metadata is an open-ended key/value bag attached to documents and chunks.
type Metadata map[string]any

// Clone returns a shallow copy of the metadata map. Chunks must never share
// a metadata map with their source document or with sibling chunks.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Document is a unit of pre-extracted text handed to the ingestion pipeline,
// together with its base metadata (source path, page number, ...). It is not
// retained once chunks have been produced.
type Document struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Chunk is the atomic unit of retrieval: a bounded piece of document text
// plus derived metadata.
type Chunk struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Metadata keys written by the ingestion pipeline.
const (
	MetaDocIndex          = "doc_index"
	MetaChunkIndex        = "chunk_index"
	MetaHeading           = "heading"
	MetaHeadingLevel      = "heading_level"
	MetaSection           = "section"
	MetaContainsVisual    = "contains_visual"
	MetaStructuredContent = "structured_content"
	MetaImportanceScore   = "importance_score"
)

// RetrievalResult is a single candidate returned from the vector index,
// annotated by the retrieval coordinator and re-ranker.
type RetrievalResult struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`

	// Score is the similarity score reported by the vector index.
	Score float32 `json:"score,omitempty"`

	// RerankScore is assigned by the re-ranker (0-10). Only meaningful when
	// Reranked is true; both are retrieval-time annotations, never persisted.
	RerankScore float64 `json:"rerank_score,omitempty"`
	Reranked    bool    `json:"-"`

	// KeywordScore counts query keywords present in the content. Set by the
	// hybrid retrieval strategy only.
	KeywordScore int `json:"keyword_score,omitempty"`
}

// QueryAnalysis is the structured output of the query analyzer, consumed by
// the retrieval coordinator to widen the search.
type QueryAnalysis struct {
	EnhancedQuery   string   `json:"enhanced_query"`
	KeyConcepts     []string `json:"key_concepts"`
	QueryVariations []string `json:"query_variations"`
	QueryType       string   `json:"query_type"`
	OriginalQuery   string   `json:"original_query"`
}

// RoutingDecision is the router's verdict on whether a query needs retrieval.
type RoutingDecision struct {
	NeedsRetrieval bool    `json:"needs_retrieval"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
}

// ChatResult is the final answer returned to the HTTP layer.
type ChatResult struct {
	Answer        string            `json:"answer"`
	Sources       []RetrievalResult `json:"sources,omitempty"`
	UsedRetrieval bool              `json:"used_retrieval"`
}

// Progress event types emitted while a chat request moves through the
// agent pipeline.
const (
	EventProgress = "progress"
	EventResponse = "response"
	EventError    = "error"
	EventDone     = "done"
)

// ProgressEvent is streamed to clients while the pipeline runs.
type ProgressEvent struct {
	Type     string `json:"type"`
	Agent    string `json:"agent,omitempty"`
	Status   string `json:"status,omitempty"`
	Decision string `json:"decision,omitempty"`
	Count    int    `json:"count,omitempty"`
	Content  string `json:"content,omitempty"`
	Message  string `json:"message,omitempty"`
}
