package biz

import (
	"strings"

	"github.com/barwojcik/local-chatbots/internal/model"
	"github.com/barwojcik/local-chatbots/internal/pkg/rag/textutil"
)

var (
	visualMarkers     = []string{"table", "figure", "chart", "graph"}
	importanceMarkers = []string{"summary", "conclusion", "abstract", "introduction"}
)

// Enricher derives metadata signals from chunk content: position indices,
// heading, content-type hints and an importance score.
type Enricher struct {
	enabled bool
}

// NewEnricher creates an enricher. When disabled, chunks keep only their
// copied base metadata; no derived fields and no index fields are written.
func NewEnricher(enabled bool) *Enricher {
	return &Enricher{enabled: enabled}
}

// Enrich annotates one chunk's metadata in place with its position and
// derived signals. Sibling chunks are never affected since every chunk owns
// its metadata map.
func (e *Enricher) Enrich(chunk *model.Chunk, docIndex, chunkIndex int) {
	if !e.enabled {
		return
	}
	if chunk.Metadata == nil {
		chunk.Metadata = model.Metadata{}
	}

	chunk.Metadata[model.MetaDocIndex] = docIndex
	chunk.Metadata[model.MetaChunkIndex] = chunkIndex

	firstLine, _, _ := strings.Cut(chunk.Text, "\n")
	firstLine = strings.TrimSpace(firstLine)
	headingLevel := DetectHeadingLevel(firstLine)
	if headingLevel > 0 {
		chunk.Metadata[model.MetaHeading] = firstLine
		chunk.Metadata[model.MetaHeadingLevel] = headingLevel
	}

	lower := strings.ToLower(chunk.Text)
	if textutil.ContainsAny(lower, visualMarkers) {
		chunk.Metadata[model.MetaContainsVisual] = true
	}
	if strings.Count(lower, "\n") > 10 && strings.Contains(lower, ":") {
		chunk.Metadata[model.MetaStructuredContent] = true
	}

	importance := 0
	if headingLevel > 0 {
		importance += (7 - headingLevel) * 2
	}
	if textutil.ContainsAny(lower, importanceMarkers) {
		importance += 5
	}
	chunk.Metadata[model.MetaImportanceScore] = importance
}
