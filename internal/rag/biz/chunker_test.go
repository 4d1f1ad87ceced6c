package biz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barwojcik/local-chatbots/internal/model"
)

func TestDetectHeadingLevel(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{"markdown h1", "# Title", 1},
		{"markdown h3", "### Subsection", 3},
		{"markdown h6", "###### Deep", 6},
		{"seven hashes is not markdown", "####### Too deep", 0},
		{"hash without space", "#tag", 0},
		{"all caps", "THIS IS ALL CAPS", 2},
		{"all caps with trailing period", "THIS IS A SENTENCE.", 0},
		{"title case", "Quarterly Report Summary", 3},
		{"plain sentence", "the quick brown fox jumps over it", 0},
		{"too many words for title case", "One Two Three Four Five Six Seven Eight Nine Ten Eleven", 0},
		{"mostly capitalized", "The Big Brown Fox", 3},
		{"empty line", "", 0},
		{"digits only", "12345", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectHeadingLevel(tt.line))
		})
	}
}

func TestChunkerEmptyDocument(t *testing.T) {
	c := NewChunker(ChunkerConfig{Strategy: StrategySemantic, ChunkSize: 100})

	assert.Empty(t, c.Split(model.Document{Text: ""}))
	assert.Empty(t, c.Split(model.Document{Text: "   \n\n  "}))
}

func TestFixedChunking(t *testing.T) {
	c := NewChunker(ChunkerConfig{Strategy: StrategyFixed, ChunkSize: 80, ChunkOverlap: 10})

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10)
	chunks := c.Split(model.Document{Text: text})

	require.NotEmpty(t, chunks)
	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk.Text)
		assert.LessOrEqual(t, len(chunk.Text), 80)
	}

	// Every word of the input survives in some chunk.
	all := ""
	for _, chunk := range chunks {
		all += chunk.Text + " "
	}
	for _, word := range strings.Fields(text) {
		assert.Contains(t, all, word)
	}
}

func TestFixedChunkingHonorsSizeBoundWithOverlap(t *testing.T) {
	c := NewChunker(ChunkerConfig{Strategy: StrategyFixed, ChunkSize: 1024, ChunkOverlap: 128})

	// Two near-full paragraphs: the overlap tail carried into the second
	// chunk must shrink so the chunk stays within the size bound.
	text := strings.Repeat("a", 1000) + "\n\n" + strings.Repeat("b", 1000)
	chunks := c.Split(model.Document{Text: text})

	require.Len(t, chunks, 2)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 1024)
	}
	// The shortened overlap still carries content from the first chunk.
	assert.Contains(t, chunks[1].Text, "a")
	assert.Contains(t, chunks[1].Text, strings.Repeat("b", 1000))
}

func TestFixedChunkingMetadataIsolation(t *testing.T) {
	c := NewChunker(ChunkerConfig{Strategy: StrategyFixed, ChunkSize: 40, ChunkOverlap: 0})

	doc := model.Document{
		Text:     strings.Repeat("Some sentence here. ", 10),
		Metadata: model.Metadata{"source": "a.txt"},
	}
	chunks := c.Split(doc)
	require.Greater(t, len(chunks), 1)

	chunks[0].Metadata["extra"] = true
	assert.NotContains(t, chunks[1].Metadata, "extra")
	assert.NotContains(t, doc.Metadata, "extra")
	assert.Equal(t, "a.txt", chunks[1].Metadata["source"])
}

func TestSemanticChunkingJoinsParagraphs(t *testing.T) {
	c := NewChunker(ChunkerConfig{Strategy: StrategySemantic, ChunkSize: 200})

	text := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."
	chunks := c.Split(model.Document{Text: text})

	require.Len(t, chunks, 1)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.\n\nThird paragraph.", chunks[0].Text)
}

func TestSemanticChunkingOverflow(t *testing.T) {
	c := NewChunker(ChunkerConfig{Strategy: StrategySemantic, ChunkSize: 50})

	text := "This paragraph is a bit over thirty chars.\n\nAnd this one would overflow the limit."
	chunks := c.Split(model.Document{Text: text})

	require.Len(t, chunks, 2)
	assert.Equal(t, "This paragraph is a bit over thirty chars.", chunks[0].Text)
	assert.Equal(t, "And this one would overflow the limit.", chunks[1].Text)
}

func TestSemanticChunkingOversizedParagraphStaysWhole(t *testing.T) {
	c := NewChunker(ChunkerConfig{Strategy: StrategySemantic, ChunkSize: 50})

	para := strings.Repeat("word ", 40)
	chunks := c.Split(model.Document{Text: strings.TrimSpace(para)})

	require.Len(t, chunks, 1)
	assert.Greater(t, len(chunks[0].Text), 50)
}

func TestSemanticChunkingHeadingBreak(t *testing.T) {
	c := NewChunker(ChunkerConfig{Strategy: StrategySemantic, ChunkSize: 200})

	// The accumulated chunk exceeds 30% of the chunk size, so the heading
	// starts a new chunk even though both would fit.
	text := "this opening paragraph carries enough characters to pass the threshold easily.\n\n# Methods\n\nthe methods follow."
	chunks := c.Split(model.Document{Text: text})

	require.Len(t, chunks, 2)
	assert.Equal(t, "this opening paragraph carries enough characters to pass the threshold easily.", chunks[0].Text)
	assert.Equal(t, "# Methods\n\nthe methods follow.", chunks[1].Text)
}

func TestSemanticChunkingHeadingBelowThresholdJoins(t *testing.T) {
	c := NewChunker(ChunkerConfig{Strategy: StrategySemantic, ChunkSize: 1000})

	text := "short opener.\n\n# Methods\n\nthe methods follow."
	chunks := c.Split(model.Document{Text: text})

	require.Len(t, chunks, 1)
}

func TestHierarchicalChunking(t *testing.T) {
	c := NewChunker(ChunkerConfig{Strategy: StrategyHierarchical, ChunkSize: 500})

	text := "# Intro\n\nThis is the intro.\n\n# Methods\n\nWe did X."
	chunks := c.Split(model.Document{Text: text})

	require.Len(t, chunks, 2)
	assert.Equal(t, "# Intro\nThis is the intro.", chunks[0].Text)
	assert.Equal(t, "# Intro", chunks[0].Metadata[model.MetaSection])
	assert.Equal(t, "# Methods\nWe did X.", chunks[1].Text)
	assert.Equal(t, "# Methods", chunks[1].Metadata[model.MetaSection])
}

func TestHierarchicalChunkingOverflowKeepsSection(t *testing.T) {
	c := NewChunker(ChunkerConfig{Strategy: StrategyHierarchical, ChunkSize: 60})

	text := "# Results\nfirst line of results with some length\nsecond line of results with some length\nthird line"
	chunks := c.Split(model.Document{Text: text})

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.Equal(t, "# Results", chunk.Metadata[model.MetaSection])
	}
	// The heading line appears only in the first chunk.
	assert.True(t, strings.HasPrefix(chunks[0].Text, "# Results"))
	for _, chunk := range chunks[1:] {
		assert.NotContains(t, chunk.Text, "# Results")
	}
}

func TestUnknownStrategyFallsBackToFixed(t *testing.T) {
	c := NewChunker(ChunkerConfig{Strategy: "mystery", ChunkSize: 100, ChunkOverlap: 0})

	chunks := c.Split(model.Document{Text: "Just a short document."})
	require.Len(t, chunks, 1)
	assert.Equal(t, "Just a short document.", chunks[0].Text)
}
