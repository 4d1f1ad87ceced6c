package biz

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kart-io/logger"

	"github.com/barwojcik/local-chatbots/internal/model"
)

// Chunking strategy names.
const (
	StrategyFixed        = "fixed"
	StrategySemantic     = "semantic"
	StrategyHierarchical = "hierarchical"
)

// fixedSeparators is the split priority for the fixed strategy: prefer
// paragraph breaks, then lines, then sentences, then words.
var fixedSeparators = []string{"\n\n", "\n", ". ", " ", ""}

var markdownHeadingRegex = regexp.MustCompile(`^(#{1,6})\s+`)

// ChunkerConfig configures the document chunker.
type ChunkerConfig struct {
	// Strategy selects the chunking algorithm: fixed, semantic or hierarchical.
	Strategy string
	// ChunkSize is the target chunk size in characters.
	ChunkSize int
	// ChunkOverlap is the overlap between consecutive chunks (fixed strategy only).
	ChunkOverlap int
}

// Chunker splits a document's text into ordered chunks. Each chunk carries a
// copy of the document's base metadata; enrichment happens later in the
// pipeline.
type Chunker struct {
	cfg ChunkerConfig
}

// NewChunker creates a chunker. An unknown strategy is accepted here and
// falls back to fixed at split time with a warning.
func NewChunker(cfg ChunkerConfig) *Chunker {
	return &Chunker{cfg: cfg}
}

// Split converts one document into an ordered chunk list. Empty document
// text yields an empty list.
func (c *Chunker) Split(doc model.Document) []model.Chunk {
	if strings.TrimSpace(doc.Text) == "" {
		return nil
	}

	switch c.cfg.Strategy {
	case StrategyFixed:
		return c.fixedChunks(doc)
	case StrategySemantic:
		return c.semanticChunks(doc)
	case StrategyHierarchical:
		return c.hierarchicalChunks(doc)
	default:
		logger.Warnw("unknown chunking strategy, using fixed", "strategy", c.cfg.Strategy)
		return c.fixedChunks(doc)
	}
}

// fixedChunks splits text into windows of at most ChunkSize characters with
// ChunkOverlap characters repeated between consecutive windows, preferring
// the highest-priority separator that keeps pieces under the limit.
func (c *Chunker) fixedChunks(doc model.Document) []model.Chunk {
	pieces := splitRecursive(doc.Text, fixedSeparators, c.cfg.ChunkSize)
	texts := mergeWithOverlap(pieces, c.cfg.ChunkSize, c.cfg.ChunkOverlap)

	chunks := make([]model.Chunk, 0, len(texts))
	for _, text := range texts {
		chunks = append(chunks, model.Chunk{Text: text, Metadata: doc.Metadata.Clone()})
	}
	return chunks
}

// splitRecursive breaks text into pieces no longer than chunkSize using the
// first separator that applies, recursing into oversized pieces with the
// remaining separators. The empty-string separator splits per character.
func splitRecursive(text string, separators []string, chunkSize int) []string {
	if len(text) <= chunkSize {
		if text == "" {
			return nil
		}
		return []string{text}
	}
	if len(separators) == 0 {
		return []string{text}
	}

	sep := separators[0]
	if sep == "" {
		var out []string
		runes := []rune(text)
		for start := 0; start < len(runes); start += chunkSize {
			end := start + chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			out = append(out, string(runes[start:end]))
		}
		return out
	}

	parts := strings.Split(text, sep)
	var out []string
	for i, part := range parts {
		// Keep the separator attached so overlap merging can restore it.
		if i < len(parts)-1 {
			part += sep
		}
		if part == "" {
			continue
		}
		if len(part) > chunkSize {
			out = append(out, splitRecursive(part, separators[1:], chunkSize)...)
		} else {
			out = append(out, part)
		}
	}
	return out
}

// mergeWithOverlap greedily packs pieces into chunks of at most chunkSize
// characters, carrying the last overlap characters of each chunk into the
// next one. The carried tail is shortened when it would push the next chunk
// past chunkSize; the size bound always wins over the overlap.
func mergeWithOverlap(pieces []string, chunkSize, overlap int) []string {
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	var chunks []string
	var current strings.Builder

	flush := func() string {
		text := strings.TrimSpace(current.String())
		if text != "" {
			chunks = append(chunks, text)
		}
		tail := ""
		if overlap > 0 {
			s := current.String()
			runes := []rune(s)
			if len(runes) > overlap {
				tail = string(runes[len(runes)-overlap:])
			} else {
				tail = s
			}
		}
		current.Reset()
		return tail
	}

	for _, piece := range pieces {
		if current.Len() > 0 && current.Len()+len(piece) > chunkSize {
			tail := flush()
			if len(tail)+len(piece) > chunkSize {
				tail = tailWithin(tail, chunkSize-len(piece))
			}
			current.WriteString(tail)
		}
		current.WriteString(piece)
	}
	if strings.TrimSpace(current.String()) != "" {
		text := strings.TrimSpace(current.String())
		chunks = append(chunks, text)
	}
	return chunks
}

// tailWithin returns the longest suffix of s that fits in max bytes without
// splitting a rune.
func tailWithin(s string, max int) string {
	if max <= 0 {
		return ""
	}
	for len(s) > max {
		_, size := utf8.DecodeRuneInString(s)
		s = s[size:]
	}
	return s
}

// semanticChunks accumulates blank-line-delimited paragraphs into chunks,
// flushing when the next paragraph would exceed ChunkSize, or when it is a
// heading and the accumulated chunk already exceeds 30% of ChunkSize. A
// single paragraph larger than ChunkSize stays one oversized chunk; it is
// never split mid-sentence.
func (c *Chunker) semanticChunks(doc model.Document) []model.Chunk {
	var chunks []model.Chunk
	var current []string
	currentSize := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, model.Chunk{
			Text:     strings.Join(current, "\n\n"),
			Metadata: doc.Metadata.Clone(),
		})
	}

	for _, para := range strings.Split(doc.Text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		paraSize := len(para)

		firstLine, _, _ := strings.Cut(para, "\n")
		isHeading := DetectHeadingLevel(firstLine) > 0

		overflow := currentSize+paraSize > c.cfg.ChunkSize && len(current) > 0
		headingBreak := isHeading && len(current) > 0 && currentSize > c.cfg.ChunkSize*3/10

		if overflow || headingBreak {
			flush()
			current = []string{para}
			currentSize = paraSize
		} else {
			current = append(current, para)
			currentSize += paraSize + 2
		}
	}
	flush()

	return chunks
}

// hierarchicalChunks walks the text line by line. Every heading starts a new
// section and flushes the prior chunk; non-heading lines accumulate until
// ChunkSize is exceeded, at which point a continuation chunk starts within
// the same section (section metadata carried over, heading line not repeated).
func (c *Chunker) hierarchicalChunks(doc model.Document) []model.Chunk {
	var chunks []model.Chunk
	var current []string
	currentSize := 0
	currentSection := ""

	flush := func() {
		if len(current) == 0 {
			return
		}
		meta := doc.Metadata.Clone()
		if currentSection != "" {
			meta[model.MetaSection] = currentSection
		}
		chunks = append(chunks, model.Chunk{
			Text:     strings.Join(current, "\n"),
			Metadata: meta,
		})
	}

	for _, line := range strings.Split(doc.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if DetectHeadingLevel(line) > 0 {
			flush()
			currentSection = line
			current = []string{line}
			currentSize = len(line)
			continue
		}

		current = append(current, line)
		currentSize += len(line) + 1

		if currentSize > c.cfg.ChunkSize {
			flush()
			current = nil
			currentSize = 0
		}
	}
	flush()

	return chunks
}

// DetectHeadingLevel reports the heading level of a line, or 0 if the line
// is not a heading. Checks run in priority order:
//
//  1. Markdown prefix of 1-6 '#' characters followed by whitespace.
//  2. Short all-uppercase line without a trailing period (level 2).
//  3. Short title-cased line, at most 10 words with at least 70% of them
//     starting uppercase (level 3).
func DetectHeadingLevel(line string) int {
	if m := markdownHeadingRegex.FindStringSubmatch(line); m != nil {
		return len(m[1])
	}

	if len(line) < 100 && isUpper(line) && !strings.HasSuffix(line, ".") {
		return 2
	}

	words := strings.Fields(line)
	if len(words) > 0 && len(words) <= 10 {
		capitalized := 0
		for _, w := range words {
			if r := []rune(w)[0]; unicode.IsUpper(r) {
				capitalized++
			}
		}
		if float64(capitalized) >= float64(len(words))*0.7 {
			return 3
		}
	}

	return 0
}

// isUpper reports whether s contains at least one cased character and no
// lowercase characters.
func isUpper(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}
