package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/barwojcik/local-chatbots/internal/model"
	"github.com/barwojcik/local-chatbots/internal/pkg/rag/textutil"
	"github.com/barwojcik/local-chatbots/pkg/llm"
)

const analyzerSystemPrompt = `You are a query analysis agent that enhances queries for document retrieval.

Analyze the query and respond with a JSON object containing:
- "enhanced_query": improved version of the original query
- "key_concepts": list of important keywords/concepts
- "query_variations": list of alternative phrasings (if requested)
- "query_type": type of query (factual, analytical, procedural, conceptual)

Guidelines for enhancement:
1. Expand abbreviations and acronyms
2. Add relevant synonyms
3. Clarify ambiguous terms
4. Maintain the original intent
5. Keep queries concise but complete

Respond ONLY with valid JSON, no additional text.`

// AnalyzerConfig configures the query analyzer.
type AnalyzerConfig struct {
	// GenerateVariations asks the model for alternative query phrasings.
	GenerateVariations bool
	// MaxVariations caps the number of requested variations.
	MaxVariations int
}

// Analyzer rewrites and expands queries to widen retrieval.
type Analyzer struct {
	chat llm.ChatProvider
	cfg  AnalyzerConfig
}

// NewAnalyzer creates a query analyzer.
func NewAnalyzer(chat llm.ChatProvider, cfg AnalyzerConfig) *Analyzer {
	return &Analyzer{chat: chat, cfg: cfg}
}

// Analyze enhances the query. The second return value reports degradation:
// true means the model output could not be used and the analysis is the
// pass-through fallback (enhanced query equals the original, key concepts
// are the whitespace-split words, no variations).
func (a *Analyzer) Analyze(ctx context.Context, query string) (model.QueryAnalysis, bool) {
	logger.Infof("Analyzing query: %s", textutil.TruncateString(query, 120))

	userPrompt := query
	if a.cfg.GenerateVariations {
		userPrompt += fmt.Sprintf("\n\nGenerate up to %d query variations.", a.cfg.MaxVariations)
	}

	response, err := a.chat.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: analyzerSystemPrompt},
		{Role: llm.RoleUser, Content: userPrompt},
	})
	if err != nil {
		logger.Errorw("query analysis call failed, using original query", "error", err.Error())
		return fallbackAnalysis(query), true
	}

	var parsed struct {
		EnhancedQuery   *string  `json:"enhanced_query"`
		KeyConcepts     []string `json:"key_concepts"`
		QueryVariations []string `json:"query_variations"`
		QueryType       *string  `json:"query_type"`
	}
	if err := textutil.ExtractJSONObject(response, &parsed); err != nil ||
		parsed.EnhancedQuery == nil || parsed.KeyConcepts == nil || parsed.QueryType == nil {
		logger.Errorw("failed to parse query analysis, using original query",
			"response", textutil.TruncateString(response, 200))
		return fallbackAnalysis(query), true
	}

	analysis := model.QueryAnalysis{
		EnhancedQuery:   *parsed.EnhancedQuery,
		KeyConcepts:     parsed.KeyConcepts,
		QueryVariations: parsed.QueryVariations,
		QueryType:       *parsed.QueryType,
		OriginalQuery:   query,
	}
	if analysis.QueryVariations == nil {
		analysis.QueryVariations = []string{}
	}

	logger.Infow("query analysis complete",
		"enhanced", analysis.EnhancedQuery,
		"concepts", analysis.KeyConcepts,
		"type", analysis.QueryType,
	)
	return analysis, false
}

// fallbackAnalysis is the degraded analysis used when the model output is
// unusable: the query passes through unchanged.
func fallbackAnalysis(query string) model.QueryAnalysis {
	return model.QueryAnalysis{
		EnhancedQuery:   query,
		KeyConcepts:     strings.Fields(query),
		QueryVariations: []string{},
		QueryType:       "unknown",
		OriginalQuery:   query,
	}
}
