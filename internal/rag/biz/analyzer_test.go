package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzerParsesAnalysis(t *testing.T) {
	chat := &fakeChat{responses: []string{
		`{"enhanced_query": "transformer attention mechanism explained",
		  "key_concepts": ["attention", "transformer"],
		  "query_variations": ["how does attention work"],
		  "query_type": "conceptual"}`,
	}}
	a := NewAnalyzer(chat, AnalyzerConfig{GenerateVariations: true, MaxVariations: 3})

	analysis, degraded := a.Analyze(context.Background(), "how attention works")

	assert.False(t, degraded)
	assert.Equal(t, "transformer attention mechanism explained", analysis.EnhancedQuery)
	assert.Equal(t, []string{"attention", "transformer"}, analysis.KeyConcepts)
	assert.Equal(t, []string{"how does attention work"}, analysis.QueryVariations)
	assert.Equal(t, "conceptual", analysis.QueryType)
	assert.Equal(t, "how attention works", analysis.OriginalQuery)
}

func TestAnalyzerRequestsVariationsInPrompt(t *testing.T) {
	chat := &fakeChat{errs: []error{errors.New("skip")}}
	a := NewAnalyzer(chat, AnalyzerConfig{GenerateVariations: true, MaxVariations: 2})

	a.Analyze(context.Background(), "query")

	require.Len(t, chat.calls, 1)
	userMsg := chat.calls[0][len(chat.calls[0])-1]
	assert.Contains(t, userMsg.Content, "Generate up to 2 query variations.")
}

func TestAnalyzerFallsBackOnCallError(t *testing.T) {
	chat := &fakeChat{errs: []error{errors.New("model down")}}
	a := NewAnalyzer(chat, AnalyzerConfig{})

	analysis, degraded := a.Analyze(context.Background(), "neural network training")

	assert.True(t, degraded)
	assert.Equal(t, "neural network training", analysis.EnhancedQuery)
	assert.Equal(t, []string{"neural", "network", "training"}, analysis.KeyConcepts)
	assert.Empty(t, analysis.QueryVariations)
	assert.Equal(t, "unknown", analysis.QueryType)
}

func TestAnalyzerFallsBackOnMalformedJSON(t *testing.T) {
	chat := &fakeChat{responses: []string{"I could not produce JSON, sorry."}}
	a := NewAnalyzer(chat, AnalyzerConfig{})

	analysis, degraded := a.Analyze(context.Background(), "some query")

	assert.True(t, degraded)
	assert.Equal(t, "some query", analysis.EnhancedQuery)
}

func TestAnalyzerFallsBackOnMissingFields(t *testing.T) {
	chat := &fakeChat{responses: []string{`{"enhanced_query": "better query"}`}}
	a := NewAnalyzer(chat, AnalyzerConfig{})

	_, degraded := a.Analyze(context.Background(), "some query")

	assert.True(t, degraded)
}

func TestAnalyzerNormalizesNilVariations(t *testing.T) {
	chat := &fakeChat{responses: []string{
		`{"enhanced_query": "q", "key_concepts": ["a"], "query_type": "factual"}`,
	}}
	a := NewAnalyzer(chat, AnalyzerConfig{})

	analysis, degraded := a.Analyze(context.Background(), "q")

	assert.False(t, degraded)
	assert.NotNil(t, analysis.QueryVariations)
	assert.Empty(t, analysis.QueryVariations)
}
