package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barwojcik/local-chatbots/internal/model"
)

func results(contents ...string) []model.RetrievalResult {
	out := make([]model.RetrievalResult, 0, len(contents))
	for _, c := range contents {
		out = append(out, model.RetrievalResult{Content: c})
	}
	return out
}

func TestRetrieverDeduplicatesKeepingFirst(t *testing.T) {
	st := newFakeStore(model.RetrievalResult{Content: "dup", Score: 0.9},
		model.RetrievalResult{Content: "dup", Score: 0.1},
		model.RetrievalResult{Content: "other"},
		model.RetrievalResult{Content: ""})
	r := NewRetriever(st, nil, RetrieverConfig{MaxResults: 5})

	got := r.Retrieve(context.Background(), "query", nil)

	require.Len(t, got, 2)
	assert.Equal(t, "dup", got[0].Content)
	assert.Equal(t, float32(0.9), got[0].Score)
	assert.Equal(t, "other", got[1].Content)
}

func TestRetrieverCapsResults(t *testing.T) {
	st := newFakeStore(results("a", "b", "c", "d", "e", "f", "g", "h")...)
	r := NewRetriever(st, nil, RetrieverConfig{MaxResults: 3})

	got := r.Retrieve(context.Background(), "query", nil)

	assert.Len(t, got, 3)
	// Semantic strategy over-fetches twice the cap.
	assert.Equal(t, []int{6}, st.searchKs)
}

func TestRetrieverSearchErrorReturnsEmpty(t *testing.T) {
	st := newFakeStore()
	st.searchErr = errors.New("index offline")
	r := NewRetriever(st, nil, RetrieverConfig{MaxResults: 5})

	got := r.Retrieve(context.Background(), "query", nil)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRetrieverUsesEnhancedQueryAndVariations(t *testing.T) {
	st := newFakeStore(results("a")...)
	r := NewRetriever(st, nil, RetrieverConfig{MaxResults: 5})

	analysis := &model.QueryAnalysis{
		EnhancedQuery:   "enhanced form",
		QueryVariations: []string{"v1", "v2", "v3"},
	}
	r.Retrieve(context.Background(), "original", analysis)

	// One strategy lookup with the enhanced query plus at most two variations.
	require.Equal(t, 3, st.searchCount())
	assert.Equal(t, []string{"enhanced form", "v1", "v2"}, st.queries)
	assert.Equal(t, []int{10, 5, 5}, st.searchKs)
}

func TestRetrieverHybridOrdersByKeywordOverlap(t *testing.T) {
	st := newFakeStore(
		model.RetrievalResult{Content: "nothing relevant here"},
		model.RetrievalResult{Content: "attention is all you need"},
		model.RetrievalResult{Content: "attention and transformer layers"},
	)
	r := NewRetriever(st, nil, RetrieverConfig{Strategies: []string{RetrievalHybrid}, MaxResults: 3})

	got := r.Retrieve(context.Background(), "attention transformer", nil)

	require.Len(t, got, 3)
	assert.Equal(t, "attention and transformer layers", got[0].Content)
	assert.Equal(t, 2, got[0].KeywordScore)
	assert.Equal(t, "attention is all you need", got[1].Content)
	assert.Equal(t, 1, got[1].KeywordScore)
	// Hybrid over-fetches four times the cap before local scoring.
	assert.Equal(t, []int{12}, st.searchKs)
}

func TestRetrieverUnknownStrategySkipped(t *testing.T) {
	st := newFakeStore(results("a")...)
	r := NewRetriever(st, nil, RetrieverConfig{Strategies: []string{"graph", RetrievalSemantic}, MaxResults: 5})

	got := r.Retrieve(context.Background(), "query", nil)

	require.Len(t, got, 1)
	assert.Equal(t, 1, st.searchCount())
}

func TestRetrieverReranksWhenEnabled(t *testing.T) {
	st := newFakeStore(results("low", "high")...)
	chat := &fakeChat{responses: []string{"2", "9"}}
	reranker := NewReranker(chat, RerankerConfig{})
	r := NewRetriever(st, reranker, RetrieverConfig{MaxResults: 5, EnableReranking: true})

	got := r.Retrieve(context.Background(), "query", nil)

	require.Len(t, got, 2)
	assert.Equal(t, "high", got[0].Content)
	assert.True(t, got[0].Reranked)
}
