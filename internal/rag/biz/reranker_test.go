package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRerankerOrdersByScore(t *testing.T) {
	chat := &fakeChat{responses: []string{"3", "9", "5"}}
	r := NewReranker(chat, RerankerConfig{})

	got := r.Rerank(context.Background(), "query", results("a", "b", "c"))

	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].Content)
	assert.Equal(t, 9.0, got[0].RerankScore)
	assert.Equal(t, "c", got[1].Content)
	assert.Equal(t, "a", got[2].Content)
	for _, res := range got {
		assert.True(t, res.Reranked)
	}
	// Scoring goes through the single-prompt generation path.
	assert.Equal(t, 3, chat.generateCalls)
}

func TestRerankerDefaultsOnUnparsableScore(t *testing.T) {
	chat := &fakeChat{responses: []string{"not a number", "8"}}
	r := NewReranker(chat, RerankerConfig{})

	got := r.Rerank(context.Background(), "query", results("a", "b"))

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Content)
	assert.Equal(t, 5.0, got[1].RerankScore)
}

func TestRerankerDefaultsOnCallError(t *testing.T) {
	chat := &fakeChat{errs: []error{errors.New("model down")}}
	r := NewReranker(chat, RerankerConfig{})

	got := r.Rerank(context.Background(), "query", results("a"))

	require.Len(t, got, 1)
	assert.Equal(t, 5.0, got[0].RerankScore)
}

func TestRerankerClampsScores(t *testing.T) {
	chat := &fakeChat{responses: []string{"15", "-3"}}
	r := NewReranker(chat, RerankerConfig{})

	got := r.Rerank(context.Background(), "query", results("a", "b"))

	require.Len(t, got, 2)
	assert.Equal(t, 10.0, got[0].RerankScore)
	assert.Equal(t, 0.0, got[1].RerankScore)
}

func TestRerankerStableOnTies(t *testing.T) {
	chat := &fakeChat{responses: []string{"5", "5", "5"}}
	r := NewReranker(chat, RerankerConfig{})

	got := r.Rerank(context.Background(), "query", results("a", "b", "c"))

	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Content)
	assert.Equal(t, "b", got[1].Content)
	assert.Equal(t, "c", got[2].Content)
}

func TestRerankerEmptyInput(t *testing.T) {
	chat := &fakeChat{}
	r := NewReranker(chat, RerankerConfig{})

	assert.Empty(t, r.Rerank(context.Background(), "query", nil))
	assert.Zero(t, chat.callCount())
}

func TestRerankerTrimsWhitespaceAroundScore(t *testing.T) {
	chat := &fakeChat{responses: []string{"  7.5\n"}}
	r := NewReranker(chat, RerankerConfig{})

	got := r.Rerank(context.Background(), "query", results("a"))

	require.Len(t, got, 1)
	assert.Equal(t, 7.5, got[0].RerankScore)
}
