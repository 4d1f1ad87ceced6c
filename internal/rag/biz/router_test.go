package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouterShortCircuitsWithoutDocuments(t *testing.T) {
	chat := &fakeChat{}
	r := NewRouter(chat, RouterConfig{ConfidenceThreshold: 0.7})

	decision := r.Route(context.Background(), "what does the document say?", false)

	assert.False(t, decision.NeedsRetrieval)
	assert.Equal(t, 1.0, decision.Confidence)
	assert.Equal(t, "No documents available in vector store", decision.Reasoning)
	assert.Zero(t, chat.callCount())
}

func TestRouterParsesDecision(t *testing.T) {
	chat := &fakeChat{responses: []string{
		`{"needs_retrieval": true, "confidence": 0.92, "reasoning": "asks about uploaded content"}`,
	}}
	r := NewRouter(chat, RouterConfig{ConfidenceThreshold: 0.7})

	decision := r.Route(context.Background(), "summarize the paper", true)

	assert.True(t, decision.NeedsRetrieval)
	assert.Equal(t, 0.92, decision.Confidence)
	assert.Equal(t, "asks about uploaded content", decision.Reasoning)
}

func TestRouterParsesWrappedJSON(t *testing.T) {
	chat := &fakeChat{responses: []string{
		"Sure, here you go:\n{\"needs_retrieval\": false, \"confidence\": 0.8, \"reasoning\": \"greeting\"}\nLet me know!",
	}}
	r := NewRouter(chat, RouterConfig{})

	decision := r.Route(context.Background(), "hello", true)

	assert.False(t, decision.NeedsRetrieval)
	assert.Equal(t, 0.8, decision.Confidence)
}

func TestRouterFallsBackOnCallError(t *testing.T) {
	chat := &fakeChat{errs: []error{errors.New("model down")}}
	r := NewRouter(chat, RouterConfig{})

	decision := r.Route(context.Background(), "question", true)

	assert.True(t, decision.NeedsRetrieval)
	assert.Equal(t, 0.5, decision.Confidence)
}

func TestRouterFallsBackOnMissingFields(t *testing.T) {
	chat := &fakeChat{responses: []string{`{"needs_retrieval": true}`}}
	r := NewRouter(chat, RouterConfig{})

	decision := r.Route(context.Background(), "question", true)

	assert.True(t, decision.NeedsRetrieval)
	assert.Equal(t, 0.5, decision.Confidence)
	assert.Equal(t, "Failed to parse routing decision, defaulting to retrieval", decision.Reasoning)
}

func TestRouterConfidenceThresholdDoesNotGate(t *testing.T) {
	chat := &fakeChat{responses: []string{
		`{"needs_retrieval": false, "confidence": 0.1, "reasoning": "low confidence"}`,
	}}
	r := NewRouter(chat, RouterConfig{ConfidenceThreshold: 0.7})

	decision := r.Route(context.Background(), "question", true)

	// Below-threshold confidence is logged, never overridden.
	assert.False(t, decision.NeedsRetrieval)
	assert.Equal(t, 0.1, decision.Confidence)
}
