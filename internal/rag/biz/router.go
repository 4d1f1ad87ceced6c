package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/barwojcik/local-chatbots/internal/model"
	"github.com/barwojcik/local-chatbots/internal/pkg/rag/textutil"
	"github.com/barwojcik/local-chatbots/pkg/llm"
)

const routerSystemPrompt = `You are a routing agent that determines if a user query requires external document retrieval.

Analyze the query and respond with a JSON object containing:
- "needs_retrieval": boolean indicating if document retrieval is needed
- "confidence": float between 0 and 1 indicating confidence in the decision
- "reasoning": brief explanation of the decision

Query types that NEED retrieval:
- Questions about specific documents, papers, or uploaded content
- Requests for information that requires domain-specific knowledge
- Questions about data, statistics, or facts not in common knowledge
- Queries referencing "the document", "the file", "uploaded content", etc.

Query types that DON'T need retrieval:
- General knowledge questions
- Casual conversation and greetings
- Requests for explanations of common concepts
- Math calculations or logic problems
- Programming help with common languages/frameworks

Respond ONLY with valid JSON, no additional text.`

// RouterConfig configures the routing agent.
type RouterConfig struct {
	// ConfidenceThreshold is informational only: decisions below it are
	// logged but still returned as stated by the model.
	ConfidenceThreshold float64
}

// Router decides whether a query needs document retrieval. All failure modes
// fall back to retrieval, the safe default.
type Router struct {
	chat llm.ChatProvider
	cfg  RouterConfig
}

// NewRouter creates a routing agent.
func NewRouter(chat llm.ChatProvider, cfg RouterConfig) *Router {
	return &Router{chat: chat, cfg: cfg}
}

// Route returns the retrieval decision for a query. With no documents in the
// store it short-circuits to "no retrieval" without calling the model.
func (r *Router) Route(ctx context.Context, query string, hasDocuments bool) model.RoutingDecision {
	logger.Infof("Routing query: %s", textutil.TruncateString(query, 120))

	if !hasDocuments {
		logger.Info("No documents in vector store, skipping retrieval")
		return model.RoutingDecision{
			NeedsRetrieval: false,
			Confidence:     1.0,
			Reasoning:      "No documents available in vector store",
		}
	}

	response, err := r.chat.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: routerSystemPrompt},
		{Role: llm.RoleUser, Content: query},
	})
	if err != nil {
		logger.Errorw("router call failed, defaulting to retrieval", "error", err.Error())
		return model.RoutingDecision{
			NeedsRetrieval: true,
			Confidence:     0.5,
			Reasoning:      fmt.Sprintf("Error in routing: %v", err),
		}
	}

	var parsed struct {
		NeedsRetrieval *bool    `json:"needs_retrieval"`
		Confidence     *float64 `json:"confidence"`
		Reasoning      *string  `json:"reasoning"`
	}
	if err := textutil.ExtractJSONObject(response, &parsed); err != nil ||
		parsed.NeedsRetrieval == nil || parsed.Confidence == nil || parsed.Reasoning == nil {
		logger.Errorw("failed to parse routing decision, defaulting to retrieval",
			"response", textutil.TruncateString(response, 200))
		return model.RoutingDecision{
			NeedsRetrieval: true,
			Confidence:     0.5,
			Reasoning:      "Failed to parse routing decision, defaulting to retrieval",
		}
	}

	decision := model.RoutingDecision{
		NeedsRetrieval: *parsed.NeedsRetrieval,
		Confidence:     *parsed.Confidence,
		Reasoning:      *parsed.Reasoning,
	}

	// The threshold does not gate the decision; the model's stated boolean
	// stands regardless of confidence.
	if decision.Confidence < r.cfg.ConfidenceThreshold {
		logger.Warnw("router confidence below threshold",
			"confidence", decision.Confidence,
			"threshold", r.cfg.ConfidenceThreshold,
		)
	}

	logger.Infow("routing decision",
		"needs_retrieval", decision.NeedsRetrieval,
		"confidence", decision.Confidence,
		"reasoning", decision.Reasoning,
	)
	return decision
}
