package biz

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/barwojcik/local-chatbots/internal/model"
	"github.com/barwojcik/local-chatbots/pkg/llm"
)

// defaultRerankScore is assigned when the scorer fails or returns something
// that is not a number, so one bad response never fails the batch.
const defaultRerankScore = 5.0

const rerankPrompt = `You are a document relevance scorer. Given a query and a document chunk, rate the relevance on a scale of 0-10.

Query: %s

Document chunk: %s

Consider:
- Direct answer to query
- Contextual relevance
- Information completeness

Respond with ONLY a single number between 0-10, no other text.`

// RerankerConfig configures LLM-based re-ranking.
type RerankerConfig struct {
	// CallTimeout bounds each individual scoring call. An unresponsive
	// scorer costs one chunk its score, not the batch.
	CallTimeout time.Duration
}

// Reranker scores candidate chunks against a query with an LLM judge and
// sorts them by that score.
type Reranker struct {
	chat llm.ChatProvider
	cfg  RerankerConfig
}

// NewReranker creates a re-ranker.
func NewReranker(chat llm.ChatProvider, cfg RerankerConfig) *Reranker {
	return &Reranker{chat: chat, cfg: cfg}
}

// Rerank scores each result's relevance to the query, attaches the score and
// stable-sorts descending. An empty input is returned unchanged.
func (r *Reranker) Rerank(ctx context.Context, query string, results []model.RetrievalResult) []model.RetrievalResult {
	if len(results) == 0 {
		return results
	}

	logger.Infof("Re-ranking %d documents", len(results))

	for i := range results {
		results[i].RerankScore = r.scoreChunk(ctx, query, results[i].Content)
		results[i].Reranked = true
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RerankScore > results[j].RerankScore
	})

	logger.Infof("Re-ranking complete. Top score: %.2f", results[0].RerankScore)
	return results
}

// scoreChunk asks the scorer for a 0-10 relevance number, clamping the
// parsed value and substituting the default score on any failure.
func (r *Reranker) scoreChunk(ctx context.Context, query, content string) float64 {
	callCtx := ctx
	if r.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.cfg.CallTimeout)
		defer cancel()
	}

	prompt := fmt.Sprintf(rerankPrompt, query, content)
	response, err := r.chat.Generate(callCtx, prompt, "")
	if err != nil {
		logger.Warnw("rerank call failed, using default score", "error", err.Error())
		return defaultRerankScore
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(response), 64)
	if err != nil {
		logger.Warnw("failed to parse rerank score, using default",
			"response", strings.TrimSpace(response))
		return defaultRerankScore
	}

	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score
}
