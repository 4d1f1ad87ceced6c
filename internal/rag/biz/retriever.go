package biz

import (
	"context"
	"sort"

	"github.com/kart-io/logger"

	"github.com/barwojcik/local-chatbots/internal/model"
	"github.com/barwojcik/local-chatbots/internal/pkg/rag/textutil"
	"github.com/barwojcik/local-chatbots/internal/rag/store"
)

// Retrieval strategy names.
const (
	RetrievalSemantic = "semantic"
	RetrievalHybrid   = "hybrid"
)

// RetrieverConfig configures the retrieval coordinator.
type RetrieverConfig struct {
	// Strategies is the ordered list of retrieval strategies to run.
	Strategies []string
	// EnableReranking turns on LLM-based re-ranking of candidates.
	EnableReranking bool
	// MaxResults caps the number of returned results.
	MaxResults int
}

// Retriever coordinates retrieval strategies against the vector store,
// merges and deduplicates their results, optionally re-ranks them, and caps
// the output. It never propagates lookup failures: on error the caller gets
// an empty list.
type Retriever struct {
	store    store.VectorStore
	reranker *Reranker
	cfg      RetrieverConfig
}

// NewRetriever creates a retrieval coordinator.
func NewRetriever(vectorStore store.VectorStore, reranker *Reranker, cfg RetrieverConfig) *Retriever {
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = []string{RetrievalSemantic}
	}
	return &Retriever{
		store:    vectorStore,
		reranker: reranker,
		cfg:      cfg,
	}
}

// Retrieve produces a deduplicated, ranked, size-capped candidate set for
// the query. When analysis carries an enhanced query it replaces the raw
// query for lookups; up to two query variations widen the search further.
func (r *Retriever) Retrieve(ctx context.Context, query string, analysis *model.QueryAnalysis) []model.RetrievalResult {
	logger.Infof("Retrieving documents for query: %s", textutil.TruncateString(query, 120))

	searchQuery := query
	if analysis != nil && analysis.EnhancedQuery != "" {
		searchQuery = analysis.EnhancedQuery
		logger.Infof("Using enhanced query: %s", textutil.TruncateString(searchQuery, 120))
	}

	var all []model.RetrievalResult

	for _, strategy := range r.cfg.Strategies {
		switch strategy {
		case RetrievalSemantic:
			results, err := r.store.Search(ctx, searchQuery, r.cfg.MaxResults*2)
			if err != nil {
				logger.Errorw("semantic search failed", "error", err.Error())
				return []model.RetrievalResult{}
			}
			all = append(all, results...)

		case RetrievalHybrid:
			results, err := r.hybridSearch(ctx, searchQuery, r.cfg.MaxResults*2)
			if err != nil {
				logger.Errorw("hybrid search failed", "error", err.Error())
				return []model.RetrievalResult{}
			}
			all = append(all, results...)

		default:
			logger.Warnw("unknown retrieval strategy, skipping", "strategy", strategy)
		}
	}

	if analysis != nil {
		variations := analysis.QueryVariations
		if len(variations) > 2 {
			variations = variations[:2]
		}
		for _, variation := range variations {
			results, err := r.store.Search(ctx, variation, r.cfg.MaxResults)
			if err != nil {
				logger.Errorw("variation search failed", "variation", variation, "error", err.Error())
				return []model.RetrievalResult{}
			}
			all = append(all, results...)
		}
	}

	unique := dedupeByContent(all)
	logger.Infof("Retrieved %d unique documents", len(unique))

	if r.cfg.EnableReranking && r.reranker != nil {
		unique = r.reranker.Rerank(ctx, query, unique)
	}

	if len(unique) > r.cfg.MaxResults {
		unique = unique[:r.cfg.MaxResults]
	}
	return unique
}

// hybridSearch combines vector similarity with keyword-overlap scoring: it
// fetches 2k semantic candidates, scores them by how many query keywords
// appear in their content, stable-sorts by that score and keeps the top k.
// The sort happens here, before the results join the overall merge.
func (r *Retriever) hybridSearch(ctx context.Context, query string, k int) ([]model.RetrievalResult, error) {
	results, err := r.store.Search(ctx, query, k*2)
	if err != nil {
		return nil, err
	}

	keywords := textutil.QueryKeywords(query)
	for i := range results {
		results[i].KeywordScore = textutil.KeywordScore(results[i].Content, keywords)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].KeywordScore > results[j].KeywordScore
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// dedupeByContent removes duplicates by exact content equality, keeping the
// first occurrence. Empty content is never kept.
func dedupeByContent(results []model.RetrievalResult) []model.RetrievalResult {
	seen := make(map[string]struct{}, len(results))
	unique := make([]model.RetrievalResult, 0, len(results))
	for _, res := range results {
		if res.Content == "" {
			continue
		}
		if _, ok := seen[res.Content]; ok {
			continue
		}
		seen[res.Content] = struct{}{}
		unique = append(unique, res)
	}
	return unique
}
