package biz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/barwojcik/local-chatbots/internal/model"
	"github.com/barwojcik/local-chatbots/internal/rag/store"
	"github.com/barwojcik/local-chatbots/pkg/llm"
)

// Agent names used in progress events.
const (
	agentRouter      = "router"
	agentAnalyzer    = "query_analyzer"
	agentRetriever   = "retriever"
	agentSynthesizer = "synthesizer"
)

// ServiceConfig configures the orchestrator.
type ServiceConfig struct {
	// HistorySize bounds the conversation history in messages.
	HistorySize int
	// ProgressBuffer is the capacity of the progress event channel used by
	// streaming chat.
	ProgressBuffer int
}

// Service orchestrates the agent pipeline: router decides, analyzer rewrites,
// retriever gathers context, synthesizer answers. It owns the conversation
// history and the answer cache.
type Service struct {
	router      *Router
	analyzer    *Analyzer
	retriever   *Retriever
	synthesizer *Synthesizer
	indexer     *Indexer
	store       store.VectorStore
	cache       *AnswerCache
	history     *History
	cfg         ServiceConfig
}

// NewService wires the agent pipeline together. The cache may be nil.
func NewService(
	router *Router,
	analyzer *Analyzer,
	retriever *Retriever,
	synthesizer *Synthesizer,
	indexer *Indexer,
	vectorStore store.VectorStore,
	cache *AnswerCache,
	cfg ServiceConfig,
) *Service {
	if cfg.ProgressBuffer <= 0 {
		cfg.ProgressBuffer = 16
	}
	return &Service{
		router:      router,
		analyzer:    analyzer,
		retriever:   retriever,
		synthesizer: synthesizer,
		indexer:     indexer,
		store:       vectorStore,
		cache:       cache,
		history:     NewHistory(cfg.HistorySize),
		cfg:         cfg,
	}
}

// Chat runs the full pipeline for one question and returns the answer.
func (s *Service) Chat(ctx context.Context, question string) (*model.ChatResult, error) {
	return s.chat(ctx, question, nil)
}

// ChatStream runs the pipeline on its own goroutine and returns a bounded
// channel of progress events, closed when the pipeline finishes. The caller
// drains the channel; an abandoned ctx unblocks the pipeline side.
func (s *Service) ChatStream(ctx context.Context, question string) <-chan model.ProgressEvent {
	events := make(chan model.ProgressEvent, s.cfg.ProgressBuffer)

	go func() {
		defer close(events)

		emit := func(ev model.ProgressEvent) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}

		result, err := s.chat(ctx, question, emit)
		if err != nil {
			emit(model.ProgressEvent{Type: model.EventError, Message: err.Error()})
			return
		}
		emit(model.ProgressEvent{Type: model.EventResponse, Content: result.Answer})
		emit(model.ProgressEvent{Type: model.EventDone})
	}()

	return events
}

// chat is the shared pipeline. emit may be nil for non-streaming calls.
func (s *Service) chat(ctx context.Context, question string, emit func(model.ProgressEvent)) (*model.ChatResult, error) {
	if emit == nil {
		emit = func(model.ProgressEvent) {}
	}

	if s.cache != nil {
		if cached := s.cache.Get(ctx, question); cached != nil {
			s.recordExchange(question, cached.Answer)
			return cached, nil
		}
	}

	hasDocs, err := s.store.HasDocuments(ctx)
	if err != nil {
		logger.Warnw("failed to check for documents, assuming none", "error", err.Error())
		hasDocs = false
	}

	emit(model.ProgressEvent{Type: model.EventProgress, Agent: agentRouter, Status: "analyzing"})
	decision := s.router.Route(ctx, question, hasDocs)

	routeName := "direct"
	if decision.NeedsRetrieval {
		routeName = "retrieval"
	}
	emit(model.ProgressEvent{Type: model.EventProgress, Agent: agentRouter, Status: "complete", Decision: routeName})

	history := s.history.Messages()
	result := &model.ChatResult{UsedRetrieval: decision.NeedsRetrieval}

	if decision.NeedsRetrieval {
		emit(model.ProgressEvent{Type: model.EventProgress, Agent: agentAnalyzer, Status: "analyzing"})
		analysis, degraded := s.analyzer.Analyze(ctx, question)
		if degraded {
			logger.Warnw("query analysis degraded to pass-through", "query", question)
		}
		emit(model.ProgressEvent{Type: model.EventProgress, Agent: agentAnalyzer, Status: "complete"})

		emit(model.ProgressEvent{Type: model.EventProgress, Agent: agentRetriever, Status: "searching"})
		sources := s.retriever.Retrieve(ctx, question, &analysis)
		emit(model.ProgressEvent{Type: model.EventProgress, Agent: agentRetriever, Status: "complete", Count: len(sources)})

		emit(model.ProgressEvent{Type: model.EventProgress, Agent: agentSynthesizer, Status: "generating"})
		answer, err := s.synthesizer.Synthesize(ctx, question, sources, history)
		if err != nil {
			return nil, err
		}
		result.Answer = answer
		result.Sources = sources
	} else {
		emit(model.ProgressEvent{Type: model.EventProgress, Agent: agentSynthesizer, Status: "generating"})
		answer, err := s.synthesizer.SynthesizeDirect(ctx, question, history)
		if err != nil {
			return nil, err
		}
		result.Answer = answer
	}

	s.recordExchange(question, result.Answer)
	if s.cache != nil {
		s.cache.Set(ctx, question, result)
	}
	return result, nil
}

func (s *Service) recordExchange(question, answer string) {
	s.history.Append(llm.RoleUser, question)
	s.history.Append(llm.RoleAssistant, answer)
}

// Ingest processes and stores documents synchronously.
func (s *Service) Ingest(ctx context.Context, docs []model.Document) (*IngestResult, error) {
	return s.indexer.Index(ctx, docs)
}

// IngestAsync schedules document ingestion in the background.
func (s *Service) IngestAsync(docs []model.Document) error {
	return s.indexer.IndexAsync(docs)
}

// Stats describes the current state of the knowledge base.
type Stats struct {
	ChunkCount   int64 `json:"chunk_count"`
	HasDocuments bool  `json:"has_documents"`
}

// Stats returns knowledge base statistics.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{ChunkCount: count, HasDocuments: count > 0}, nil
}

// Reset clears the vector store, the answer cache and the conversation
// history.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			logger.Warnw("failed to clear answer cache", "error", err.Error())
		}
	}
	s.history.Clear()
	logger.Info("Knowledge base reset")
	return nil
}

// Close releases background resources.
func (s *Service) Close() {
	if s.indexer != nil {
		s.indexer.Close()
	}
}
