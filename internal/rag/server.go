package rag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/barwojcik/local-chatbots/internal/rag/biz"
	"github.com/barwojcik/local-chatbots/internal/rag/handler"
	"github.com/barwojcik/local-chatbots/internal/rag/router"
	"github.com/barwojcik/local-chatbots/internal/rag/store"
	"github.com/barwojcik/local-chatbots/pkg/component/milvus"
	"github.com/barwojcik/local-chatbots/pkg/llm/ollama"
)

// Server is the assembled RAG HTTP server with its backing resources.
type Server struct {
	httpSrv *http.Server
	service *biz.Service
	opts    *Options

	milvusClient *milvus.Client
	redisClient  *goredis.Client
}

// NewServer wires the full service from options.
func NewServer(opts *Options) (*Server, error) {
	// 1. Initialize the global logger.
	if err := opts.Log.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := context.Background()

	// 2. Connect to Milvus.
	milvusClient, err := milvus.New(opts.Milvus)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}
	logger.Infow("connected to milvus", "address", opts.Milvus.Address)

	// 3. Create the Ollama client. A failed ping is not fatal; the model
	// server may come up later.
	llmClient := ollama.New(opts.Ollama)
	if err := llmClient.Ping(ctx); err != nil {
		logger.Warnw("ollama is not reachable yet", "base_url", opts.Ollama.BaseURL, "error", err.Error())
	}

	// 4. Create the vector store on top of Milvus.
	vectorStore, err := store.NewMilvusStore(ctx, milvusClient, llmClient, opts.RAG.Collection, opts.RAG.EmbeddingDim)
	if err != nil {
		_ = milvusClient.Close(ctx)
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	// 5. Connect Redis for the answer cache. If Redis is unreachable the
	// cache is disabled instead of failing startup.
	var redisClient *goredis.Client
	var answerCache *biz.AnswerCache
	if opts.Cache.Enabled {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     opts.Cache.Addr,
			Password: opts.Cache.Password,
			DB:       opts.Cache.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnw("redis is not reachable, answer cache disabled", "addr", opts.Cache.Addr, "error", err.Error())
			_ = redisClient.Close()
			redisClient = nil
		} else {
			answerCache = biz.NewAnswerCache(redisClient, biz.AnswerCacheConfig{
				Enabled:   true,
				TTL:       opts.Cache.TTL,
				KeyPrefix: opts.Cache.KeyPrefix,
			})
			logger.Infow("answer cache enabled", "addr", opts.Cache.Addr, "ttl", opts.Cache.TTL)
		}
	}

	// 6. Build the document pipeline and the agents.
	pipeline := biz.NewPipeline(biz.PipelineConfig{
		ChunkerConfig: biz.ChunkerConfig{
			Strategy:     opts.RAG.ChunkingStrategy,
			ChunkSize:    opts.RAG.ChunkSize,
			ChunkOverlap: opts.RAG.ChunkOverlap,
		},
		ExtractMetadata: opts.RAG.ExtractMetadata,
	})

	indexer, err := biz.NewIndexer(pipeline, vectorStore, opts.RAG.IndexWorkers)
	if err != nil {
		_ = milvusClient.Close(ctx)
		return nil, fmt.Errorf("failed to create indexer: %w", err)
	}

	reranker := biz.NewReranker(llmClient, biz.RerankerConfig{CallTimeout: opts.RAG.RerankTimeout})
	retriever := biz.NewRetriever(vectorStore, reranker, biz.RetrieverConfig{
		Strategies:      opts.RAG.Strategies,
		EnableReranking: opts.RAG.EnableReranking,
		MaxResults:      opts.RAG.MaxResults,
	})
	ragRouter := biz.NewRouter(llmClient, biz.RouterConfig{ConfidenceThreshold: opts.RAG.ConfidenceThreshold})
	analyzer := biz.NewAnalyzer(llmClient, biz.AnalyzerConfig{
		GenerateVariations: opts.RAG.GenerateVariations,
		MaxVariations:      opts.RAG.MaxVariations,
	})
	synthesizer := biz.NewSynthesizer(llmClient, biz.SynthesizerConfig{
		IncludeCitations: opts.RAG.IncludeCitations,
		MaxContextChunks: opts.RAG.MaxContextChunks,
	})

	service := biz.NewService(ragRouter, analyzer, retriever, synthesizer, indexer, vectorStore, answerCache, biz.ServiceConfig{
		HistorySize: opts.RAG.HistorySize,
	})

	// 7. Build the HTTP server.
	gin.SetMode(opts.Server.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	router.Register(engine, handler.NewRAGHandler(service))

	httpSrv := &http.Server{
		Addr:        opts.Server.Addr,
		Handler:     engine,
		ReadTimeout: opts.Server.ReadTimeout,
	}

	logger.Infow("RAG service is ready",
		"addr", opts.Server.Addr,
		"embed_model", opts.Ollama.EmbedModel,
		"chat_model", opts.Ollama.ChatModel,
		"collection", opts.RAG.Collection,
	)

	return &Server{
		httpSrv:      httpSrv,
		service:      service,
		opts:         opts,
		milvusClient: milvusClient,
		redisClient:  redisClient,
	}, nil
}

// Run starts the HTTP server and blocks until a termination signal, then
// shuts down gracefully and releases backing resources.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.close()
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.Server.ShutdownTimeout)
	defer cancel()

	err := s.httpSrv.Shutdown(shutdownCtx)
	s.close()
	return err
}

func (s *Server) close() {
	s.service.Close()
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			logger.Warnw("failed to close redis client", "error", err.Error())
		}
	}
	if err := s.milvusClient.Close(context.Background()); err != nil {
		logger.Warnw("failed to close milvus client", "error", err.Error())
	}
}
