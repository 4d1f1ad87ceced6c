// Package handler provides HTTP handlers for the RAG service.
package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/barwojcik/local-chatbots/internal/model"
	"github.com/barwojcik/local-chatbots/internal/rag/biz"
)

const chatTimeout = 60 * time.Second

// RAGHandler handles RAG HTTP requests.
type RAGHandler struct {
	service *biz.Service
}

// NewRAGHandler creates a new RAGHandler.
func NewRAGHandler(service *biz.Service) *RAGHandler {
	return &RAGHandler{service: service}
}

// SuccessResponse is a standard success response.
type SuccessResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ChatRequest represents a chat request.
type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

// Chat answers one question through the full agent pipeline.
func (h *RAGHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chatTimeout)
	defer cancel()

	result, err := h.service.Chat(ctx, req.Question)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			c.JSON(http.StatusRequestTimeout, ErrorResponse{
				Code:    408,
				Message: "Chat timeout: the request took too long to process. Please try again or simplify your question.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: result})
}

// ChatStream answers one question and streams pipeline progress as
// server-sent events. Each event carries a JSON ProgressEvent; the stream
// ends with a done event.
func (h *RAGHandler) ChatStream(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chatTimeout)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	events := h.service.ChatStream(ctx, req.Question)
	c.Stream(func(_ io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent(ev.Type, ev)
		return ev.Type != model.EventDone && ev.Type != model.EventError
	})
}

// DocumentPayload is one document in an ingest request.
type DocumentPayload struct {
	Content  string         `json:"content" binding:"required"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IngestRequest represents a document ingest request.
type IngestRequest struct {
	Documents []DocumentPayload `json:"documents" binding:"required,min=1"`
	Async     bool              `json:"async,omitempty"`
}

// IngestResponse reports the result of a synchronous ingest.
type IngestResponse struct {
	DocumentIDs []string `json:"document_ids,omitempty"`
	ChunkCount  int      `json:"chunk_count,omitempty"`
	Accepted    int      `json:"accepted,omitempty"`
}

// Ingest chunks, enriches and indexes the submitted documents. With
// async set, ingestion is scheduled on the background pool and the
// request returns immediately.
func (h *RAGHandler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}

	docs := make([]model.Document, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, model.Document{Text: d.Content, Metadata: d.Metadata})
	}

	if req.Async {
		if err := h.service.IngestAsync(docs); err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, SuccessResponse{
			Code:    0,
			Message: "Documents accepted for indexing",
			Data:    IngestResponse{Accepted: len(docs)},
		})
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), docs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Code:    0,
		Message: "Documents indexed successfully",
		Data:    IngestResponse{DocumentIDs: result.DocumentIDs, ChunkCount: result.ChunkCount},
	})
}

// Stats returns knowledge base statistics.
func (h *RAGHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: stats})
}

// Reset clears the vector store, the answer cache and the conversation
// history.
func (h *RAGHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "Knowledge base reset"})
}

// Healthz reports liveness.
func (h *RAGHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
