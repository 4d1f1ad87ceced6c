// Package router registers the RAG HTTP routes.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/barwojcik/local-chatbots/internal/rag/handler"
)

// Register mounts the RAG routes on the engine.
func Register(engine *gin.Engine, h *handler.RAGHandler) {
	engine.GET("/healthz", h.Healthz)

	v1 := engine.Group("/v1")
	{
		v1.POST("/chat", h.Chat)
		v1.POST("/chat/stream", h.ChatStream)
		v1.POST("/documents", h.Ingest)
		v1.GET("/stats", h.Stats)
		v1.POST("/reset", h.Reset)
	}
}
