// agentic-rag serves a local agentic RAG chat API backed by Milvus and
// Ollama.
package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/barwojcik/local-chatbots/internal/rag"
)

func main() {
	rag.NewApp().Run()
}
