// Package llm defines the narrow interfaces through which the RAG core
// reaches language models: embedding generation and chat completion.
// Implementations are constructed once at startup and injected into every
// component that needs them.
package llm

import "context"

// EmbeddingProvider generates vector embeddings for text.
type EmbeddingProvider interface {
	// Embed generates embeddings for a batch of texts, one vector per text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Name returns the provider name.
	Name() string
}

// ChatProvider generates text from a language model.
type ChatProvider interface {
	// Chat completes a multi-turn conversation and returns the assistant reply.
	Chat(ctx context.Context, messages []Message) (string, error)

	// Generate produces text from a single prompt with an optional system prompt.
	Generate(ctx context.Context, prompt string, systemPrompt string) (string, error)

	// Name returns the provider name.
	Name() string
}

// Provider supports both embedding and chat.
type Provider interface {
	EmbeddingProvider
	ChatProvider
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a chat conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
