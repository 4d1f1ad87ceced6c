package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/barwojcik/local-chatbots/internal/model"
	"github.com/barwojcik/local-chatbots/pkg/llm"
)

const synthesizerSystemPrompt = `You are a helpful assistant that answers questions based on provided context.

Guidelines:
1. Answer based primarily on the provided context
2. If the context doesn't contain enough information, acknowledge this
3. Be accurate and precise
4. Include relevant details from the context
5. Maintain a helpful and professional tone
6. If asked to cite sources, reference the document chunks provided

If the context is insufficient, you may use your general knowledge but clearly indicate when you're doing so.`

const citationSystemPrompt = `You are a helpful assistant that answers questions based on provided context.

Guidelines:
1. Answer based primarily on the provided context
2. Include citations in the format [Source N] after statements from specific chunks
3. If the context doesn't contain enough information, acknowledge this
4. Be accurate and precise
5. Include relevant details from the context
6. Maintain a helpful and professional tone

At the end of your response, list the sources used:
---
Sources:
[Source 1] Brief description of the document chunk
[Source 2] Brief description of the document chunk
...`

const directSystemPrompt = "You are a helpful assistant. Answer questions clearly and concisely."

// SynthesizerConfig configures answer generation.
type SynthesizerConfig struct {
	// IncludeCitations switches to the citation prompt and annotates each
	// context chunk with a numbered source header.
	IncludeCitations bool
	// MaxContextChunks caps how many retrieved chunks enter the prompt.
	MaxContextChunks int
}

// Synthesizer generates the final answer from the query, the retrieved
// context and the conversation history.
type Synthesizer struct {
	chat llm.ChatProvider
	cfg  SynthesizerConfig
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(chat llm.ChatProvider, cfg SynthesizerConfig) *Synthesizer {
	return &Synthesizer{chat: chat, cfg: cfg}
}

// Synthesize answers the query using retrieved context.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, docs []model.RetrievalResult, history []llm.Message) (string, error) {
	systemPrompt := synthesizerSystemPrompt
	if s.cfg.IncludeCitations {
		systemPrompt = citationSystemPrompt
	}

	userPrompt := fmt.Sprintf(`Context from documents:
%s

---

User question: %s

Please answer the question based on the context provided above.`, s.formatContext(docs), query)

	messages := buildMessages(systemPrompt, history, userPrompt)

	answer, err := s.chat.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	logger.Info("Response generated")
	return answer, nil
}

// SynthesizeDirect answers the query without retrieved context, for queries
// routed away from retrieval.
func (s *Synthesizer) SynthesizeDirect(ctx context.Context, query string, history []llm.Message) (string, error) {
	messages := buildMessages(directSystemPrompt, history, query)

	answer, err := s.chat.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	logger.Info("Response generated without context")
	return answer, nil
}

// formatContext renders the top context chunks into a prompt section. With
// citations enabled every chunk gets a numbered source header built from its
// metadata.
func (s *Synthesizer) formatContext(docs []model.RetrievalResult) string {
	if len(docs) == 0 {
		return "No context available."
	}
	if len(docs) > s.cfg.MaxContextChunks {
		docs = docs[:s.cfg.MaxContextChunks]
	}

	parts := make([]string, 0, len(docs))
	for i, doc := range docs {
		if !s.cfg.IncludeCitations {
			parts = append(parts, doc.Content)
			continue
		}

		var sourceInfo []string
		if src, ok := doc.Metadata["source"].(string); ok && src != "" {
			sourceInfo = append(sourceInfo, "File: "+src)
		}
		if page, ok := doc.Metadata["page"]; ok {
			sourceInfo = append(sourceInfo, fmt.Sprintf("Page: %v", page))
		}
		sourceStr := "Unknown source"
		if len(sourceInfo) > 0 {
			sourceStr = strings.Join(sourceInfo, ", ")
		}
		parts = append(parts, fmt.Sprintf("[Source %d] (%s)\n%s", i+1, sourceStr, doc.Content))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// buildMessages assembles the chat transcript: system prompt, prior user and
// assistant turns, then the current prompt.
func buildMessages(systemPrompt string, history []llm.Message, userPrompt string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, msg := range history {
		if msg.Role == llm.RoleUser || msg.Role == llm.RoleAssistant {
			messages = append(messages, msg)
		}
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userPrompt})
	return messages
}
