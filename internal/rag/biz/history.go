package biz

import (
	"sync"

	"github.com/barwojcik/local-chatbots/pkg/llm"
)

// History is the bounded conversation history owned by the service. Older
// exchanges fall off the front once capacity is reached. All access goes
// through its methods; callers get copies, never the backing slice.
type History struct {
	mu       sync.Mutex
	messages []llm.Message
	capacity int
}

// NewHistory creates a history bounded to capacity messages.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 20
	}
	return &History{capacity: capacity}
}

// Append records one message, evicting the oldest if full.
func (h *History) Append(role llm.Role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, llm.Message{Role: role, Content: content})
	if len(h.messages) > h.capacity {
		h.messages = h.messages[len(h.messages)-h.capacity:]
	}
}

// Messages returns a copy of the recorded messages in order.
func (h *History) Messages() []llm.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]llm.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of recorded messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Clear drops all recorded messages.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}
