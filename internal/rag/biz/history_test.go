package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barwojcik/local-chatbots/pkg/llm"
)

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(4)

	for i := 0; i < 3; i++ {
		h.Append(llm.RoleUser, "q")
		h.Append(llm.RoleAssistant, "a")
	}

	assert.Equal(t, 4, h.Len())
	messages := h.Messages()
	require.Len(t, messages, 4)
	assert.Equal(t, llm.RoleUser, messages[0].Role)
	assert.Equal(t, llm.RoleAssistant, messages[3].Role)
}

func TestHistoryMessagesReturnsCopy(t *testing.T) {
	h := NewHistory(10)
	h.Append(llm.RoleUser, "original")

	messages := h.Messages()
	messages[0].Content = "mutated"

	assert.Equal(t, "original", h.Messages()[0].Content)
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(10)
	h.Append(llm.RoleUser, "q")
	h.Clear()

	assert.Zero(t, h.Len())
	assert.Empty(t, h.Messages())
}

func TestHistoryDefaultCapacity(t *testing.T) {
	h := NewHistory(0)

	for i := 0; i < 30; i++ {
		h.Append(llm.RoleUser, "q")
	}
	assert.Equal(t, 20, h.Len())
}
