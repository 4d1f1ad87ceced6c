package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/barwojcik/local-chatbots/internal/pkg/rag/textutil"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "collapse excessive newlines",
			input:    "first\n\n\n\nsecond",
			expected: "first\n\nsecond",
		},
		{
			name:     "preserve double newlines",
			input:    "first\n\nsecond",
			expected: "first\n\nsecond",
		},
		{
			name:     "collapse repeated spaces",
			input:    "too    many   spaces",
			expected: "too many spaces",
		},
		{
			name:     "trim surrounding whitespace",
			input:    "  \n padded \n ",
			expected: "padded",
		},
		{
			name:     "whitespace only becomes empty",
			input:    " \n\n \t ",
			expected: "",
		},
		{
			name:     "clean text unchanged",
			input:    "already clean",
			expected: "already clean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := textutil.CleanText(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{
		"a\n\n\n\nb   c",
		"  spaced   out  \n\n\n",
		"plain",
	}
	for _, input := range inputs {
		once := textutil.CleanText(input)
		twice := textutil.CleanText(once)
		assert.Equal(t, once, twice)
	}
}

func TestHashString(t *testing.T) {
	hash1 := textutil.HashString("test")
	hash2 := textutil.HashString("test")
	assert.Equal(t, hash1, hash2)

	hash3 := textutil.HashString("different")
	assert.NotEqual(t, hash1, hash3)

	// SHA-256 hex digest is 64 characters.
	assert.Len(t, hash1, 64)
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "shorter than limit",
			input:    "hello",
			maxLen:   10,
			expected: "hello",
		},
		{
			name:     "equal to limit",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "longer than limit",
			input:    "hello world",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "multibyte characters",
			input:    "你好世界",
			maxLen:   2,
			expected: "你好",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := textutil.TruncateString(tt.input, tt.maxLen)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestQueryKeywords(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			name:     "short words dropped",
			query:    "What is the Transformer model",
			expected: []string{"what", "transformer", "model"},
		},
		{
			name:     "all short words",
			query:    "is it ok",
			expected: nil,
		},
		{
			name:     "empty query",
			query:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := textutil.QueryKeywords(tt.query)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestKeywordScore(t *testing.T) {
	content := "The transformer model uses attention. Attention is all you need."
	assert.Equal(t, 2, textutil.KeywordScore(content, []string{"attention", "transformer"}))
	assert.Equal(t, 0, textutil.KeywordScore(content, []string{"convolution"}))
	assert.Equal(t, 0, textutil.KeywordScore(content, nil))
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		shouldError bool
	}{
		{
			name:        "bare object",
			input:       `{"needs_retrieval": true, "confidence": 0.9}`,
			shouldError: false,
		},
		{
			name:        "object wrapped in prose",
			input:       "Sure! Here is the decision:\n{\"needs_retrieval\": false, \"confidence\": 0.8}\nHope that helps.",
			shouldError: false,
		},
		{
			name:        "no object at all",
			input:       "I cannot answer that.",
			shouldError: true,
		},
		{
			name:        "malformed object",
			input:       `{"needs_retrieval": `,
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				NeedsRetrieval bool    `json:"needs_retrieval"`
				Confidence     float64 `json:"confidence"`
			}
			err := textutil.ExtractJSONObject(tt.input, &out)
			if tt.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	result, err := textutil.ExtractJSONArray(`Variations: ["what is rag", "explain rag"]`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"what is rag", "explain rag"}, result)

	_, err = textutil.ExtractJSONArray("no array here")
	assert.Error(t, err)
}

func TestContainsAny(t *testing.T) {
	markers := []string{"table", "figure", "chart", "graph"}

	assert.True(t, textutil.ContainsAny("See Table 3 for results", markers))
	assert.True(t, textutil.ContainsAny("the FIGURE below", markers))
	assert.False(t, textutil.ContainsAny("plain prose paragraph", markers))
	assert.False(t, textutil.ContainsAny("", markers))
}
