// Package textutil provides text processing helpers shared by the RAG
// pipeline: chunk cleaning, keyword extraction and LLM output parsing.
package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	multiNewlineRegex = regexp.MustCompile(`\n{3,}`)
	multiSpaceRegex   = regexp.MustCompile(` {2,}`)
	jsonObjectRegex   = regexp.MustCompile(`\{[\s\S]*\}`)
	jsonArrayRegex    = regexp.MustCompile(`\[[\s\S]*\]`)
)

// CleanText normalizes chunk text: runs of three or more newlines collapse to
// exactly two, runs of two or more spaces collapse to one, and leading and
// trailing whitespace is trimmed. The operation is idempotent.
func CleanText(s string) string {
	s = multiNewlineRegex.ReplaceAllString(s, "\n\n")
	s = multiSpaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// HashString returns the hex-encoded SHA-256 digest of s.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// TruncateString truncates s to at most maxLen Unicode characters.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// QueryKeywords extracts the keywords used for lexical matching: words longer
// than three characters, lowercased. Order follows the query.
func QueryKeywords(query string) []string {
	var keywords []string
	for _, word := range strings.Fields(query) {
		if len(word) > 3 {
			keywords = append(keywords, strings.ToLower(word))
		}
	}
	return keywords
}

// KeywordScore counts how many of the keywords occur in content as
// substrings. Matching is case-insensitive; each keyword counts at most once.
func KeywordScore(content string, keywords []string) int {
	lower := strings.ToLower(content)
	score := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	return score
}

// ExtractJSONObject extracts and unmarshals the first JSON object embedded in
// s into v. LLMs frequently wrap JSON in prose or code fences, so everything
// outside the outermost braces is ignored.
func ExtractJSONObject(s string, v any) error {
	match := jsonObjectRegex.FindString(s)
	if match == "" {
		return fmt.Errorf("no JSON object found in response")
	}
	return json.Unmarshal([]byte(match), v)
}

// ExtractJSONArray extracts and parses a JSON string array embedded in s.
func ExtractJSONArray(s string) ([]string, error) {
	match := jsonArrayRegex.FindString(s)
	if match == "" {
		return nil, fmt.Errorf("no JSON array found in response")
	}
	var result []string
	if err := json.Unmarshal([]byte(match), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ContainsAny reports whether the lowercased content contains any of the
// given markers.
func ContainsAny(content string, markers []string) bool {
	lower := strings.ToLower(content)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
