// Package ollama implements the llm provider interfaces against a local
// Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/barwojcik/local-chatbots/pkg/llm"
	ollamaopts "github.com/barwojcik/local-chatbots/pkg/options/ollama"
)

// Client talks to the Ollama HTTP API. It implements llm.Provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
	opts       *ollamaopts.Options
}

var _ llm.Provider = (*Client)(nil)

// New creates an Ollama client from options.
func New(opts *ollamaopts.Options) *Client {
	return &Client{
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		opts: opts,
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return "ollama" }

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed generates embeddings for the given texts.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embedResponse
	err := c.post(ctx, "/api/embed", embedRequest{
		Model: c.opts.EmbedModel,
		Input: texts,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed returned %d vectors for %d texts", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (c *Client) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Model     string      `json:"model"`
	CreatedAt string      `json:"created_at"`
	Message   llm.Message `json:"message"`
	Done      bool        `json:"done"`
}

// Chat completes a conversation and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	var resp chatResponse
	err := c.post(ctx, "/api/chat", chatRequest{
		Model:    c.opts.ChatModel,
		Messages: messages,
		Stream:   false,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	return resp.Message.Content, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	System string `json:"system,omitempty"`
}

type generateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

// Generate produces text from a single prompt.
func (c *Client) Generate(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	var resp generateResponse
	err := c.post(ctx, "/api/generate", generateRequest{
		Model:  c.opts.ChatModel,
		Prompt: prompt,
		Stream: false,
		System: systemPrompt,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	return resp.Response, nil
}

// post sends a JSON request and decodes the JSON response, retrying failed
// attempts with linear backoff. The request is rebuilt per attempt so the
// body can be re-read.
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
			if resp.StatusCode >= 500 {
				continue
			}
			return lastErr
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}
	return lastErr
}

// Ping checks that the Ollama server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping failed with status %d", resp.StatusCode)
	}
	return nil
}
