package biz

import (
	"context"
	"errors"
	"sync"

	"github.com/barwojcik/local-chatbots/internal/model"
	"github.com/barwojcik/local-chatbots/pkg/llm"
)

// fakeChat replays scripted responses in call order. An empty script makes
// every call fail.
type fakeChat struct {
	mu            sync.Mutex
	responses     []string
	errs          []error
	calls         [][]llm.Message
	generateCalls int
}

func (f *fakeChat) Chat(_ context.Context, messages []llm.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, messages)
	idx := len(f.calls) - 1
	if idx < len(f.errs) && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	if idx < len(f.responses) {
		return f.responses[idx], nil
	}
	return "", errors.New("no scripted response")
}

func (f *fakeChat) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	f.mu.Lock()
	f.generateCalls++
	f.mu.Unlock()

	messages := []llm.Message{{Role: llm.RoleUser, Content: prompt}}
	if systemPrompt != "" {
		messages = append([]llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}, messages...)
	}
	return f.Chat(ctx, messages)
}

func (f *fakeChat) Name() string { return "fake" }

func (f *fakeChat) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeStore is an in-memory VectorStore with scriptable search results.
type fakeStore struct {
	mu         sync.Mutex
	results    []model.RetrievalResult
	searchErr  error
	chunks     map[string][]model.Chunk
	queries    []string
	searchKs   []int
	resetCalls int
}

func newFakeStore(results ...model.RetrievalResult) *fakeStore {
	return &fakeStore{
		results: results,
		chunks:  make(map[string][]model.Chunk),
	}
}

func (f *fakeStore) Add(_ context.Context, docID string, chunks []model.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks[docID] = chunks
	return nil
}

func (f *fakeStore) Search(_ context.Context, query string, k int) ([]model.RetrievalResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, query)
	f.searchKs = append(f.searchKs, k)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	results := f.results
	if len(results) > k {
		results = results[:k]
	}
	out := make([]model.RetrievalResult, len(results))
	copy(out, results)
	return out, nil
}

func (f *fakeStore) HasDocuments(ctx context.Context) (bool, error) {
	count, err := f.Count(ctx)
	return count > 0, err
}

func (f *fakeStore) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, chunks := range f.chunks {
		count += int64(len(chunks))
	}
	count += int64(len(f.results))
	return count, nil
}

func (f *fakeStore) Reset(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalls++
	f.chunks = make(map[string][]model.Chunk)
	f.results = nil
	return nil
}

func (f *fakeStore) Close(_ context.Context) error { return nil }

func (f *fakeStore) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}
