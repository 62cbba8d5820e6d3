package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/scheme-research/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
)

// --- Mock implementations ---

var errBackend = errors.New("backend exploded")

// testVocabulary is the feature space of keywordEmbedder.
var testVocabulary = []string{"tuition", "grant", "covers", "covered", "apply", "portal", "june"}

// keywordEmbedder counts vocabulary words, giving deterministic and
// interpretable vectors.
type keywordEmbedder struct {
	mu        sync.Mutex
	embedErr  error
	batchErr  error
	short     bool
	embeds    int
	batches   int
	batchSize []int
}

func (m *keywordEmbedder) vector(text string) []float32 {
	v := make([]float32, len(testVocabulary))
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,?!%'\"")
		for i, term := range testVocabulary {
			if word == term {
				v[i]++
			}
		}
	}
	return v
}

func (m *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embeds++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	m.batchSize = append(m.batchSize, len(texts))
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *keywordEmbedder) Dimensions() int { return len(testVocabulary) }
func (m *keywordEmbedder) ModelName() string { return "mock-keywords" }
func (m *keywordEmbedder) Ping(_ context.Context) error { return nil }
func (m *keywordEmbedder) Close() error { return nil }

// mockLoader returns canned documents; unknown URLs are skipped.
type mockLoader struct {
	docs    map[string]domain.LoadedDocument
	loadErr error
	calls   int
}

func newMockLoader(pages map[string]string) *mockLoader {
	docs := make(map[string]domain.LoadedDocument, len(pages))
	for url, content := range pages {
		docs[url] = domain.LoadedDocument{Source: url, Content: content, MIMEType: "text/plain"}
	}
	return &mockLoader{docs: docs}
}

func (m *mockLoader) Load(_ context.Context, urls []string) ([]domain.LoadedDocument, error) {
	m.calls++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	var out []domain.LoadedDocument
	for _, u := range urls {
		if d, ok := m.docs[u]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// mockQA returns the first context sentence mentioning a query keyword.
type mockQA struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (m *mockQA) Answer(_ context.Context, question, contextText string) (domain.ExtractedAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.ExtractedAnswer{}, m.err
	}
	for _, word := range strings.Fields(strings.ToLower(question)) {
		word = strings.Trim(word, "?.,")
		if len(word) < 4 {
			continue
		}
		if strings.Contains(strings.ToLower(contextText), word) {
			return domain.ExtractedAnswer{Text: contextText, Score: 0.9, Start: 0, End: len(contextText)}, nil
		}
	}
	return domain.ExtractedAnswer{Text: "", Score: 0}, nil
}

func (m *mockQA) ModelName() string { return "mock-qa" }

// mockLLMService records prompts and replies with canned text.
type mockLLMService struct {
	answer     string
	summary    string
	answerErr  error
	summaryErr error
	prompts    []string
	opts       []driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if strings.HasPrefix(prompt, "Summarize") || strings.HasPrefix(prompt, "SUM:") {
		return m.summary, m.summaryErr
	}
	return m.answer, m.answerErr
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error { return nil }

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// failingStore wraps a memory store and fails saves on demand.
type failingStore struct {
	*memory.IndexStore
	saveErr error
	loadErr error
}

func (f *failingStore) Save(ctx context.Context, s *domain.IndexSnapshot) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.IndexStore.Save(ctx, s)
}

func (f *failingStore) Load(ctx context.Context) (*domain.IndexSnapshot, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.IndexStore.Load(ctx)
}

// mockAIValidator records validation calls.
type mockAIValidator struct {
	embedErr error
	llmErr   error
	calls    int
}

func (m *mockAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	m.calls++
	return m.embedErr
}

func (m *mockAIValidator) ValidateLLM(_ *domain.LLMSettings) error {
	m.calls++
	return m.llmErr
}

// --- Fixtures ---

const (
	urlGrant  = "https://example.edu/grant"
	urlApply  = "https://example.edu/apply"
	textGrant = "The grant covers 50% of tuition"
	textApply = "Apply via the online portal by June"
)

func scenarioPages() map[string]string {
	return map[string]string{
		urlGrant: textGrant,
		urlApply: textApply,
	}
}

func doc(id string, vec ...float32) domain.Document {
	return domain.Document{ID: id, Source: "https://example.com/" + id, Content: id, Embedding: vec}
}
