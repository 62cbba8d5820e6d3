// Package ai provides factory functions that turn settings into driven adapters.
package ai

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/custodia-labs/scheme-research/internal/adapters/driven/embedding/cache"
	"github.com/custodia-labs/scheme-research/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/scheme-research/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/scheme-research/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/scheme-research/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/scheme-research/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/scheme-research/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/scheme-research/internal/adapters/driven/loader/web"
	"github.com/custodia-labs/scheme-research/internal/adapters/driven/qa/huggingface"
	"github.com/custodia-labs/scheme-research/internal/adapters/driven/qa/lexical"
	filestore "github.com/custodia-labs/scheme-research/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/scheme-research/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/scheme-research/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/core/services"
	"github.com/custodia-labs/scheme-research/internal/logger"
	"github.com/custodia-labs/scheme-research/internal/normalisers"
	"github.com/custodia-labs/scheme-research/internal/normalisers/docx"
	"github.com/custodia-labs/scheme-research/internal/normalisers/html"
	"github.com/custodia-labs/scheme-research/internal/normalisers/markdown"
	"github.com/custodia-labs/scheme-research/internal/normalisers/pdf"
	"github.com/custodia-labs/scheme-research/internal/normalisers/plaintext"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint is appended to provider errors.
const fixHint = "Run 'scheme-research settings show' to review the configuration"

// pinger is implemented by every remote adapter.
type pinger interface {
	Ping(ctx context.Context) error
}

// Options controls how services are assembled.
type Options struct {
	// DataDir is where store files go when the settings give no path.
	DataDir string

	// Prompts supplies generative prompt templates. May be nil.
	Prompts driven.PromptStore

	// Validate pings remote providers before returning them.
	Validate bool

	// CacheSize is the query-embedding cache size. Zero uses the default;
	// negative disables the cache.
	CacheSize int

	// Loader overrides the web loader configuration.
	Loader web.Config
}

// Services is the set of driven adapters one retrieval session needs.
type Services struct {
	Embedding   driven.EmbeddingService
	LLM         driven.LLMService       // Set only for the generative synthesizer.
	QA          driven.QuestionAnswerer // Set only for the extractive synthesizer.
	Synthesizer driven.AnswerSynthesizer
	Store       driven.IndexStore
	Loader      driven.DocumentLoader
}

// Close releases all resources held by the services.
func (s *Services) Close() {
	if s.Embedding != nil {
		s.Embedding.Close()
	}
	if s.LLM != nil {
		s.LLM.Close()
	}
	if c, ok := s.Store.(io.Closer); ok {
		c.Close()
	}
}

// Build creates every adapter the settings call for. On error anything
// already created is released.
func Build(settings *domain.AppSettings, opts Options) (_ *Services, err error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}

	svc := &Services{}
	defer func() {
		if err != nil {
			svc.Close()
		}
	}()

	svc.Embedding, err = CreateEmbeddingService(&settings.Embedding, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	if opts.Validate {
		if err := ping(svc.Embedding); err != nil {
			return nil, unreachable(domain.ErrEmbeddingUnavailable, err)
		}
	}

	switch settings.Synthesizer {
	case domain.SynthesizerGenerative:
		svc.LLM, err = CreateLLMService(&settings.LLM)
		if err != nil {
			return nil, err
		}
		if opts.Validate {
			if err := ping(svc.LLM); err != nil {
				return nil, unreachable(domain.ErrLLMUnavailable, err)
			}
		}
	case domain.SynthesizerExtractive:
		svc.QA, err = CreateQuestionAnswerer(&settings.QA)
		if err != nil {
			return nil, err
		}
		if opts.Validate {
			if p, ok := svc.QA.(pinger); ok {
				if err := ping(p); err != nil {
					return nil, unreachable(domain.ErrQAUnavailable, err)
				}
			}
		}
	}

	svc.Synthesizer, err = services.NewSynthesizer(settings.Synthesizer, svc.QA, svc.LLM, opts.Prompts,
		services.SynthesisOptions{
			AnswerMaxTokens:  settings.Generation.AnswerMaxTokens,
			SummaryMaxTokens: settings.Generation.SummaryMaxTokens,
			SummaryChars:     settings.Generation.SummaryChars,
		})
	if err != nil {
		return nil, err
	}

	svc.Store, err = CreateIndexStore(&settings.Index, opts.DataDir)
	if err != nil {
		return nil, err
	}

	svc.Loader, err = CreateLoader(opts.Loader)
	if err != nil {
		return nil, err
	}

	logger.Debug("embedding=%s synthesizer=%s store=%s", svc.Embedding.ModelName(), settings.Synthesizer, svc.Store.Path())
	return svc, nil
}

// CreateEmbeddingService creates the embedding service for settings, wrapped
// in a query cache unless cacheSize is negative.
func CreateEmbeddingService(settings *domain.EmbeddingSettings, cacheSize int) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrEmbeddingUnavailable)
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use local, ollama or openai",
			domain.ErrEmbeddingUnavailable)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider %q is not fully configured. %s",
			domain.ErrEmbeddingUnavailable, settings.Provider, fixHint)
	}

	var inner driven.EmbeddingService
	switch settings.Provider {
	case domain.AIProviderLocal:
		inner = hashing.NewEmbeddingService(settings.Dimensions)

	case domain.AIProviderOllama:
		inner = createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		svc, err := createOpenAIEmbedding(settings)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		inner = svc

	default:
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
	}

	if cacheSize < 0 {
		return inner, nil
	}
	if cacheSize == 0 {
		cacheSize = cache.DefaultSize
	}
	cached, err := cache.New(inner, cacheSize)
	if err != nil {
		inner.Close()
		return nil, err
	}
	return cached, nil
}

// CreateLLMService creates the LLM service for settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		provider := domain.AIProvider("")
		if settings != nil {
			provider = settings.Provider
		}
		return nil, fmt.Errorf("%w: provider %q is not fully configured. %s",
			domain.ErrLLMUnavailable, provider, fixHint)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		svc, err := createOpenAILLM(settings)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
		return svc, nil

	case domain.AIProviderAnthropic:
		svc, err := createAnthropicLLM(settings)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateQuestionAnswerer creates the extractive QA backend for settings.
func CreateQuestionAnswerer(settings *domain.QASettings) (driven.QuestionAnswerer, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: no QA provider configured. %s", domain.ErrQAUnavailable, fixHint)
	}

	switch settings.Provider {
	case domain.QAProviderLexical:
		return lexical.New(), nil

	case domain.QAProviderHuggingFace:
		return huggingface.New(huggingface.Config{
			APIToken: settings.APIKey,
			BaseURL:  settings.BaseURL,
			Model:    settings.Model,
		}), nil

	default:
		return nil, fmt.Errorf("%w: QA provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateIndexStore creates the persistence backend. An empty settings path
// puts the store under dataDir, or the backend's own default when dataDir
// is empty too.
func CreateIndexStore(settings *domain.IndexSettings, dataDir string) (driven.IndexStore, error) {
	backend := domain.StoreBackendFile
	path := ""
	if settings != nil {
		if settings.Backend != "" {
			backend = settings.Backend
		}
		path = settings.Path
	}

	switch backend {
	case domain.StoreBackendFile:
		if path == "" && dataDir != "" {
			path = filepath.Join(dataDir, filestore.DefaultFileName)
		}
		return filestore.NewIndexStore(path)

	case domain.StoreBackendSQLite:
		if path == "" && dataDir != "" {
			path = filepath.Join(dataDir, sqlite.DefaultFileName)
		}
		return sqlite.NewIndexStore(path)

	case domain.StoreBackendMemory:
		return memory.NewIndexStore(), nil

	default:
		return nil, fmt.Errorf("%w: store backend %s", domain.ErrUnsupportedType, backend)
	}
}

// CreateNormaliserRegistry returns a registry with every built-in normaliser.
func CreateNormaliserRegistry() *normalisers.Registry {
	registry := normalisers.NewRegistry()
	registry.Register(html.New())
	registry.Register(markdown.New())
	registry.Register(pdf.New())
	registry.Register(docx.New())
	registry.Register(plaintext.New())
	return registry
}

// CreateLoader creates the web document loader.
func CreateLoader(cfg web.Config) (driven.DocumentLoader, error) {
	return web.New(cfg, CreateNormaliserRegistry())
}

// ping checks connectivity within pingTimeout.
func ping(p pinger) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
