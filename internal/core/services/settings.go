package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySynthesizer      = "synthesizer.kind"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDims        = "embedding.dimensions"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyQAProvider       = "qa.provider"
	keyQAModel          = "qa.model"
	keyQABaseURL        = "qa.base_url"
	keyQAAPIKey         = "qa.api_key"
	keyIndexMetric      = "index.metric"
	keyIndexBackend     = "index.backend"
	keyIndexPath        = "index.path"
	keyAnswerMaxTokens  = "generation.answer_max_tokens"
	keySummaryMaxTokens = "generation.summary_max_tokens"
	keySummaryChars     = "generation.summary_chars"
)

// Environment variables consulted when no API key is configured.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvAnthropicKey   = "ANTHROPIC_API_KEY"
	EnvHuggingFaceKey = "HF_API_TOKEN"
)

const defaultOllamaURL = "http://localhost:11434"

// valueParser converts a command-line string into a typed config value.
type valueParser func(string) (any, error)

// settableKeys lists every key SetValue accepts with its parser.
var settableKeys = map[string]valueParser{
	keySynthesizer:      enumParser(func(v string) bool { return domain.SynthesizerKind(v).IsValid() }),
	keyEmbedProvider:    enumParser(func(v string) bool { return domain.AIProvider(v).IsValid() }),
	keyEmbedModel:       stringParser,
	keyEmbedBaseURL:     stringParser,
	keyEmbedAPIKey:      stringParser,
	keyEmbedDims:        intParser,
	keyLLMProvider:      enumParser(func(v string) bool { return domain.AIProvider(v).IsValid() }),
	keyLLMModel:         stringParser,
	keyLLMBaseURL:       stringParser,
	keyLLMAPIKey:        stringParser,
	keyQAProvider:       enumParser(func(v string) bool { return domain.QAProvider(v).IsValid() }),
	keyQAModel:          stringParser,
	keyQABaseURL:        stringParser,
	keyQAAPIKey:         stringParser,
	keyIndexMetric:      enumParser(func(v string) bool { return domain.DistanceMetric(v).IsValid() }),
	keyIndexBackend:     enumParser(func(v string) bool { return domain.StoreBackend(v).IsValid() }),
	keyIndexPath:        stringParser,
	keyAnswerMaxTokens:  intParser,
	keySummaryMaxTokens: intParser,
	keySummaryChars:     intParser,
}

func stringParser(v string) (any, error) {
	return v, nil
}

func intParser(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%q is not a positive integer", v)
	}
	return n, nil
}

func enumParser(valid func(string) bool) valueParser {
	return func(v string) (any, error) {
		if !valid(v) {
			return nil, fmt.Errorf("unknown value %q", v)
		}
		return v, nil
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Empty API keys fall back to the provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Synthesizer: getEnum(s, keySynthesizer, defaults.Synthesizer),
		Embedding: domain.EmbeddingSettings{
			Provider:   getEnum(s, keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDims),
		},
		LLM: domain.LLMSettings{
			Provider: getEnum(s, keyLLMProvider, defaults.LLM.Provider),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		QA: domain.QASettings{
			Provider: getEnum(s, keyQAProvider, defaults.QA.Provider),
			BaseURL:  s.configStore.GetString(keyQABaseURL),
			APIKey:   s.configStore.GetString(keyQAAPIKey),
		},
		Index: domain.IndexSettings{
			Metric:  getEnum(s, keyIndexMetric, defaults.Index.Metric),
			Backend: getEnum(s, keyIndexBackend, defaults.Index.Backend),
			Path:    s.configStore.GetString(keyIndexPath),
		},
		Generation: domain.GenerationSettings{
			AnswerMaxTokens:  s.getInt(keyAnswerMaxTokens, defaults.Generation.AnswerMaxTokens),
			SummaryMaxTokens: s.getInt(keySummaryMaxTokens, defaults.Generation.SummaryMaxTokens),
			SummaryChars:     s.getInt(keySummaryChars, defaults.Generation.SummaryChars),
		},
	}

	// Models default per provider, so a provider switch picks a sensible model
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])
	settings.QA.Model = s.configStore.GetString(keyQAModel)
	if settings.QA.Model == "" && settings.QA.Provider == domain.QAProviderHuggingFace {
		settings.QA.Model = domain.DefaultQAModel
	}

	if settings.Embedding.Dimensions == 0 {
		settings.Embedding.Dimensions = domain.EmbeddingDimensions()[settings.Embedding.Model]
	}
	if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaURL
	}
	if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultOllamaURL
	}

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envKey(settings.LLM.Provider)
	}
	if settings.QA.APIKey == "" && settings.QA.Provider == domain.QAProviderHuggingFace {
		settings.QA.APIKey = s.getenv(EnvHuggingFaceKey)
	}

	return settings, nil
}

// envKey returns the environment API key for provider, if any.
func (s *SettingsService) envKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicKey)
	default:
		return ""
	}
}

// Save persists application settings.
// API keys are only written when set, so environment keys never leak into
// the config file through a Get/Save round trip.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keySynthesizer, settings.Synthesizer.String()},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyQAProvider, settings.QA.Provider.String()},
		{keyQAModel, settings.QA.Model},
		{keyQABaseURL, settings.QA.BaseURL},
		{keyIndexMetric, settings.Index.Metric.String()},
		{keyIndexBackend, settings.Index.Backend.String()},
		{keyIndexPath, settings.Index.Path},
		{keyAnswerMaxTokens, settings.Generation.AnswerMaxTokens},
		{keySummaryMaxTokens, settings.Generation.SummaryMaxTokens},
		{keySummaryChars, settings.Generation.SummaryChars},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := []struct {
		key, value, env string
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey, s.envKey(settings.Embedding.Provider)},
		{keyLLMAPIKey, settings.LLM.APIKey, s.envKey(settings.LLM.Provider)},
		{keyQAAPIKey, settings.QA.APIKey, s.getenv(EnvHuggingFaceKey)},
	}
	for _, sec := range secrets {
		if sec.value == "" || sec.value == sec.env {
			continue
		}
		if err := s.configStore.Set(sec.key, sec.value); err != nil {
			return fmt.Errorf("save %s: %w", sec.key, err)
		}
	}

	return nil
}

// SetValue parses and stores a single setting by key.
func (s *SettingsService) SetValue(key, value string) error {
	parse, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	parsed, err := parse(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every settable key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetSynthesizer selects the answer strategy.
func (s *SettingsService) SetSynthesizer(kind domain.SynthesizerKind) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: synthesizer %q", domain.ErrInvalidInput, kind)
	}
	return s.configStore.Set(keySynthesizer, kind.String())
}

// SetEmbeddingProvider configures the embedding provider.
// Changing the embedding model invalidates any existing index; callers
// should re-ingest with replace afterwards.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: embedding provider %q", domain.ErrInvalidInput, provider)
	}
	if !containsProvider(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = ""
	if provider == domain.AIProviderOllama {
		settings.Embedding.BaseURL = defaultOllamaURL
	}
	settings.Embedding.APIKey = apiKey
	settings.Embedding.Dimensions = domain.EmbeddingDimensions()[settings.Embedding.Model]

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() || !containsProvider(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("%w: LLM provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = ""
	if provider == domain.AIProviderOllama {
		settings.LLM.BaseURL = defaultOllamaURL
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetQAProvider configures the extractive question answering backend.
func (s *SettingsService) SetQAProvider(provider domain.QAProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: QA provider %q", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.QA.Provider = provider
	settings.QA.Model = model
	if model == "" && provider == domain.QAProviderHuggingFace {
		settings.QA.Model = domain.DefaultQAModel
	}
	settings.QA.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks if current settings are usable for the chosen synthesizer.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Synthesizer.IsValid() {
		return fmt.Errorf("%w: synthesizer %q", domain.ErrInvalidInput, settings.Synthesizer)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is not fully configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}

	switch settings.Synthesizer {
	case domain.SynthesizerGenerative:
		if !settings.LLM.IsConfigured() {
			return fmt.Errorf("%w: synthesizer %q requires an LLM provider",
				domain.ErrLLMUnavailable, settings.Synthesizer.Description())
		}
	case domain.SynthesizerExtractive:
		if !settings.QA.IsConfigured() {
			return fmt.Errorf("%w: synthesizer %q requires a QA provider",
				domain.ErrQAUnavailable, settings.Synthesizer.Description())
		}
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

// enumValue is satisfied by every string-backed settings enum.
type enumValue interface {
	~string
	IsValid() bool
}

// getEnum reads key as E, falling back to defaultVal when unset or invalid.
func getEnum[E enumValue](s *SettingsService, key string, defaultVal E) E {
	val := E(s.configStore.GetString(key))
	if val == "" || !val.IsValid() {
		return defaultVal
	}
	return val
}

func containsProvider(providers []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range providers {
		if candidate == p {
			return true
		}
	}
	return false
}
