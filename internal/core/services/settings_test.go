package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scheme-research/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

func newTestSettings(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	service.getenv = func(k string) string { return env[k] }
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettings(nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Synthesizer, settings.Synthesizer)
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, domain.DefaultLocalDimensions, settings.Embedding.Dimensions)
	assert.Equal(t, defaults.QA.Provider, settings.QA.Provider)
	assert.Equal(t, domain.MetricEuclidean, settings.Index.Metric)
	assert.Equal(t, domain.StoreBackendFile, settings.Index.Backend)
	assert.Equal(t, 200, settings.Generation.AnswerMaxTokens)
	assert.Equal(t, 100, settings.Generation.SummaryMaxTokens)
	assert.Equal(t, 200, settings.Generation.SummaryChars)
	assert.False(t, settings.LLM.IsConfigured())
}

func TestSettingsService_Get_StoredValues(t *testing.T) {
	service, store := newTestSettings(nil)
	_ = store.Set("synthesizer.kind", "generative")
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.model", "text-embedding-3-large")
	_ = store.Set("llm.provider", "ollama")
	_ = store.Set("index.metric", "cosine")
	_ = store.Set("index.backend", "sqlite")
	_ = store.Set("generation.summary_chars", 80)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.SynthesizerGenerative, settings.Synthesizer)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, 3072, settings.Embedding.Dimensions)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, defaultOllamaURL, settings.LLM.BaseURL)
	assert.Equal(t, domain.MetricCosine, settings.Index.Metric)
	assert.Equal(t, domain.StoreBackendSQLite, settings.Index.Backend)
	assert.Equal(t, 80, settings.Generation.SummaryChars)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	service, store := newTestSettings(nil)
	_ = store.Set("synthesizer.kind", "magic")
	_ = store.Set("embedding.provider", "invalid_provider")
	_ = store.Set("index.metric", "manhattan")

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Synthesizer, settings.Synthesizer)
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Index.Metric, settings.Index.Metric)
}

func TestSettingsService_Get_EnvironmentKeys(t *testing.T) {
	service, store := newTestSettings(map[string]string{
		EnvOpenAIKey:      "sk-env",
		EnvAnthropicKey:   "ant-env",
		EnvHuggingFaceKey: "hf-env",
	})
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("llm.provider", "anthropic")
	_ = store.Set("qa.provider", "huggingface")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "sk-env", settings.Embedding.APIKey)
	assert.Equal(t, "ant-env", settings.LLM.APIKey)
	assert.Equal(t, "hf-env", settings.QA.APIKey)
	assert.Equal(t, domain.DefaultQAModel, settings.QA.Model)
}

func TestSettingsService_Get_ConfiguredKeyWinsOverEnvironment(t *testing.T) {
	service, store := newTestSettings(map[string]string{EnvOpenAIKey: "sk-env"})
	_ = store.Set("llm.provider", "openai")
	_ = store.Set("llm.api_key", "sk-file")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "sk-file", settings.LLM.APIKey)
}

func TestSettingsService_Save_DoesNotPersistEnvironmentKeys(t *testing.T) {
	service, store := newTestSettings(map[string]string{EnvOpenAIKey: "sk-env"})
	_ = store.Set("embedding.provider", "openai")

	settings, err := service.Get()
	require.NoError(t, err)
	require.NoError(t, service.Save(settings))

	_, exists := store.Get("embedding.api_key")
	assert.False(t, exists)
	assert.Equal(t, "openai", store.GetString("embedding.provider"))
}

func TestSettingsService_SetValue(t *testing.T) {
	tests := []struct {
		key, value string
		want       any
	}{
		{"synthesizer.kind", "generative", "generative"},
		{"index.metric", "cosine", "cosine"},
		{"index.backend", "memory", "memory"},
		{"generation.answer_max_tokens", "300", 300},
		{"llm.model", "gpt-4o", "gpt-4o"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			service, store := newTestSettings(nil)
			require.NoError(t, service.SetValue(tt.key, tt.value))
			val, ok := store.Get(tt.key)
			assert.True(t, ok)
			assert.Equal(t, tt.want, val)
		})
	}
}

func TestSettingsService_SetValue_Rejects(t *testing.T) {
	service, store := newTestSettings(nil)

	assert.ErrorIs(t, service.SetValue("search.mode", "hybrid"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetValue("index.metric", "hamming"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetValue("generation.summary_chars", "-5"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetValue("generation.summary_chars", "lots"), domain.ErrInvalidInput)
	assert.Empty(t, store.Keys())
}

func TestSettingsService_Keys(t *testing.T) {
	service, _ := newTestSettings(nil)

	keys := service.Keys()

	assert.Contains(t, keys, "synthesizer.kind")
	assert.Contains(t, keys, "index.path")
	assert.IsIncreasing(t, keys)
}

func TestSettingsService_SetSynthesizer(t *testing.T) {
	service, _ := newTestSettings(nil)

	require.NoError(t, service.SetSynthesizer(domain.SynthesizerGenerative))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.SynthesizerGenerative, settings.Synthesizer)

	assert.ErrorIs(t, service.SetSynthesizer("nope"), domain.ErrInvalidInput)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	service, _ := newTestSettings(nil)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, defaultOllamaURL, settings.Embedding.BaseURL)
	assert.Equal(t, 768, settings.Embedding.Dimensions)
}

func TestSettingsService_SetEmbeddingProvider_Errors(t *testing.T) {
	service, _ := newTestSettings(nil)

	assert.ErrorIs(t, service.SetEmbeddingProvider("bogus", "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "key"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_SetEmbeddingProvider_KeyFromEnvironment(t *testing.T) {
	service, store := newTestSettings(map[string]string{EnvOpenAIKey: "sk-env"})

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""))

	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, 1536, store.GetInt("embedding.dimensions"))
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service, store := newTestSettings(nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOpenAI, "gpt-4o", "sk-test"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Equal(t, "sk-test", store.GetString("llm.api_key"))
	assert.Empty(t, settings.LLM.BaseURL)

	assert.ErrorIs(t, service.SetLLMProvider(domain.AIProviderLocal, "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_SetQAProvider(t *testing.T) {
	service, store := newTestSettings(nil)

	require.NoError(t, service.SetQAProvider(domain.QAProviderHuggingFace, "", "hf-test"))

	assert.Equal(t, "huggingface", store.GetString("qa.provider"))
	assert.Equal(t, domain.DefaultQAModel, store.GetString("qa.model"))
	assert.Equal(t, "hf-test", store.GetString("qa.api_key"))

	assert.ErrorIs(t, service.SetQAProvider("bert", "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		service, _ := newTestSettings(nil)
		assert.NoError(t, service.Validate())
	})

	t.Run("generative needs llm", func(t *testing.T) {
		service, store := newTestSettings(nil)
		_ = store.Set("synthesizer.kind", "generative")
		assert.ErrorIs(t, service.Validate(), domain.ErrLLMUnavailable)

		_ = store.Set("llm.provider", "ollama")
		assert.NoError(t, service.Validate())
	})

	t.Run("openai embedding needs key", func(t *testing.T) {
		service, store := newTestSettings(nil)
		_ = store.Set("embedding.provider", "openai")
		assert.ErrorIs(t, service.Validate(), domain.ErrEmbeddingUnavailable)
	})
}

func TestSettingsService_ValidateConfigs(t *testing.T) {
	store := memory.NewConfigStore()
	validator := &mockAIValidator{llmErr: errBackend}
	service := NewSettingsService(store, validator)

	assert.NoError(t, service.ValidateEmbeddingConfig())
	assert.ErrorIs(t, service.ValidateLLMConfig(), errBackend)
	assert.Equal(t, 2, validator.calls)

	noValidator, _ := newTestSettings(nil)
	assert.NoError(t, noValidator.ValidateLLMConfig())
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service, _ := newTestSettings(nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
