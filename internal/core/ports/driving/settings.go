package driving

import "github.com/custodia-labs/scheme-research/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetValue parses and stores a single setting by its dot-notation key.
	// Returns domain.ErrInvalidInput for unknown keys or unparsable values.
	SetValue(key, value string) error

	// Keys returns every settable key.
	Keys() []string

	// SetSynthesizer selects the answer strategy.
	SetSynthesizer(kind domain.SynthesizerKind) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetQAProvider configures the extractive question answering backend.
	SetQAProvider(provider domain.QAProvider, model, apiKey string) error

	// Validate checks if current settings are usable for the chosen synthesizer.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
