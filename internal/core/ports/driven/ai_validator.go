package driven

import "github.com/custodia-labs/scheme-research/internal/core/domain"

// AIConfigValidator builds a provider from settings and pings it, so that
// `settings set` can reject a configuration that would fail at ask time.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM returns nil when no LLM provider is configured.
	ValidateLLM(config *domain.LLMSettings) error
}
