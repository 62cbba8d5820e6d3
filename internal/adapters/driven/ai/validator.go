package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator builds throwaway providers from settings and pings them.
// Embedding caches are never built for validation.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator returns a validator that waits pingTimeout per provider.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings, -1)
	if err != nil {
		return err
	}
	defer svc.Close()
	return v.check(svc, domain.ErrEmbeddingUnavailable)
}

// ValidateLLM accepts an unset LLM; only the generative synthesizer needs one.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()
	return v.check(svc, domain.ErrLLMUnavailable)
}

// ValidateQA pings remote extractive backends. The lexical picker always passes.
func (v *ConfigValidator) ValidateQA(settings *domain.QASettings) error {
	qa, err := CreateQuestionAnswerer(settings)
	if err != nil {
		return err
	}
	if p, ok := qa.(pinger); ok {
		return v.check(p, domain.ErrQAUnavailable)
	}
	return nil
}

func (v *ConfigValidator) check(p pinger, sentinel error) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return unreachable(sentinel, err)
	}
	return nil
}

// unreachable wraps a failed ping in the provider's sentinel.
func unreachable(sentinel, err error) error {
	return fmt.Errorf("%w: service unreachable (%w). %s", sentinel, err, fixHint)
}
