package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/logger"
)

// Ensure both synthesizers implement the interface.
var (
	_ driven.AnswerSynthesizer = (*ExtractiveSynthesizer)(nil)
	_ driven.AnswerSynthesizer = (*GenerativeSynthesizer)(nil)
)

const ellipsis = "..."

// Default prompts used when no PromptStore is configured.
const (
	defaultAnswerPrompt    = "Provide a detailed answer to the question: '%s' based on the following context:\n\n%s"
	defaultSummarisePrompt = "Summarize the following text:\n\n%s"
)

// SynthesisOptions bounds synthesizer output.
type SynthesisOptions struct {
	// AnswerMaxTokens is the generative answer budget.
	AnswerMaxTokens int

	// SummaryMaxTokens is the generative summary budget.
	SummaryMaxTokens int

	// SummaryChars is the extractive summary length in characters.
	SummaryChars int
}

// DefaultSynthesisOptions returns the standard budgets.
func DefaultSynthesisOptions() SynthesisOptions {
	return SynthesisOptions{
		AnswerMaxTokens:  domain.DefaultAnswerMaxTokens,
		SummaryMaxTokens: domain.DefaultSummaryMaxTokens,
		SummaryChars:     domain.DefaultSummaryChars,
	}
}

// NewSynthesizer selects the synthesizer for kind. Only the backend that
// kind needs must be non-nil.
func NewSynthesizer(
	kind domain.SynthesizerKind,
	qa driven.QuestionAnswerer,
	llm driven.LLMService,
	prompts driven.PromptStore,
	opts SynthesisOptions,
) (driven.AnswerSynthesizer, error) {
	switch kind {
	case domain.SynthesizerExtractive:
		if qa == nil {
			return nil, domain.ErrQAUnavailable
		}
		return NewExtractiveSynthesizer(qa, opts.SummaryChars), nil
	case domain.SynthesizerGenerative:
		if llm == nil {
			return nil, domain.ErrLLMUnavailable
		}
		return NewGenerativeSynthesizer(llm, prompts, opts), nil
	default:
		return nil, fmt.Errorf("%w: synthesizer %q", domain.ErrUnsupportedType, kind)
	}
}

// ExtractiveSynthesizer answers by selecting a span of the context and
// summarises by truncating the context.
type ExtractiveSynthesizer struct {
	qa           driven.QuestionAnswerer
	summaryChars int
}

// NewExtractiveSynthesizer creates an extractive synthesizer.
// A non-positive summaryChars uses the default length.
func NewExtractiveSynthesizer(qa driven.QuestionAnswerer, summaryChars int) *ExtractiveSynthesizer {
	if summaryChars <= 0 {
		summaryChars = domain.DefaultSummaryChars
	}
	return &ExtractiveSynthesizer{qa: qa, summaryChars: summaryChars}
}

// Kind returns domain.SynthesizerExtractive.
func (s *ExtractiveSynthesizer) Kind() domain.SynthesizerKind {
	return domain.SynthesizerExtractive
}

// Synthesize extracts the answer span for query from contextText.
func (s *ExtractiveSynthesizer) Synthesize(
	ctx context.Context, query, contextText string,
) (domain.Synthesis, error) {
	logger.Debug("Extracting answer with %s", s.qa.ModelName())
	extracted, err := s.qa.Answer(ctx, query, contextText)
	if err != nil {
		return domain.Synthesis{}, fmt.Errorf("%w: extract answer: %w", domain.ErrSynthesis, err)
	}
	logger.Debug("Extracted span [%d:%d] score=%.3f", extracted.Start, extracted.End, extracted.Score)

	return domain.Synthesis{
		Answer:  extracted.Text,
		Summary: truncateSummary(contextText, s.summaryChars),
	}, nil
}

// truncateSummary returns the first n characters of text, followed by an
// ellipsis when anything was cut.
func truncateSummary(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + ellipsis
}

// GenerativeSynthesizer answers and summarises with two independent LLM
// completions.
type GenerativeSynthesizer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	opts    SynthesisOptions
}

// NewGenerativeSynthesizer creates a generative synthesizer.
// prompts may be nil, in which case built-in prompts are used.
func NewGenerativeSynthesizer(
	llm driven.LLMService, prompts driven.PromptStore, opts SynthesisOptions,
) *GenerativeSynthesizer {
	defaults := DefaultSynthesisOptions()
	if opts.AnswerMaxTokens <= 0 {
		opts.AnswerMaxTokens = defaults.AnswerMaxTokens
	}
	if opts.SummaryMaxTokens <= 0 {
		opts.SummaryMaxTokens = defaults.SummaryMaxTokens
	}
	return &GenerativeSynthesizer{llm: llm, prompts: prompts, opts: opts}
}

// Kind returns domain.SynthesizerGenerative.
func (s *GenerativeSynthesizer) Kind() domain.SynthesizerKind {
	return domain.SynthesizerGenerative
}

// Synthesize prompts the LLM once for the answer and once for the summary.
func (s *GenerativeSynthesizer) Synthesize(
	ctx context.Context, query, contextText string,
) (domain.Synthesis, error) {
	answerPrompt := fmt.Sprintf(s.loadPrompt(driven.PromptAnswer, defaultAnswerPrompt), query, contextText)
	summaryPrompt := fmt.Sprintf(s.loadPrompt(driven.PromptSummarise, defaultSummarisePrompt), contextText)

	logger.Debug("Generating answer with %s (max %d tokens)", s.llm.ModelName(), s.opts.AnswerMaxTokens)
	answer, err := s.llm.Generate(ctx, answerPrompt, driven.GenerateOptions{MaxTokens: s.opts.AnswerMaxTokens})
	if err != nil {
		return domain.Synthesis{}, fmt.Errorf("%w: generate answer: %w", domain.ErrSynthesis, err)
	}

	logger.Debug("Generating summary (max %d tokens)", s.opts.SummaryMaxTokens)
	summary, err := s.llm.Generate(ctx, summaryPrompt, driven.GenerateOptions{MaxTokens: s.opts.SummaryMaxTokens})
	if err != nil {
		return domain.Synthesis{}, fmt.Errorf("%w: generate summary: %w", domain.ErrSynthesis, err)
	}

	return domain.Synthesis{
		Answer:  strings.TrimSpace(answer),
		Summary: strings.TrimSpace(summary),
	}, nil
}

func (s *GenerativeSynthesizer) loadPrompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	prompt, err := s.prompts.Load(name)
	if err != nil || prompt == "" {
		logger.Warn("Prompt %q unavailable, using built-in default: %v", name, err)
		return fallback
	}
	return prompt
}
