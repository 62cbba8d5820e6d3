package driven

import (
	"context"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// AnswerSynthesizer turns a query and one retrieved document's content into
// an answer and a summary. Backend failures are returned wrapped in
// domain.ErrSynthesis; there are no retries.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, query, contextText string) (domain.Synthesis, error)

	// Kind reports which strategy this synthesizer implements.
	Kind() domain.SynthesizerKind
}
