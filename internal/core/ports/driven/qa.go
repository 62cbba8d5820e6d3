package driven

import (
	"context"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// QuestionAnswerer extracts the span of a context passage that best answers a
// question. It never generates text that is not present in the context.
type QuestionAnswerer interface {
	// Answer returns the best span of contextText for question.
	Answer(ctx context.Context, question, contextText string) (domain.ExtractedAnswer, error)

	// ModelName returns the name of the extraction model.
	ModelName() string
}
