package driven

import (
	"context"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// Normaliser turns one fetched format (HTML, PDF, DOCX, ...) into a title
// and plain text.
type Normaliser interface {
	SupportedMIMETypes() []string

	// Priority orders normalisers that claim the same type. Format specific
	// normalisers use 50 and up, the plain text fallback stays below 10.
	Priority() int

	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.LoadedDocument, error)
}
