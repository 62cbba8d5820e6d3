package driven

import (
	"context"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// NormaliserRegistry dispatches a fetched document to the highest-priority
// normaliser registered for its MIME type. Parameters such as charset are
// ignored when matching.
type NormaliserRegistry interface {
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.LoadedDocument, error)
	Register(normaliser Normaliser)

	// SupportedMIMETypes is what the loader accepts; other responses are skipped.
	SupportedMIMETypes() []string
}
