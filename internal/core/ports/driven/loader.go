package driven

import (
	"context"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// DocumentLoader fetches web content and extracts its readable text.
//
// A URL that cannot be fetched or parsed is skipped: it is simply absent from
// the result and no error is returned for it. Load only returns an error when
// the whole operation cannot proceed (for example a cancelled context).
// Results preserve input order.
type DocumentLoader interface {
	Load(ctx context.Context, urls []string) ([]domain.LoadedDocument, error)
}
