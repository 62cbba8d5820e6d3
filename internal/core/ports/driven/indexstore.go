package driven

import (
	"context"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// IndexStore persists a vector index snapshot.
//
// Save must be atomic: after a failed Save the previously stored snapshot is
// still loadable. Load returns domain.ErrStoreNotFound when nothing has been
// saved yet and domain.ErrStoreCorrupt when the stored data cannot be decoded
// or fails validation.
type IndexStore interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, snapshot *domain.IndexSnapshot) error

	// Load reads the stored snapshot.
	Load(ctx context.Context) (*domain.IndexSnapshot, error)

	// Path returns where the snapshot lives, for display.
	Path() string
}
