package driving

import (
	"context"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// RetrievalService is the question answering session exposed to every
// front end. One instance owns one index and one chat history.
type RetrievalService interface {
	// Ingest loads, embeds and indexes the given URLs, then persists the index.
	// On error neither the in-memory index nor the persisted store changes.
	Ingest(ctx context.Context, urls []string, mode domain.IngestMode) (*domain.IngestReport, error)

	// Answer retrieves the nearest document for query and synthesizes a turn.
	// Successful turns are appended to the history.
	Answer(ctx context.Context, query string) (domain.ChatTurn, error)

	// Save persists the current index.
	Save(ctx context.Context) error

	// Load restores the index from the store. It reports false, with a nil
	// error, when nothing has been stored yet.
	Load(ctx context.Context) (bool, error)

	// History returns the turns answered so far, oldest first.
	History() []domain.ChatTurn

	// IndexSize returns the number of indexed documents.
	IndexSize() int

	// Documents returns the indexed documents in insertion order.
	Documents() []domain.Document

	// StorePath returns where the index is persisted.
	StorePath() string
}
