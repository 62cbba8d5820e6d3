package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/logger"
)

// Indexer turns loaded documents into indexed documents.
// Each batch is embedded with a single EmbedBatch call, so a batch is
// either fully embedded or not at all.
type Indexer struct {
	embedder driven.EmbeddingService
	now      func() time.Time
	newID    func() string
}

// NewIndexer creates an indexer backed by the given embedding service.
func NewIndexer(embedder driven.EmbeddingService) *Indexer {
	return &Indexer{
		embedder: embedder,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Embed embeds a batch of loaded documents and returns them as Documents
// with fresh IDs. Embedding failures are wrapped in domain.ErrEmbedding.
func (x *Indexer) Embed(ctx context.Context, loaded []domain.LoadedDocument) ([]domain.Document, error) {
	if len(loaded) == 0 {
		return nil, domain.ErrEmptyInput
	}
	if x.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	texts := make([]string, len(loaded))
	for i, l := range loaded {
		texts[i] = l.Content
	}

	logger.Debug("Embedding %d documents with %s", len(texts), x.embedder.ModelName())
	start := time.Now()
	vectors, err := x.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: provider returned %d vectors for %d documents",
			domain.ErrEmbedding, len(vectors), len(texts))
	}
	logger.Debug("Embedded batch in %v", time.Since(start))

	created := x.now()
	docs := make([]domain.Document, len(loaded))
	for i, l := range loaded {
		docs[i] = domain.Document{
			ID:        x.newID(),
			Source:    l.Source,
			Title:     l.Title,
			Content:   l.Content,
			Embedding: vectors[i],
			CreatedAt: created,
		}
	}
	return docs, nil
}

// Build embeds loaded and returns a fresh index holding only that batch.
func (x *Indexer) Build(
	ctx context.Context, metric domain.DistanceMetric, loaded []domain.LoadedDocument,
) (*VectorIndex, error) {
	idx, err := NewVectorIndex(metric, 0)
	if err != nil {
		return nil, err
	}
	if err := x.Add(ctx, idx, loaded); err != nil {
		return nil, err
	}
	return idx, nil
}

// Add embeds loaded and appends it to idx. Existing entries are not
// re-embedded. On error idx is unchanged.
func (x *Indexer) Add(ctx context.Context, idx *VectorIndex, loaded []domain.LoadedDocument) error {
	docs, err := x.Embed(ctx, loaded)
	if err != nil {
		return err
	}
	return idx.Add(docs)
}
