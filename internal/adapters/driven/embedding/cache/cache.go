// Package cache provides an LRU-caching decorator for embedding services.
//
// Chat sessions often repeat or rephrase the same questions, and remote
// embedding calls dominate query latency, so query vectors are memoised by
// their exact text.
package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultSize is the number of vectors kept when no size is given.
const DefaultSize = 1024

// EmbeddingService wraps another EmbeddingService with an LRU cache.
type EmbeddingService struct {
	inner driven.EmbeddingService
	cache *lru.Cache[string, []float32]
}

// New wraps inner with a cache of the given size.
func New(inner driven.EmbeddingService, size int) (*EmbeddingService, error) {
	if inner == nil {
		return nil, fmt.Errorf("cache: inner embedding service is nil")
	}
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &EmbeddingService{inner: inner, cache: c}, nil
}

// Embed returns the cached vector for text, embedding it on a miss.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := s.cache.Get(text); ok {
		return clone(vec), nil
	}
	vec, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Add(text, clone(vec))
	return vec, nil
}

// EmbedBatch serves hits from the cache and embeds all misses with a single
// call to the wrapped service.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if vec, ok := s.cache.Get(text); ok {
			out[i] = clone(vec)
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := s.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("cache: expected %d embeddings, got %d", len(missTexts), len(vecs))
	}
	for j, vec := range vecs {
		out[missIdx[j]] = vec
		s.cache.Add(missTexts[j], clone(vec))
	}
	return out, nil
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates to the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close purges the cache and closes the wrapped service.
func (s *EmbeddingService) Close() error {
	s.cache.Purge()
	return s.inner.Close()
}

// Len returns the number of cached vectors.
func (s *EmbeddingService) Len() int {
	return s.cache.Len()
}

func clone(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
