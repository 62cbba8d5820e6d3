// Package hashing provides a deterministic, offline embedding service based
// on feature hashing of word unigrams and bigrams.
//
// It needs no model download or network access, which makes it the default
// provider and the one the test suites rely on. Vectors are L2-normalised so
// Euclidean and cosine rankings agree.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultDimensions = 384
	ModelName         = "hashing-v1"
)

// bigramWeight scales bigram features relative to unigrams.
const bigramWeight = 0.5

// EmbeddingService embeds text by hashing tokens into a fixed-size vector.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashing embedder. A non-positive dimension
// selects DefaultDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.vector(text), nil
}

// EmbedBatch generates one embedding per input, in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = s.vector(text)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model.
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds; there is nothing to reach.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

func (s *EmbeddingService) vector(text string) []float32 {
	acc := make([]float64, s.dimensions)
	tokens := Tokenize(text)
	for i, tok := range tokens {
		s.add(acc, tok, 1)
		if i > 0 {
			s.add(acc, tokens[i-1]+" "+tok, bigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, s.dimensions)
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

// add hashes feature into a bucket. One hash bit picks the sign so that
// collisions tend to cancel rather than accumulate.
func (s *EmbeddingService) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	bucket := int(sum % uint64(s.dimensions))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	acc[bucket] += weight
}

// Tokenize lower-cases text and splits it on anything that is not a letter
// or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
