package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// Adapters wrap them with context using %w; callers test with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, backend or format.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmptyInput indicates ingestion was asked to process no URLs.
	// It is raised before any loading or embedding work begins.
	ErrEmptyInput = errors.New("no URLs provided")

	// ErrNoDocuments indicates every URL in a batch failed to load.
	ErrNoDocuments = errors.New("no documents could be loaded")

	// ErrEmbedding indicates the embedding provider failed or returned
	// an unusable result. The current operation is abandoned.
	ErrEmbedding = errors.New("embedding failed")

	// ErrSynthesis indicates the answer backend failed.
	// No chat turn is recorded for the query.
	ErrSynthesis = errors.New("answer synthesis failed")

	// ErrStoreNotFound indicates no persisted index exists yet.
	// Callers treat this as an empty index, not a failure.
	ErrStoreNotFound = errors.New("index store not found")

	// ErrStoreCorrupt indicates a persisted index exists but cannot be read.
	ErrStoreCorrupt = errors.New("index store corrupt")

	// ErrDimensionMismatch indicates a vector does not match the index dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrMetricMismatch indicates an index was asked to merge with a different metric.
	ErrMetricMismatch = errors.New("distance metric mismatch")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// The generative synthesizer cannot be used without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrQAUnavailable indicates the extractive QA service is not configured.
	ErrQAUnavailable = errors.New("question answering service unavailable")
)

// corruptf builds an ErrStoreCorrupt error with a formatted reason.
func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStoreCorrupt, fmt.Sprintf(format, args...))
}
