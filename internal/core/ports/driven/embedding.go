package driven

import "context"

// EmbeddingService maps text to vectors. Documents and queries of one index
// must go through the same service and model, otherwise distances are
// meaningless; the vector index enforces this through Dimensions.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns exactly one vector per text, in order, or an error.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the length of every vector this service returns.
	Dimensions() int

	ModelName() string

	// Ping checks the provider is reachable and the model exists.
	Ping(ctx context.Context) error

	Close() error
}
