// Package ollama embeds pages and questions with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/scheme-research/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 768
)

type Config struct {
	BaseURL string // default http://localhost:11434
	Model   string // default nomic-embed-text

	// Timeout bounds one batch request (default: 60s). Page-sized batches
	// on CPU can take a while.
	Timeout time.Duration

	// Dimensions is the expected vector size. Responses of any other size
	// are rejected.
	Dimensions int
}

// EmbeddingService embeds documents and queries with Ollama's /api/embed
// endpoint, one request per batch.
type EmbeddingService struct {
	client     *ollamaapi.Client
	model      string
	dimensions int
}

type embedRequest struct {
	Model    string   `json:"model"`
	Input    []string `json:"input"`
	Truncate bool     `json:"truncate"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &EmbeddingService{
		client:     ollamaapi.NewClient(cfg.BaseURL, cfg.Timeout),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds every text in a single request. Whole pages exceed
// most models' context, so the server is asked to truncate rather than fail.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var resp embedResponse
	req := embedRequest{Model: s.model, Input: texts, Truncate: true}
	if err := s.client.Post(ctx, "/api/embed", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, raw := range resp.Embeddings {
		if len(raw) != s.dimensions {
			return nil, fmt.Errorf("ollama model %s returned %d dimensions, configured for %d",
				s.model, len(raw), s.dimensions)
		}
		vec := make([]float32, len(raw))
		for j, v := range raw {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the server is up and the model has been pulled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.client.CheckModel(ctx, s.model)
}

func (s *EmbeddingService) Close() error { return nil }
