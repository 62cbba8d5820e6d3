// Package openai embeds documents and queries with the OpenAI embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/logger"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// DefaultMaxInputRunes keeps a page under the 8191 token input limit
	// with room for dense scripts that tokenise poorly.
	DefaultMaxInputRunes = 24000

	// DefaultBatchSize is well under the API's 2048 inputs per request.
	DefaultBatchSize = 256
)

// ErrMissingKey is returned when no API key is configured.
var ErrMissingKey = errors.New("openai: API key is required")

// nativeDims are the full output sizes. Only the v3 models accept a
// smaller dimensions parameter.
var nativeDims = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

type Config struct {
	APIKey string

	// BaseURL points at Azure OpenAI or another compatible endpoint.
	BaseURL string

	Model   string
	Timeout time.Duration

	// Dimensions shortens v3 vectors. Zero keeps the native size.
	Dimensions int

	MaxInputRunes int
	BatchSize     int
}

// EmbeddingService calls POST /embeddings. The SDK's retries are disabled;
// a failed batch fails the ingest as a whole.
type EmbeddingService struct {
	client     openai.Client
	model      string
	dimensions int
	sendDims   bool
	maxRunes   int
	batchSize  int
}

func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxInputRunes <= 0 {
		cfg.MaxInputRunes = DefaultMaxInputRunes
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	dims := cfg.Dimensions
	if dims == 0 {
		dims = nativeDims[cfg.Model]
	}
	if dims == 0 {
		dims = nativeDims[DefaultModel]
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &EmbeddingService{
		client:     openai.NewClient(opts...),
		model:      cfg.Model,
		dimensions: dims,
		sendDims:   cfg.Dimensions > 0 && strings.HasPrefix(cfg.Model, "text-embedding-3"),
		maxRunes:   cfg.MaxInputRunes,
		batchSize:  cfg.BatchSize,
	}, nil
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch sends texts in chunks of BatchSize and returns every vector
// or none.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))
		vecs, err := s.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (s *EmbeddingService) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = s.prepare(t)
	}

	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
		Model: openai.EmbeddingModel(s.model),
	}
	if s.sendDims {
		params.Dimensions = openai.Int(int64(s.dimensions))
	}

	resp, err := s.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: embeddings: %w", err)
	}

	// The API reports each vector's input index; order is not guaranteed.
	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		i := int(d.Index)
		if i < 0 || i >= len(vecs) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", i)
		}
		if len(d.Embedding) != s.dimensions {
			return nil, fmt.Errorf("openai: returned %d dimensions, configured for %d", len(d.Embedding), s.dimensions)
		}
		v := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			v[j] = float32(x)
		}
		vecs[i] = v
	}
	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("openai: no embedding for input %d", i)
		}
	}
	return vecs, nil
}

// prepare truncates long pages and replaces empty input, which the API rejects.
func (s *EmbeddingService) prepare(text string) string {
	if strings.TrimSpace(text) == "" {
		return " "
	}
	runes := []rune(text)
	if len(runes) <= s.maxRunes {
		return text
	}
	logger.Debug("openai: truncating input from %d to %d characters", len(runes), s.maxRunes)
	return string(runes[:s.maxRunes])
}

func (s *EmbeddingService) Dimensions() int { return s.dimensions }

func (s *EmbeddingService) ModelName() string { return s.model }

// Ping fetches the model record, which checks the key and model name
// without spending tokens.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.Get(ctx, s.model); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

func (s *EmbeddingService) Close() error { return nil }
