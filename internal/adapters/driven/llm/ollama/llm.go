// Package ollama answers and summarises with a local Ollama model.
package ollama

import (
	"context"
	"time"

	"github.com/custodia-labs/scheme-research/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/logger"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
	DefaultKeepAlive  = "10m"
)

type LLMConfig struct {
	BaseURL string // default http://localhost:11434
	Model   string // default llama3.2

	// Timeout bounds one generation (default: 120s).
	Timeout time.Duration

	// KeepAlive is how long the server keeps the model loaded between
	// questions (default: 10m).
	KeepAlive string
}

// LLMService generates answers and summaries with Ollama's /api/generate
// endpoint, without streaming.
type LLMService struct {
	client    *ollamaapi.Client
	model     string
	keepAlive string
}

type generateRequest struct {
	Model     string   `json:"model"`
	Prompt    string   `json:"prompt"`
	Stream    bool     `json:"stream"`
	KeepAlive string   `json:"keep_alive,omitempty"`
	Options   *options `json:"options,omitempty"`
}

type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generateResponse struct {
	Response   string `json:"response"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason"`
	EvalCount  int    `json:"eval_count"`
}

func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	if cfg.KeepAlive == "" {
		cfg.KeepAlive = DefaultKeepAlive
	}

	return &LLMService{
		client:    ollamaapi.NewClient(cfg.BaseURL, cfg.Timeout),
		model:     cfg.Model,
		keepAlive: cfg.KeepAlive,
	}
}

// Generate completes prompt. Output cut off by the token budget is
// returned as is.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := generateRequest{
		Model:     s.model,
		Prompt:    prompt,
		KeepAlive: s.keepAlive,
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 || len(opts.StopWords) > 0 {
		req.Options = &options{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			Stop:        opts.StopWords,
		}
	}

	var resp generateResponse
	if err := s.client.Post(ctx, "/api/generate", req, &resp); err != nil {
		return "", err
	}
	if resp.DoneReason == "length" {
		logger.Debug("ollama: %s stopped at the %d token limit", s.model, resp.EvalCount)
	}
	return resp.Response, nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the server is up and the model has been pulled.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.client.CheckModel(ctx, s.model)
}

func (s *LLMService) Close() error { return nil }
