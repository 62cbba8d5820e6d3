// Package openai generates answers and summaries with OpenAI chat completions.
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

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second

	// NoSystem disables the system message.
	NoSystem = "-"
)

var (
	ErrMissingKey = errors.New("openai: API key is required")
	ErrNoChoices  = errors.New("openai: completion has no choices")
	ErrRefused    = errors.New("openai: completion refused")
)

type LLMConfig struct {
	APIKey string

	// BaseURL points at Azure OpenAI or another compatible endpoint.
	BaseURL string

	Model   string
	Timeout time.Duration

	// System defaults to driven.GroundedSystemPrompt. NoSystem sends none.
	System string
}

// LLMService sends each prompt as one user message, after the system
// message when there is one. No retries.
type LLMService struct {
	client openai.Client
	model  string
	system string
}

func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	switch cfg.System {
	case "":
		cfg.System = driven.GroundedSystemPrompt
	case NoSystem:
		cfg.System = ""
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &LLMService{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		system: cfg.System,
	}, nil
}

func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if s.system != "" {
		messages = append(messages, openai.SystemMessage(s.system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(s.model),
		Messages: messages,
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if len(opts.StopWords) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: opts.StopWords}
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("%w: %s", ErrRefused, choice.Message.Refusal)
	}
	switch choice.FinishReason {
	case "content_filter":
		return "", fmt.Errorf("%w: content filter", ErrRefused)
	case "length":
		logger.Debug("openai: completion cut at %d tokens", opts.MaxTokens)
	}
	return strings.TrimSpace(choice.Message.Content), nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping fetches the model record, which checks the key and model name
// without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.Get(ctx, s.model); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

func (s *LLMService) Close() error { return nil }
