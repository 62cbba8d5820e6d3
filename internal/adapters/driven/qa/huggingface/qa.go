// Package huggingface provides an extractive QuestionAnswerer backed by the
// Hugging Face Inference API question-answering task.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
)

// Ensure QA implements the interface.
var _ driven.QuestionAnswerer = (*QA)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api-inference.huggingface.co"
	DefaultModel   = domain.DefaultQAModel
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the Hugging Face QA service.
type Config struct {
	// APIToken is the Hugging Face access token. Anonymous access is
	// heavily rate limited but allowed.
	APIToken string

	// BaseURL is the inference API base URL.
	BaseURL string

	// Model is the question-answering model
	// (default: distilbert-base-cased-distilled-squad).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// QA calls a hosted question-answering model.
type QA struct {
	client  *http.Client
	baseURL string
	token   string
	model   string
}

type qaRequest struct {
	Inputs  qaInputs  `json:"inputs"`
	Options qaOptions `json:"options"`
}

type qaInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type qaOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type qaResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a Hugging Face question answerer.
func New(cfg Config) *QA {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &QA{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		model:   cfg.Model,
	}
}

// ModelName returns the model identifier.
func (q *QA) ModelName() string {
	return q.model
}

// Answer asks the model for the best span of contextText. The API reports
// character offsets; they are converted to byte offsets into contextText.
func (q *QA) Answer(ctx context.Context, question, contextText string) (domain.ExtractedAnswer, error) {
	jsonBody, err := json.Marshal(qaRequest{
		Inputs:  qaInputs{Question: question, Context: contextText},
		Options: qaOptions{WaitForModel: true},
	})
	if err != nil {
		return domain.ExtractedAnswer{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.modelURL(), bytes.NewReader(jsonBody))
	if err != nil {
		return domain.ExtractedAnswer{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	q.authorize(req)

	resp, err := q.client.Do(req)
	if err != nil {
		return domain.ExtractedAnswer{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ExtractedAnswer{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return domain.ExtractedAnswer{}, fmt.Errorf("huggingface error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return domain.ExtractedAnswer{}, fmt.Errorf("huggingface error (status %d): %s", resp.StatusCode, string(body))
	}

	result, err := decodeAnswer(body)
	if err != nil {
		return domain.ExtractedAnswer{}, err
	}

	start, end := runeToByteOffset(contextText, result.Start), runeToByteOffset(contextText, result.End)
	return domain.ExtractedAnswer{
		Text:  strings.TrimSpace(result.Answer),
		Score: result.Score,
		Start: start,
		End:   end,
	}, nil
}

// Ping checks that the model endpoint exists and the token is accepted.
func (q *QA) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.modelURL(), http.NoBody)
	if err != nil {
		return fmt.Errorf("huggingface: failed to create ping request: %w", err)
	}
	q.authorize(req)

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("huggingface: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("huggingface: API returned status %d", resp.StatusCode)
	}
	return nil
}

func (q *QA) modelURL() string {
	return q.baseURL + "/models/" + url.PathEscape(q.model)
}

func (q *QA) authorize(req *http.Request) {
	if q.token != "" {
		req.Header.Set("Authorization", "Bearer "+q.token)
	}
}

// decodeAnswer accepts either a single answer object or a ranked list,
// which the API returns when top_k is greater than one.
func decodeAnswer(body []byte) (qaResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []qaResponse
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return qaResponse{}, fmt.Errorf("decode response: %w", err)
		}
		if len(list) == 0 {
			return qaResponse{}, fmt.Errorf("huggingface: empty answer list")
		}
		return list[0], nil
	}

	var single qaResponse
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return qaResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return single, nil
}

// runeToByteOffset converts a character index into a byte index, clamped to
// the bounds of s.
func runeToByteOffset(s string, runes int) int {
	if runes <= 0 {
		return 0
	}
	i := 0
	for pos := range s {
		if i == runes {
			return pos
		}
		i++
	}
	return len(s)
}
