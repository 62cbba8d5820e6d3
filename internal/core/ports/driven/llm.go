package driven

import "context"

// LLMService completes prompts for the generative synthesizer. The OpenAI,
// Anthropic and Ollama adapters implement it.
type LLMService interface {
	// Generate returns the completion for prompt, trimmed by the caller.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	ModelName() string

	// Ping makes the cheapest request the provider allows, to surface
	// bad keys, unknown models and unreachable hosts before a session starts.
	Ping(ctx context.Context) error

	Close() error
}

// GroundedSystemPrompt is the default system message of chat style
// providers. It keeps answers inside the retrieved page.
const GroundedSystemPrompt = "Answer using only the context given in the message. " +
	"If the context does not contain the answer, say that it does not."

// GenerateOptions bounds one completion. Zero values leave the provider default.
type GenerateOptions struct {
	// MaxTokens caps the completion length: 200 for answers, 100 for summaries.
	MaxTokens int

	Temperature float64

	// StopWords end the completion early.
	StopWords []string
}
