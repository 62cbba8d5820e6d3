package domain

// SynthesizerKind selects the answer synthesis strategy.
// It is chosen once at startup and never changes per query.
type SynthesizerKind string

// Available synthesis strategies.
const (
	// SynthesizerExtractive selects a span of the retrieved context.
	SynthesizerExtractive SynthesizerKind = "extractive"

	// SynthesizerGenerative prompts a language model with the context.
	SynthesizerGenerative SynthesizerKind = "generative"
)

// IsValid returns true if the kind is recognised.
func (k SynthesizerKind) IsValid() bool {
	return k == SynthesizerExtractive || k == SynthesizerGenerative
}

// String returns the string representation.
func (k SynthesizerKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the strategy.
func (k SynthesizerKind) Description() string {
	switch k {
	case SynthesizerExtractive:
		return "Extractive (span selection QA)"
	case SynthesizerGenerative:
		return "Generative (prompted completion)"
	default:
		return unknownDescription
	}
}

// Synthesis is the output of an answer synthesizer.
type Synthesis struct {
	Answer  string
	Summary string
}

// ExtractedAnswer is a span selected from a context by an extractive QA model.
type ExtractedAnswer struct {
	// Text is the selected span.
	Text string

	// Score is the model's confidence, 0-1.
	Score float64

	// Start and End are byte offsets of the span within the context.
	Start int
	End   int
}
