package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error; known names fall back to a built-in default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used by the generative synthesizer.
const (
	// PromptAnswer asks the model to answer a question from a passage.
	// The template expects two %s placeholders: question, then context.
	PromptAnswer = "answer"

	// PromptSummarise asks the model to summarise a passage.
	// The template expects one %s placeholder for the passage.
	PromptSummarise = "summarise"
)
