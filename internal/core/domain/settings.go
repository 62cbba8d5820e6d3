package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the built-in hashing embedder. It needs no network.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local (built-in hashing embedder)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// QAProvider identifies the extractive question answering backend.
type QAProvider string

// Available QA providers.
const (
	// QAProviderLexical picks the context sentence with the best term overlap.
	QAProviderLexical QAProvider = "lexical"

	// QAProviderHuggingFace calls a hosted span-extraction model.
	QAProviderHuggingFace QAProvider = "huggingface"
)

// IsValid returns true if the QA provider is recognised.
func (p QAProvider) IsValid() bool {
	return p == QAProviderLexical || p == QAProviderHuggingFace
}

// String returns the string representation.
func (p QAProvider) String() string {
	return string(p)
}

// StoreBackend identifies where the index snapshot is persisted.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendFile writes a JSON snapshot with atomic rename.
	StoreBackendFile StoreBackend = "file"

	// StoreBackendSQLite writes the snapshot into a SQLite database.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendMemory keeps the index for the life of the process only.
	StoreBackendMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendFile, StoreBackendSQLite, StoreBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderLocal {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// QASettings holds extractive question answering configuration.
type QASettings struct {
	// Provider is the QA backend.
	Provider QAProvider

	// Model is the hosted model name (for Hugging Face).
	Model string

	// BaseURL is the inference endpoint root.
	BaseURL string

	// APIKey is the inference API token.
	APIKey string
}

// IsConfigured returns true if the QA provider is set up.
func (q QASettings) IsConfigured() bool {
	return q.Provider.IsValid()
}

// IndexSettings holds vector index and persistence configuration.
type IndexSettings struct {
	// Metric is the distance metric for new indexes.
	Metric DistanceMetric

	// Backend is the persistence backend.
	Backend StoreBackend

	// Path is the store location. Empty means the default data directory.
	Path string
}

// GenerationSettings bounds the synthesizers' output.
type GenerationSettings struct {
	// AnswerMaxTokens is the token budget for generated answers.
	AnswerMaxTokens int

	// SummaryMaxTokens is the token budget for generated summaries.
	SummaryMaxTokens int

	// SummaryChars is the extractive summary length in characters.
	SummaryChars int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Synthesizer selects the answer strategy.
	Synthesizer SynthesizerKind

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// QA holds extractive question answering settings.
	QA QASettings

	// Index holds vector index settings.
	Index IndexSettings

	// Generation holds output budgets.
	Generation GenerationSettings
}

// Default values for settings.
const (
	DefaultLocalDimensions  = 384
	DefaultAnswerMaxTokens  = 200
	DefaultSummaryMaxTokens = 100
	DefaultSummaryChars     = 200
)

// DefaultAppSettings returns settings that work offline out of the box:
// the local hashing embedder with the lexical extractive synthesizer.
// Cloud providers must be configured explicitly.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Synthesizer: SynthesizerExtractive,
		Embedding: EmbeddingSettings{
			Provider:   AIProviderLocal,
			Model:      DefaultEmbeddingModels()[AIProviderLocal],
			Dimensions: DefaultLocalDimensions,
		},
		// LLM is left unconfigured until the generative synthesizer is chosen
		LLM: LLMSettings{},
		QA: QASettings{
			Provider: QAProviderLexical,
		},
		Index: IndexSettings{
			Metric:  MetricEuclidean,
			Backend: StoreBackendFile,
		},
		Generation: GenerationSettings{
			AnswerMaxTokens:  DefaultAnswerMaxTokens,
			SummaryMaxTokens: DefaultSummaryMaxTokens,
			SummaryChars:     DefaultSummaryChars,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-v1",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// DefaultQAModel is the span-extraction model used with Hugging Face.
const DefaultQAModel = "distilbert-base-cased-distilled-squad"

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"hashing-v1": DefaultLocalDimensions,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
