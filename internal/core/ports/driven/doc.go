// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a retrieval session to function:
//
//   - EmbeddingService: Turns document content and queries into vectors
//   - DocumentLoader: Fetches and extracts text from web URLs
//   - IndexStore: Persists the vector index snapshot between runs
//   - AnswerSynthesizer: Produces an answer and summary from retrieved context
//   - ConfigStore: Application configuration
//
// # Synthesizer Backends
//
// Exactly one of these backs the configured AnswerSynthesizer:
//
//   - QuestionAnswerer: Extractive span selection (extractive synthesizer)
//   - LLMService: Text generation (generative synthesizer)
//   - PromptStore: Prompt templates for the generative synthesizer
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
