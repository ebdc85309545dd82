package driven

import "context"

// LLMService produces natural-language text from a prompt. The answer
// generator uses it to synthesise grounded answers from retrieved
// chunks.
//
// Implementations may include:
//   - OpenAI (gpt-4o-mini, gpt-3.5-turbo)
//   - Ollama (local models such as mistral)
//   - Hugging Face Inference API (instruct models)
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
