package ai

import "context"

// DefaultSystemPrompt primes every provider for question generation.
const DefaultSystemPrompt = "You are a helpful assistant for generating multiple choice questions."

// Provider names.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
)

// TextGenerator turns a prompt into free-form model output.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}
