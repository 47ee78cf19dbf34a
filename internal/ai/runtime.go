package ai

import "context"

// Runtime is implemented by every narrative backend.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers accepted in configuration.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderGemini     = "gemini"
)

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenRouter:
		return "openai/gpt-4o-mini"
	case ProviderOllama:
		return "llama3.1:8b"
	case ProviderGemini:
		return "gemini-2.5-flash"
	}
	return ""
}

// RequiresAPIKey reports whether provider needs an API key to work.
func RequiresAPIKey(provider string) bool {
	return provider == ProviderOpenRouter || provider == ProviderGemini
}
