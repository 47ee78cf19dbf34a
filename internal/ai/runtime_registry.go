package ai

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// RuntimeFactory builds a Runtime from the generic config below.
type RuntimeFactory func(context.Context, RuntimeConfig) (Runtime, error)

// RuntimeConfig carries common knobs used by runtimes.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// APIKey is used by OpenRouter and Gemini.
	APIKey string
	// Host is the Ollama server address.
	Host string
	// BaseURL overrides the provider endpoint.
	BaseURL string
}

var registry = map[string]RuntimeFactory{}

// RegisterRuntime registers a provider name with its factory.
func RegisterRuntime(name string, f RuntimeFactory) { registry[name] = f }

// GetRuntime creates a Runtime for the given provider.
func GetRuntime(ctx context.Context, name string, cfg RuntimeConfig) (Runtime, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown narrative provider %q (known: %v)", name, Providers())
	}
	return f(ctx, cfg)
}

// Providers lists registered provider names.
func Providers() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func init() {
	RegisterRuntime(ProviderOpenRouter, func(_ context.Context, c RuntimeConfig) (Runtime, error) {
		return NewClientWithBaseURL(c.APIKey, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay, c.BaseURL), nil
	})
	RegisterRuntime(ProviderOllama, func(_ context.Context, c RuntimeConfig) (Runtime, error) {
		host := c.Host
		if c.BaseURL != "" {
			host = c.BaseURL
		}
		return NewOllamaClient(host, c.HTTPTimeout, c.RetryMax, c.BaseDelay), nil
	})
	RegisterRuntime(ProviderGemini, func(ctx context.Context, c RuntimeConfig) (Runtime, error) {
		return NewGeminiClient(ctx, c.APIKey, c.HTTPTimeout, c.BaseURL)
	})
}
