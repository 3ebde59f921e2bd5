package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// ErrNoProvider is returned when no provider has credentials configured.
var ErrNoProvider = errors.New("no ai provider configured")

// ChainConfig lists the credentials for every supported provider.
type ChainConfig struct {
	OpenRouterAPIKey string
	OpenRouterModel  string
	OpenAIAPIKey     string
	OpenAIModel      string
	GeminiAPIKey     string
	GeminiModel      string
	MaxTokens        int
	Temperature      float32
	Logger           zerolog.Logger
}

// Chain holds the configured providers in priority order. Generation is
// single-shot: only the first provider is called and its failure is final.
type Chain struct {
	providers []TextGenerator
	closers   []io.Closer
}

// NewChain keeps the non-nil providers in the given order.
func NewChain(providers ...TextGenerator) *Chain {
	chain := &Chain{}
	for _, p := range providers {
		if p != nil {
			chain.providers = append(chain.providers, p)
		}
	}
	return chain
}

// NewChainFromConfig builds the chain OpenRouter, OpenAI, Gemini from the
// providers that have an API key.
func NewChainFromConfig(ctx context.Context, cfg ChainConfig) (*Chain, error) {
	chain := &Chain{}

	if cfg.OpenRouterAPIKey != "" {
		gen, err := NewOpenRouterGenerator(OpenAIConfig{
			APIKey:      cfg.OpenRouterAPIKey,
			Model:       cfg.OpenRouterModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Logger:      cfg.Logger,
		})
		if err != nil {
			return nil, err
		}
		chain.providers = append(chain.providers, gen)
	}

	if cfg.OpenAIAPIKey != "" {
		gen, err := NewOpenAIGenerator(OpenAIConfig{
			Provider:    ProviderOpenAI,
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Logger:      cfg.Logger,
		})
		if err != nil {
			return nil, err
		}
		chain.providers = append(chain.providers, gen)
	}

	if cfg.GeminiAPIKey != "" {
		gen, err := NewGeminiGenerator(ctx, GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Logger:      cfg.Logger,
		})
		if err != nil {
			_ = chain.Close()
			return nil, err
		}
		chain.providers = append(chain.providers, gen)
		chain.closers = append(chain.closers, gen)
	}

	return chain, nil
}

// Providers returns the provider names in priority order.
func (c *Chain) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Generate calls the highest priority provider.
func (c *Chain) Generate(ctx context.Context, prompt string) (text string, provider string, err error) {
	if c == nil || len(c.providers) == 0 {
		return "", "", ErrNoProvider
	}

	primary := c.providers[0]
	text, err = primary.Generate(ctx, prompt)
	if err != nil {
		return "", primary.Name(), fmt.Errorf("%s: %w", primary.Name(), err)
	}
	return text, primary.Name(), nil
}

// Close releases provider clients that hold resources.
func (c *Chain) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
